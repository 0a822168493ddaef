package cache

import "testing"

func TestLRUGetPutMiss(t *testing.T) {
	c := New[string, int](2)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a", since "b" was touched more recently than "a"

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected \"a\" to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected \"b\" to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected \"c\" to survive")
	}
}

func TestLRUHitPromotes(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")       // promote "a" to most-recently-used
	c.Put("c", 3)    // should now evict "b", not "a"

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected \"b\" to be evicted after \"a\" was promoted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected \"a\" to survive")
	}
}

func TestLRURemove(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected \"a\" to be removed")
	}
}
