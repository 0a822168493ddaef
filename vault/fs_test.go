package vault

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestFSBackendSaveLoadStatDelete(t *testing.T) {
	dir, err := os.MkdirTemp("", "vault-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	defer os.RemoveAll(dir)

	b, err := NewFSBackend(dir)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	body := "Hello world."
	if err := b.Save("doc.txt", strings.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("save: %v", err)
	}

	size, err := b.Stat("doc.txt")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if size != int64(len(body)) {
		t.Fatalf("size: got %d, want %d", size, len(body))
	}

	var buf bytes.Buffer
	if err := b.Load("doc.txt", &buf); err != nil {
		t.Fatalf("load: %v", err)
	}
	if buf.String() != body {
		t.Fatalf("loaded %q, want %q", buf.String(), body)
	}

	if err := b.Delete("doc.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.Stat("doc.txt"); err == nil {
		t.Fatal("expected stat to fail after delete")
	}
}

func TestFSBackendOverwrite(t *testing.T) {
	dir, err := os.MkdirTemp("", "vault-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	defer os.RemoveAll(dir)

	b, _ := NewFSBackend(dir)
	_ = b.Save("doc.txt", strings.NewReader("first"), 5)
	_ = b.Save("doc.txt", strings.NewReader("second body"), 11)

	var buf bytes.Buffer
	if err := b.Load("doc.txt", &buf); err != nil {
		t.Fatalf("load: %v", err)
	}
	if buf.String() != "second body" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestFSBackendDeleteMissingIsNotError(t *testing.T) {
	dir, err := os.MkdirTemp("", "vault-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	defer os.RemoveAll(dir)

	b, _ := NewFSBackend(dir)
	if err := b.Delete("missing.txt"); err != nil {
		t.Fatalf("expected no error deleting missing file, got %v", err)
	}
}
