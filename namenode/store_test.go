package namenode

import (
	"os"
	"testing"
)

// TestLoadIntoPreservesRegistrationOrderAcrossRestart guards against the
// registration-order tie-break (placement.go's pickHome) silently
// degrading to Go's randomized map iteration order once a node's
// StorageNodeRecord comes back from the store instead of a fresh
// RegisterSS call.
func TestLoadIntoPreservesRegistrationOrderAcrossRestart(t *testing.T) {
	dir, err := os.MkdirTemp("", "nn-store-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	dbPath := dir + "/nn.db"

	store, err := OpenStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	r, err := NewRegistry(Config{Store: store})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	registerNode(t, r, "sn-a")
	registerNode(t, r, "sn-b")
	registerNode(t, r, "sn-c")
	store.Close()

	reopened, err := OpenStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	r2, err := NewRegistry(Config{Store: reopened})
	if err != nil {
		t.Fatalf("reload registry: %v", err)
	}

	if r2.nodeOrder["sn-a"] >= r2.nodeOrder["sn-b"] || r2.nodeOrder["sn-b"] >= r2.nodeOrder["sn-c"] {
		t.Fatalf("expected registration order a < b < c to survive reload, got %+v", r2.nodeOrder)
	}

	// A node registering for the first time after the restart must sort
	// after every reloaded node, not collide at the zero value.
	registerNode(t, r2, "sn-d")
	if r2.nodeOrder["sn-d"] <= r2.nodeOrder["sn-c"] {
		t.Fatalf("expected a newly registered node to sort after reloaded nodes, got order %+v", r2.nodeOrder)
	}
}
