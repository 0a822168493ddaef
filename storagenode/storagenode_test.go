package storagenode

import (
	"os"
	"testing"
	"time"

	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/vault"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeNNLink struct {
	allow bool
	stats map[string][2]int
}

func newFakeNNLink(allow bool) *fakeNNLink {
	return &fakeNNLink{allow: allow, stats: make(map[string][2]int)}
}

func (f *fakeNNLink) CheckLocks(identity, filename string, sentenceIdxs []int) (bool, error) {
	return f.allow, nil
}

func (f *fakeNNLink) ReportFileStats(filename string, words, chars int) error {
	f.stats[filename] = [2]int{words, chars}
	return nil
}

func newTestNode(t *testing.T, nn NNLink) *StorageNode {
	t.Helper()
	dir, err := os.MkdirTemp("", "sn-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	backend, err := vault.NewFSBackend(dir + "/content")
	if err != nil {
		t.Fatalf("fs backend: %v", err)
	}

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	sn, err := New(Config{
		ID:      "sn-a",
		Content: backend,
		MetaDir: dir + "/meta",
		NN:      nn,
		Clock:   clock,
		Logger:  helper.NewLogger("[test]"),
	})
	if err != nil {
		t.Fatalf("new storage node: %v", err)
	}
	return sn
}

func TestCreateReadRoundTrip(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))

	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	body, err := sn.Read("alice", "doc.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}

	if _, err := sn.Read("bob", "doc.txt"); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for non-owner read, got %v", err)
	}
}

func TestWriteCommitRevalidatesLockWithNN(t *testing.T) {
	nn := newFakeNNLink(false)
	sn := newTestNode(t, nn)

	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sn.WriteCommit("alice", "doc.txt", "0|0|Hello|"); err != helper.ErrFileLocked {
		t.Fatalf("expected ErrFileLocked when NN denies the lease, got %v", err)
	}

	nn.allow = true
	if err := sn.WriteCommit("alice", "doc.txt", "0|0|Hello|"); err != nil {
		t.Fatalf("writecommit: %v", err)
	}

	body, err := sn.Read("alice", "doc.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if body != "Hello" {
		t.Fatalf("got %q, want %q", body, "Hello")
	}
	if nn.stats["doc.txt"][0] != 1 {
		t.Fatalf("expected NN to be told about 1 word, got %+v", nn.stats["doc.txt"])
	}
}

func TestUndoTogglesBetweenTwoStates(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sn.WriteCommit("alice", "doc.txt", "0|0|Hello|"); err != nil {
		t.Fatalf("writecommit: %v", err)
	}

	if err := sn.Undo("alice", "doc.txt"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	body, _ := sn.Read("alice", "doc.txt")
	if body != "" {
		t.Fatalf("expected undo to restore empty body, got %q", body)
	}

	if err := sn.Undo("alice", "doc.txt"); err != nil {
		t.Fatalf("second undo: %v", err)
	}
	body, _ = sn.Read("alice", "doc.txt")
	if body != "Hello" {
		t.Fatalf("expected second undo to toggle back, got %q", body)
	}
}

func TestAccessControlEnforced(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := sn.Read("bob", "doc.txt"); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized before grant, got %v", err)
	}

	if err := sn.AddAccess("alice", "doc.txt", "bob"); err != nil {
		t.Fatalf("add access: %v", err)
	}
	if _, err := sn.Read("bob", "doc.txt"); err != nil {
		t.Fatalf("expected read to succeed after grant, got %v", err)
	}
	if err := sn.WriteCommit("bob", "doc.txt", "0|0|Hi|"); err != helper.ErrUnauthorized {
		t.Fatalf("expected read-only grant to block write, got %v", err)
	}

	if err := sn.RemAccess("alice", "doc.txt", "bob"); err != nil {
		t.Fatalf("rem access: %v", err)
	}
	if _, err := sn.Read("bob", "doc.txt"); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized after revoke, got %v", err)
	}
}

func TestAddAccessRejectsDuplicateGrant(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sn.AddAccess("alice", "doc.txt", "bob"); err != nil {
		t.Fatalf("add access: %v", err)
	}
	if err := sn.AddAccess("alice", "doc.txt", "bob"); err != helper.ErrInvalidParameters {
		t.Fatalf("expected ErrInvalidParameters for a duplicate grant, got %v", err)
	}

	info, err := sn.Info("alice", "doc.txt")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(info.ACL) != 1 {
		t.Fatalf("expected the rejected duplicate to leave the ACL untouched, got %+v", info.ACL)
	}
}

func TestRemAccessOnNonMemberFails(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := sn.RemAccess("alice", "doc.txt", "bob"); err != helper.ErrInvalidParameters {
		t.Fatalf("expected ErrInvalidParameters for a non-member target, got %v", err)
	}
}

func TestCheckpointViewRevertListRoundTrip(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sn.WriteCommit("alice", "doc.txt", "0|0|Hello|"); err != nil {
		t.Fatalf("writecommit: %v", err)
	}
	if err := sn.Checkpoint("alice", "doc.txt", "v1"); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}

	if err := sn.WriteCommit("alice", "doc.txt", "0|1|world|"); err != nil {
		t.Fatalf("second writecommit: %v", err)
	}

	body, _, err := sn.ViewCheckpoint("alice", "doc.txt", "v1")
	if err != nil {
		t.Fatalf("view checkpoint: %v", err)
	}
	if body != "Hello" {
		t.Fatalf("got %q, want %q", body, "Hello")
	}

	tags, err := sn.ListCheckpoints("alice", "doc.txt")
	if err != nil || len(tags) != 1 || tags[0] != "v1" {
		t.Fatalf("unexpected tags %+v, err %v", tags, err)
	}

	if err := sn.Revert("alice", "doc.txt", "v1"); err != nil {
		t.Fatalf("revert: %v", err)
	}
	body, err = sn.Read("alice", "doc.txt")
	if err != nil || body != "Hello" {
		t.Fatalf("expected revert to restore %q, got %q (err %v)", "Hello", body, err)
	}
}

func TestDeleteCascadesCheckpoints(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sn.Checkpoint("alice", "doc.txt", "v1"); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}

	if err := sn.Delete("alice", "doc.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, _, err := sn.ViewCheckpoint("alice", "doc.txt", "v1"); err != helper.ErrFileNotFound {
		t.Fatalf("expected checkpoint to be gone after delete, got %v", err)
	}
}

func TestCopyCreatesFreshOwnedDestination(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "src.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sn.WriteCommit("alice", "src.txt", "0|0|Hello|"); err != nil {
		t.Fatalf("writecommit: %v", err)
	}
	if err := sn.AddAccess("alice", "src.txt", "bob"); err != nil {
		t.Fatalf("add access: %v", err)
	}

	if err := sn.Copy("bob", "src.txt", "dst.txt"); err != nil {
		t.Fatalf("copy: %v", err)
	}

	body, err := sn.Read("bob", "dst.txt")
	if err != nil || body != "Hello" {
		t.Fatalf("expected copied body %q, got %q (err %v)", "Hello", body, err)
	}

	info, err := sn.Info("bob", "dst.txt")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Owner != "bob" {
		t.Fatalf("expected bob to own the freshly copied file, got owner %q", info.Owner)
	}
	if len(info.ACL) != 0 {
		t.Fatalf("expected an empty ACL on the freshly copied file, got %+v", info.ACL)
	}

	// alice, who only owns src and was never granted access to dst, must
	// not be able to read it.
	if _, err := sn.Read("alice", "dst.txt"); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for a stranger to the copy, got %v", err)
	}

	if err := sn.Copy("bob", "src.txt", "dst.txt"); err != helper.ErrFileExists {
		t.Fatalf("expected ErrFileExists when copying onto an existing destination, got %v", err)
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	sn := newTestNode(t, newFakeNNLink(true))
	if err := sn.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sn.Delete("bob", "doc.txt"); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
