package namenode

import (
	"testing"
	"time"

	"github.com/filecoord/osnfs/helper"
)

// fakeClock lets tests advance time deterministically instead of sleeping.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeIDGen struct{ n int }

func (g *fakeIDGen) New() string {
	g.n++
	return "id-" + string(rune('a'+g.n))
}

func newTestRegistry(t *testing.T) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg, err := NewRegistry(Config{Clock: clock, IDGenerator: &fakeIDGen{}, Logger: helper.NewLogger("[test]")})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg, clock
}

func registerNode(t *testing.T, r *Registry, id string) {
	t.Helper()
	if _, err := r.RegisterSS(id, "127.0.0.1", 6000, 7000); err != nil {
		t.Fatalf("RegisterSS(%s): %v", id, err)
	}
}

func TestCreatePicksLeastLoadedNode(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	registerNode(t, r, "sn-b")

	// Load sn-a with a file first so sn-b becomes the least loaded.
	if _, err := r.Create("alice", "first.txt"); err != nil {
		t.Fatalf("create first.txt: %v", err)
	}
	first := r.files["first.txt"].HomeSSID

	if _, err := r.Create("alice", "second.txt"); err != nil {
		t.Fatalf("create second.txt: %v", err)
	}
	second := r.files["second.txt"].HomeSSID

	if first == second {
		t.Fatalf("expected second.txt to land on the other node, both got %s", first)
	}
}

func TestCreateDuplicateFilenameFails(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")

	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := r.Create("bob", "doc.txt"); err != helper.ErrFileExists {
		t.Fatalf("expected ErrFileExists, got %v", err)
	}
}

func TestCreateWithNoStorageNodesFails(t *testing.T) {
	r, _ := newTestRegistry(t)
	if _, err := r.Create("alice", "doc.txt"); err != helper.ErrNoStorageServers {
		t.Fatalf("expected ErrNoStorageServers, got %v", err)
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.Delete("bob", "doc.txt"); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := r.Delete("alice", "doc.txt"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := r.files["doc.txt"]; ok {
		t.Fatal("file still present after delete")
	}
}

func TestResolveUnknownFile(t *testing.T) {
	r, _ := newTestRegistry(t)
	if _, err := r.Resolve("alice", "ghost.txt"); err != helper.ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLockMutualExclusionAndStaleLeaseReclaim(t *testing.T) {
	r, clock := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := r.AcquireLock("alice", "doc.txt", 0); err != nil {
		t.Fatalf("alice lock: %v", err)
	}
	if _, err := r.AcquireLock("bob", "doc.txt", 0); err != helper.ErrFileLocked {
		t.Fatalf("expected ErrFileLocked for contending holder, got %v", err)
	}

	// Same holder may re-acquire (refreshing the lease) without contention.
	if _, err := r.AcquireLock("alice", "doc.txt", 0); err != nil {
		t.Fatalf("alice re-lock: %v", err)
	}

	clock.advance(helper.SentenceLockLeaseTTL + time.Second)
	r.reclaimExpiredLocks()

	if _, err := r.AcquireLock("bob", "doc.txt", 0); err != nil {
		t.Fatalf("expected bob to acquire after lease reclaim, got %v", err)
	}
}

func TestReleaseLockWithoutHoldingFails(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.ReleaseLock("alice", "doc.txt", 0); err != helper.ErrInvalidParameters {
		t.Fatalf("expected ErrInvalidParameters for an absent lock, got %v", err)
	}

	if _, err := r.AcquireLock("bob", "doc.txt", 0); err != nil {
		t.Fatalf("bob lock: %v", err)
	}
	if err := r.ReleaseLock("alice", "doc.txt", 0); err != helper.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for releasing someone else's lock, got %v", err)
	}
}

func TestCheckLocksRequiresLiveLeaseOnEveryIndex(t *testing.T) {
	r, clock := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := r.AcquireLock("alice", "doc.txt", 0); err != nil {
		t.Fatalf("lock 0: %v", err)
	}
	if _, err := r.AcquireLock("alice", "doc.txt", 1); err != nil {
		t.Fatalf("lock 1: %v", err)
	}

	if !r.CheckLocks("alice", "doc.txt", []int{0, 1}) {
		t.Fatal("expected both leases to be live")
	}
	if r.CheckLocks("alice", "doc.txt", []int{0, 2}) {
		t.Fatal("expected missing lease on index 2 to fail the check")
	}

	clock.advance(helper.SentenceLockLeaseTTL + time.Second)
	if r.CheckLocks("alice", "doc.txt", []int{0, 1}) {
		t.Fatal("expected expired leases to fail the check")
	}
}

func TestAccessRequestApproveWorkflow(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.RequestAccess("bob", "doc.txt"); err != nil {
		t.Fatalf("request access: %v", err)
	}

	pending := r.ViewRequests("alice")
	if len(pending) != 1 || pending[0].Requester != "bob" {
		t.Fatalf("unexpected pending requests: %+v", pending)
	}

	if _, err := r.ApproveRequest("bob", "doc.txt", "bob"); err != helper.ErrUnauthorized {
		t.Fatalf("expected non-owner approve to fail, got %v", err)
	}

	if _, err := r.ApproveRequest("alice", "doc.txt", "bob"); err != nil {
		t.Fatalf("owner approve: %v", err)
	}

	if len(r.ViewRequests("alice")) != 0 {
		t.Fatal("expected request to be cleared after approval")
	}

	if _, err := r.ApproveRequest("alice", "doc.txt", "bob"); err != helper.ErrRequestNotFound {
		t.Fatalf("expected ErrRequestNotFound on re-approve, got %v", err)
	}
}

func TestAccessRequestOwnerCannotRequestOwnFile(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.RequestAccess("alice", "doc.txt"); err != helper.ErrInvalidParameters {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestHeartbeatFailureDetectionMarksDisconnected(t *testing.T) {
	r, clock := newTestRegistry(t)
	registerNode(t, r, "sn-a")

	clock.advance(helper.FailureThreshold + time.Second)
	r.scanForFailures()

	if r.nodes["sn-a"].Connected {
		t.Fatal("expected node to be marked disconnected after missed heartbeats")
	}

	if _, err := r.Heartbeat("sn-a", clock.now); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if !r.nodes["sn-a"].Connected {
		t.Fatal("expected heartbeat to reconnect the node")
	}
}

func TestUpdateFileStatsKeepsViewCurrent(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerNode(t, r, "sn-a")
	if _, err := r.Create("alice", "doc.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.UpdateFileStats("doc.txt", 3, 17, true); err != nil {
		t.Fatalf("update stats: %v", err)
	}

	entries := r.View()
	if len(entries) != 1 || entries[0].WordCount != 3 || entries[0].CharCount != 17 {
		t.Fatalf("unexpected view: %+v", entries)
	}
}
