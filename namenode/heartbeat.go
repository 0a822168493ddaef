package namenode

import (
	"context"
	"time"

	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// RegisterSS upserts a StorageNodeRecord and assigns it a best-effort
// mutual replica peer among the other connected SNs (spec §4.2
// "RegisterSS", SPEC_FULL.md's replica-peer supplement; no replication
// semantics are implemented, the pairing is informational only).
func (r *Registry) RegisterSS(id, address string, controlPort, clientPort int) (replicaPeer string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	rec, existed := r.nodes[id]
	if !existed {
		rec = &models.StorageNodeRecord{ID: id}
		r.nodes[id] = rec
		r.nextOrder++
		r.nodeOrder[id] = r.nextOrder
	}
	rec.Address = address
	rec.ControlPort = controlPort
	rec.ClientPort = clientPort
	rec.Connected = true
	rec.LastHeartbeat = now

	if rec.ReplicaPeer == "" {
		for peerID, peer := range r.nodes {
			if peerID == id || !peer.Connected {
				continue
			}
			rec.ReplicaPeer = peerID
			if peer.ReplicaPeer == "" {
				peer.ReplicaPeer = id
			}
			break
		}
	}

	if err := r.persistNode(rec); err != nil {
		return "", err
	}
	return rec.ReplicaPeer, nil
}

// Heartbeat records a liveness ping from a storage node (spec §4.5).
func (r *Registry) Heartbeat(id string, sentAt time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.nodes[id]
	if !ok {
		return time.Time{}, helper.ErrStorageServerDown
	}
	rec.Connected = true
	rec.LastHeartbeat = r.clock.Now()
	return r.clock.Now(), nil
}

// RunFailureDetector blocks, scanning every helper.FailureScanInterval for
// storage nodes whose last heartbeat exceeds helper.FailureThreshold (spec
// §4.5) and for expired sentence leases (SPEC_FULL.md's lease supplement),
// until ctx is cancelled.
func (r *Registry) RunFailureDetector(ctx context.Context) {
	ticker := time.NewTicker(helper.FailureScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scanForFailures()
			r.reclaimExpiredLocks()
		}
	}
}

func (r *Registry) scanForFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for id, n := range r.nodes {
		if n.Connected && now.Sub(n.LastHeartbeat) > helper.FailureThreshold {
			n.Connected = false
			r.log.Warnf("storage node %s marked disconnected (no heartbeat for %s)", id, now.Sub(n.LastHeartbeat))
			if n.ReplicaPeer != "" {
				r.log.Warnf("storage node %s: failover candidate is replica peer %s", id, n.ReplicaPeer)
			}
		}
	}
}
