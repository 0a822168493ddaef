package namenode

import (
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// AcquireLock grants identity an exclusive lease on sentence sentenceIdx of
// filename (spec §4.4). A lease expires after helper.SentenceLockLeaseTTL
// if never released, per SPEC_FULL.md's lease supplement resolving the
// "what happens to a lock whose holder crashes" design note.
func (r *Registry) AcquireLock(identity, filename string, sentenceIdx int) (models.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[filename]; !ok {
		return models.Endpoint{}, helper.ErrFileNotFound
	}

	key := models.SentenceLockKey{Filename: filename, SentenceIdx: sentenceIdx}
	now := r.clock.Now()

	acquired := now
	if lock, held := r.locks[key]; held {
		if lock.Holder != identity && now.Before(lock.ExpiresAt) {
			return models.Endpoint{}, helper.ErrFileLocked
		}
		// either the same holder re-acquiring, or a stale/expired lease;
		// a live re-acquire keeps its original acquisition time
		if lock.Holder == identity && now.Before(lock.ExpiresAt) {
			acquired = lock.Acquired
		}
	}

	r.locks[key] = &models.SentenceLock{
		Holder:    identity,
		Acquired:  acquired,
		ExpiresAt: now.Add(helper.SentenceLockLeaseTTL),
	}

	return r.lookupHome(filename)
}

// ReleaseLock drops identity's lease on filename's sentenceIdx, if held by
// identity (spec §4.4: "Unlock").
func (r *Registry) ReleaseLock(identity, filename string, sentenceIdx int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.SentenceLockKey{Filename: filename, SentenceIdx: sentenceIdx}
	lock, held := r.locks[key]
	if !held {
		return helper.ErrInvalidParameters
	}
	if lock.Holder != identity {
		return helper.ErrUnauthorized
	}
	delete(r.locks, key)
	return nil
}

// CheckLocks reports whether identity currently holds live leases on every
// sentence index in idxs. The SN calls this before applying a WriteCommit
// (SPEC_FULL.md §4.4/§9: cooperative locks made enforced).
func (r *Registry) CheckLocks(identity, filename string, idxs []int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.clock.Now()
	for _, idx := range idxs {
		key := models.SentenceLockKey{Filename: filename, SentenceIdx: idx}
		lock, held := r.locks[key]
		if !held || lock.Holder != identity || !now.Before(lock.ExpiresAt) {
			return false
		}
	}
	return true
}

// reclaimExpiredLocks drops every lease whose TTL has elapsed. Called from
// the failure-detection scan (heartbeat.go) on its own cadence, independent
// of any Unlock call.
func (r *Registry) reclaimExpiredLocks() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for key, lock := range r.locks {
		if !now.Before(lock.ExpiresAt) {
			delete(r.locks, key)
			r.log.Infof("reclaimed expired lease on %s sentence %d held by %s", key.Filename, key.SentenceIdx, lock.Holder)
		}
	}
}
