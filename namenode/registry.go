// Package namenode implements the Name Node: the coordinator holding the
// global namespace, storage-node registry, sentence-lock table, and
// access-request workflow (spec §4.2-§4.6, §4.10).
package namenode

import (
	"sync"

	"github.com/filecoord/osnfs/cache"
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// Registry holds every NN-owned registry (spec §3) behind one
// reader-writer lock (spec §4.2, §9: "the registries are process-wide
// singletons in the source [and] should be encapsulated in a struct that
// is owned by the NN process and passed explicitly to handlers"). There
// are no package-level globals anywhere in this package.
type Registry struct {
	mu sync.RWMutex

	files    map[string]*models.FileRecord
	nodes    map[string]*models.StorageNodeRecord
	nodeOrder map[string]int // registration sequence, for placement tie-breaks
	nextOrder int
	users    map[string]*models.UserRecord
	locks    map[models.SentenceLockKey]*models.SentenceLock
	requests map[models.AccessRequestKey]*models.AccessRequest

	readCache *cache.LRU[string, models.FileRecord]

	clock helper.Clock
	idGen helper.IDGenerator
	log   *helper.Logger
	store *Store // durable backing store; nil means memory-only
}

// Config bundles the Registry's injected dependencies (spec §1: "the core
// consumes... a clock... and a logger").
type Config struct {
	Clock        helper.Clock
	IDGenerator  helper.IDGenerator
	CacheCapacity int
	Store        *Store
	Logger       *helper.Logger
}

// NewRegistry constructs an empty Registry, or one reloaded from cfg.Store
// if a store is provided and it holds prior state.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Clock == nil {
		cfg.Clock = helper.RealClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = helper.UUIDGenerator{}
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = helper.DefaultCacheCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = helper.NewLogger("[NN]")
	}

	r := &Registry{
		files:     make(map[string]*models.FileRecord),
		nodes:     make(map[string]*models.StorageNodeRecord),
		nodeOrder: make(map[string]int),
		users:     make(map[string]*models.UserRecord),
		locks:     make(map[models.SentenceLockKey]*models.SentenceLock),
		requests:  make(map[models.AccessRequestKey]*models.AccessRequest),
		readCache: cache.New[string, models.FileRecord](cfg.CacheCapacity),
		clock:     cfg.Clock,
		idGen:     cfg.IDGenerator,
		log:       cfg.Logger,
		store:     cfg.Store,
	}

	if r.store != nil {
		if err := r.store.LoadInto(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// RegisterUser upserts a UserRecord (spec §4.2).
func (r *Registry) RegisterUser(identity, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.users[identity]
	if !ok {
		rec = &models.UserRecord{Identity: identity, Registered: r.clock.Now()}
		r.users[identity] = rec
	}
	rec.Address = address

	return r.persistUser(rec)
}

// ListUsers returns every known UserRecord (spec §4.2: "List").
func (r *Registry) ListUsers() []models.UserRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.UserRecord, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out
}

// View returns every filename with owner and cached counts (spec §4.2:
// "View").
func (r *Registry) View() []models.ViewEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ViewEntry, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, models.ViewEntry{
			Filename:  f.Filename,
			Owner:     f.Owner,
			WordCount: f.WordCount,
			CharCount: f.CharCount,
		})
	}
	return out
}

// lookupHome resolves a filename's home SN address, going through the LRU
// cache first (spec §4.10) and falling back to the authoritative registry
// on a miss. The caller must already hold at least r.mu.RLock().
func (r *Registry) lookupHome(filename string) (models.Endpoint, error) {
	if rec, ok := r.readCache.Get(filename); ok {
		return r.endpointFor(rec.HomeSSID)
	}

	rec, ok := r.files[filename]
	if !ok {
		return models.Endpoint{}, helper.ErrFileNotFound
	}
	r.readCache.Put(filename, *rec)
	return r.endpointFor(rec.HomeSSID)
}

// endpointFor resolves a StorageNodeRecord id to a reachable Endpoint,
// following the weak id-based back-reference described in spec §3/§9
// rather than a cached pointer.
func (r *Registry) endpointFor(ssID string) (models.Endpoint, error) {
	node, ok := r.nodes[ssID]
	if !ok || !node.Connected {
		return models.Endpoint{}, helper.ErrStorageServerDown
	}
	return models.Endpoint{Address: node.Address, ClientPort: node.ClientPort}, nil
}

// Resolve returns the home SN endpoint for filename, for every operation
// in spec §4.2's "Read / Info / Stream / Copy / Write / AddAccess /
// RemAccess / Undo / Checkpoint family" row.
func (r *Registry) Resolve(identity, filename string) (models.Endpoint, error) {
	r.mu.Lock() // upgrade: touches Accessed/LastAccessedBy
	defer r.mu.Unlock()

	ep, err := r.lookupHome(filename)
	if err != nil {
		return models.Endpoint{}, err
	}

	if rec, ok := r.files[filename]; ok {
		rec.Accessed = r.clock.Now()
		rec.LastAccessedBy = identity
		r.readCache.Put(filename, *rec)
	}

	return ep, nil
}

// Delete removes filename's FileRecord if identity is its owner (spec
// §4.2: "Delete").
func (r *Registry) Delete(identity, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[filename]
	if !ok {
		return helper.ErrFileNotFound
	}
	if rec.Owner != identity {
		return helper.ErrUnauthorized
	}

	delete(r.files, filename)
	r.readCache.Remove(filename)

	if node, ok := r.nodes[rec.HomeSSID]; ok && node.FileCount > 0 {
		node.FileCount--
	}

	return r.persistFileDelete(filename)
}

// UpdateFileStats is called by the storage-node-facing side (through the
// service layer) after a WriteCommit/Undo/Revert changes a file's cached
// counts, so the NN's copy (used by View) stays consistent with spec §8's
// invariant 4.
func (r *Registry) UpdateFileStats(filename string, words, chars int, modified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[filename]
	if !ok {
		return helper.ErrFileNotFound
	}
	rec.WordCount = words
	rec.CharCount = chars
	if modified {
		rec.Modified = r.clock.Now()
	}
	r.readCache.Put(filename, *rec)
	return r.persistFile(rec)
}
