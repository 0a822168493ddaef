package storagenode

import "sync"

// fileLockTable hands out one *sync.RWMutex per filename, so content
// operations on different files never contend (spec §4.8: "fine-grained
// per-file read/write locks rather than one coarse content-store mutex").
// Entries are not reference-counted: a file's lock stays in the table
// until Delete drops it with forget. Delete takes the write lock like any
// other writer and waits, with no back-off or time bound, until current
// holders release it.
type fileLockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newFileLockTable() *fileLockTable {
	return &fileLockTable{locks: make(map[string]*sync.RWMutex)}
}

func (t *fileLockTable) get(filename string) *sync.RWMutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[filename]
	if !ok {
		l = &sync.RWMutex{}
		t.locks[filename] = l
	}
	return l
}

// forget drops filename's lock entirely. Callers must already hold the
// write lock on it (i.e. call this while still holding Lock(), then
// Unlock a no-op mutex — in practice this is only safe right before the
// content itself is gone, so a freshly-created lock is handed out to any
// racing caller that still thinks the file exists).
func (t *fileLockTable) forget(filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locks, filename)
}

func (sn *StorageNode) rlock(filename string) func() {
	l := sn.locks.get(filename)
	l.RLock()
	return l.RUnlock
}

func (sn *StorageNode) lock(filename string) func() {
	l := sn.locks.get(filename)
	l.Lock()
	return l.Unlock
}
