package namenode

import (
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// pickHome selects the connected storage node with the fewest files
// (spec §4.3: "placement picks the SN with the lowest current file
// count among connected SNs; ties broken by registration order"). The
// caller must hold r.mu for writing.
func (r *Registry) pickHome() (string, error) {
	var bestID string
	bestCount := -1
	bestOrder := -1

	for id, n := range r.nodes {
		if !n.Connected {
			continue
		}
		order := r.nodeOrder[id]
		if bestCount == -1 || n.FileCount < bestCount || (n.FileCount == bestCount && order < bestOrder) {
			bestID, bestCount, bestOrder = id, n.FileCount, order
		}
	}

	if bestID == "" {
		return "", helper.ErrNoStorageServers
	}
	return bestID, nil
}

// Create allocates a FileRecord for filename, owned by identity, homed on
// the least-loaded connected SN (spec §4.2 "Create", §4.3). It returns the
// chosen SN's endpoint so the service layer can forward the create to it.
func (r *Registry) Create(identity, filename string) (models.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.files[filename]; exists {
		return models.Endpoint{}, helper.ErrFileExists
	}

	homeID, err := r.pickHome()
	if err != nil {
		return models.Endpoint{}, err
	}

	now := r.clock.Now()
	rec := &models.FileRecord{
		Filename:       filename,
		Owner:          identity,
		HomeSSID:       homeID,
		Created:        now,
		Modified:       now,
		Accessed:       now,
		LastAccessedBy: identity,
	}
	r.files[filename] = rec
	r.nodes[homeID].FileCount++
	r.readCache.Put(filename, *rec)

	if err := r.persistFile(rec); err != nil {
		return models.Endpoint{}, err
	}

	return r.endpointFor(homeID)
}
