package namenode

import (
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// RequestAccess records a pending AccessRequest from requester for
// filename (spec §4.6: "RequestAccess"). A second request from the same
// requester while one is already pending just refreshes it rather than
// erroring, since the workflow has no "withdraw" operation to race against.
func (r *Registry) RequestAccess(requester, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[filename]
	if !ok {
		return helper.ErrFileNotFound
	}
	if rec.Owner == requester {
		return helper.ErrInvalidParameters
	}

	key := models.AccessRequestKey{Filename: filename, Requester: requester}
	r.requests[key] = &models.AccessRequest{
		Filename:    filename,
		Requester:   requester,
		Owner:       rec.Owner,
		RequestedAt: r.clock.Now(),
		Pending:     true,
	}
	return r.persistRequest(r.requests[key])
}

// ViewRequests returns every pending AccessRequest whose target file is
// owned by owner (spec §4.6: "ViewRequests").
func (r *Registry) ViewRequests(owner string) []models.AccessRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AccessRequest
	for _, req := range r.requests {
		if req.Owner == owner && req.Pending {
			out = append(out, *req)
		}
	}
	return out
}

// ApproveRequest clears requester's pending request against filename and
// returns the file's home SN endpoint, which the service layer hands back
// to the calling client so that it can send the AddAccess call there
// (spec §4.6: "Approve"). Only the file's owner may approve.
func (r *Registry) ApproveRequest(owner, filename, requester string) (models.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[filename]
	if !ok {
		return models.Endpoint{}, helper.ErrFileNotFound
	}
	if rec.Owner != owner {
		return models.Endpoint{}, helper.ErrUnauthorized
	}

	key := models.AccessRequestKey{Filename: filename, Requester: requester}
	req, pending := r.requests[key]
	if !pending || !req.Pending {
		return models.Endpoint{}, helper.ErrRequestNotFound
	}

	delete(r.requests, key)
	if err := r.persistRequestDelete(key); err != nil {
		return models.Endpoint{}, err
	}

	return r.endpointFor(rec.HomeSSID)
}

// DenyRequest clears requester's pending request against filename without
// granting access (spec §4.6: "Deny").
func (r *Registry) DenyRequest(owner, filename, requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.files[filename]
	if !ok {
		return helper.ErrFileNotFound
	}
	if rec.Owner != owner {
		return helper.ErrUnauthorized
	}

	key := models.AccessRequestKey{Filename: filename, Requester: requester}
	if _, pending := r.requests[key]; !pending {
		return helper.ErrRequestNotFound
	}
	delete(r.requests, key)
	return r.persistRequestDelete(key)
}
