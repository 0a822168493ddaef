package storagenode

import (
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// AddAccess grants target read permission on filename. Only the owner may
// grant access directly; the NN's approve workflow (spec §4.6) is the
// normal path here, calling this once the owner has approved a request.
func (sn *StorageNode) AddAccess(identity, filename, target string) error {
	unlock := sn.lock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return helper.ErrFileNotFound
	}
	if md.Owner != identity {
		return helper.ErrUnauthorized
	}

	if md.IndexOfACL(target) >= 0 {
		return helper.ErrInvalidParameters
	}

	if len(md.ACL) >= helper.DefaultACLCapacity {
		return helper.ErrACLFull
	}

	md.ACL = append(md.ACL, models.ACLEntry{Identity: target, Permission: models.PermissionRead})

	return sn.saveMetadata(filename, md)
}

// RemAccess revokes target's ACL grant on filename entirely (spec §4.7:
// "RemAccess").
func (sn *StorageNode) RemAccess(identity, filename, target string) error {
	unlock := sn.lock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return helper.ErrFileNotFound
	}
	if md.Owner != identity {
		return helper.ErrUnauthorized
	}

	idx := md.IndexOfACL(target)
	if idx < 0 {
		return helper.ErrInvalidParameters
	}
	md.ACL = append(md.ACL[:idx], md.ACL[idx+1:]...)

	return sn.saveMetadata(filename, md)
}
