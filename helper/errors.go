package helper

import "errors"

// Sentinel errors for the taxonomy in spec §7. RPC handlers translate these
// into models.ErrorCode values on the wire; internal callers compare against
// these directly with errors.Is.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrFileLocked          = errors.New("file locked")
	ErrInvalidIndex        = errors.New("invalid index")
	ErrFileExists          = errors.New("file exists")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidCommand      = errors.New("invalid command")
	ErrStorageServerDown   = errors.New("storage server down")
	ErrInternal            = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoStorageServers    = errors.New("no storage servers available")
	ErrInvalidParameters   = errors.New("invalid parameters")
	ErrExecFailed          = errors.New("exec failed")
	ErrRequestNotFound     = errors.New("access request not found")
	ErrACLFull             = errors.New("acl capacity exceeded")
)
