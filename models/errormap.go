package models

import "github.com/filecoord/osnfs/helper"

var errorCodes = map[error]ErrorCode{
	helper.ErrFileNotFound:     FileNotFound,
	helper.ErrUnauthorized:     Unauthorized,
	helper.ErrFileLocked:       FileLocked,
	helper.ErrInvalidIndex:     InvalidIndex,
	helper.ErrFileExists:       FileExists,
	helper.ErrPermissionDenied: PermissionDenied,
	helper.ErrInvalidCommand:   InvalidCommand,
	helper.ErrStorageServerDown: StorageServerDown,
	helper.ErrInternal:          Internal,
	helper.ErrUserNotFound:      UserNotFound,
	helper.ErrNoStorageServers:  NoStorageServers,
	helper.ErrInvalidParameters: InvalidParameters,
	helper.ErrExecFailed:        ExecFailed,
	helper.ErrRequestNotFound:   RequestNotFound,
	helper.ErrACLFull:           InvalidParameters,
}
