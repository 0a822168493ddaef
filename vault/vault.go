// Package vault provides the Storage Node's pluggable content-storage
// backend: the "load/save/stat of an opaque blob keyed by filename"
// dependency spec §1 describes as injected, external infrastructure.
// The interface shape is grounded in theanswer42-bt-go's Vault interface
// (internal/bt/vault.go), reduced to the load/save/stat/delete surface a
// Storage Node actually needs for flat-named content files.
package vault

import "io"

// Backend stores and retrieves file bodies by filename. Implementations
// must be safe for concurrent use.
type Backend interface {
	// Save writes size bytes read from r as the content of filename,
	// replacing any existing content.
	Save(filename string, r io.Reader, size int64) error

	// Load retrieves filename's content and writes it to w.
	Load(filename string, w io.Writer) error

	// Stat reports the current size in bytes of filename's content.
	Stat(filename string) (int64, error)

	// Delete removes filename's content. Deleting a file that does not
	// exist is not an error.
	Delete(filename string) error
}
