package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FSBackend stores file bodies as flat files under a content directory
// (spec §6: "Content files live under a content directory; no
// directory-tree semantics beyond flat names").
type FSBackend struct {
	contentDir string
}

// NewFSBackend creates (if needed) contentDir and returns a Backend
// rooted there.
func NewFSBackend(contentDir string) (*FSBackend, error) {
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating content directory: %w", err)
	}
	return &FSBackend{contentDir: contentDir}, nil
}

func (b *FSBackend) path(filename string) string {
	return filepath.Join(b.contentDir, filepath.Base(filename))
}

func (b *FSBackend) Save(filename string, r io.Reader, size int64) error {
	tmp, err := os.CreateTemp(b.contentDir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp content file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.CopyN(tmp, r, size); err != nil && err != io.EOF {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp content file: %w", err)
	}
	if err := os.Rename(tmpPath, b.path(filename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publishing content file: %w", err)
	}
	return nil
}

func (b *FSBackend) Load(filename string, w io.Writer) error {
	f, err := os.Open(b.path(filename))
	if err != nil {
		return fmt.Errorf("opening content file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading content: %w", err)
	}
	return nil
}

func (b *FSBackend) Stat(filename string) (int64, error) {
	info, err := os.Stat(b.path(filename))
	if err != nil {
		return 0, fmt.Errorf("stat content file: %w", err)
	}
	return info.Size(), nil
}

func (b *FSBackend) Delete(filename string) error {
	if err := os.Remove(b.path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting content file: %w", err)
	}
	return nil
}

var _ Backend = (*FSBackend)(nil)
