// Package config reads and writes the TOML configuration files for each
// of the three binaries (cmd/nameserver, cmd/storageserver, cmd/client),
// grounded in theanswer42-bt-go's internal/config package: a Manager
// wrapping BurntSushi/toml's Decoder/Encoder plus file-path convenience
// wrappers.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// NameNodeConfig configures cmd/nameserver.
type NameNodeConfig struct {
	ListenAddr    string `toml:"listen_addr"`
	DBPath        string `toml:"db_path"`
	CacheCapacity int    `toml:"cache_capacity"`
}

// StorageNodeConfig configures cmd/storageserver.
type StorageNodeConfig struct {
	ID          string `toml:"id"`
	ListenAddr  string `toml:"listen_addr"`
	NameNodeAddr string `toml:"name_node_addr"`
	MetaDir     string `toml:"meta_dir"`

	Backend string `toml:"backend"` // "fs" or "s3"
	FSContentDir string `toml:"fs_content_dir,omitempty"`

	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
}

// ClientConfig configures cmd/client.
type ClientConfig struct {
	Identity    string `toml:"identity"`
	NameNodeAddr string `toml:"name_node_addr"`
}

// DefaultNameNodeConfig returns a config usable without further edits for
// local development.
func DefaultNameNodeConfig() *NameNodeConfig {
	return &NameNodeConfig{
		ListenAddr:    fmt.Sprintf("0.0.0.0:%d", 5000),
		DBPath:        filepath.Join(defaultBaseDir(), "namenode.db"),
		CacheCapacity: 100,
	}
}

// DefaultStorageNodeConfig returns a config usable without further edits
// for local development, defaulting to the filesystem content backend.
func DefaultStorageNodeConfig(id string) *StorageNodeConfig {
	return &StorageNodeConfig{
		ID:           id,
		ListenAddr:   "0.0.0.0:7000",
		NameNodeAddr: "127.0.0.1:5000",
		MetaDir:      filepath.Join(defaultBaseDir(), id, "meta"),
		Backend:      "fs",
		FSContentDir: filepath.Join(defaultBaseDir(), id, "content"),
	}
}

// DefaultClientConfig returns a config usable without further edits for
// local development.
func DefaultClientConfig(identity string) *ClientConfig {
	return &ClientConfig{Identity: identity, NameNodeAddr: "127.0.0.1:5000"}
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".osnfs"
	}
	return filepath.Join(home, ".osnfs")
}

// Manager reads and writes any of the above config types via generic
// TOML encode/decode.
type Manager[T any] struct{}

// Read decodes a T from r.
func (m Manager[T]) Read(r io.Reader) (*T, error) {
	var cfg T
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Write encodes cfg to w.
func (m Manager[T]) Write(w io.Writer, cfg *T) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "  "
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// ReadFromFile reads a T from path.
func ReadFromFile[T any](path string) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	var m Manager[T]
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// WriteToFile writes cfg to path, creating its parent directory if
// needed and refusing to overwrite an existing file.
func WriteToFile[T any](path string, cfg *T) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	var m Manager[T]
	return m.Write(f, cfg)
}
