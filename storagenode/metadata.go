package storagenode

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/filecoord/osnfs/models"
)

// loadMetadata reads filename's TOML sidecar (spec §3: FileMetadata),
// grounded in danmuck-dps_files' key_store metadata.go pattern of one
// BurntSushi/toml-encoded file per tracked item.
func (sn *StorageNode) loadMetadata(filename string) (*models.FileMetadata, error) {
	var md models.FileMetadata
	if _, err := toml.DecodeFile(sn.metadataPath(filename), &md); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("metadata for %s: %w", filename, err)
		}
		return nil, fmt.Errorf("decoding metadata for %s: %w", filename, err)
	}
	return &md, nil
}

// saveMetadata writes filename's TOML sidecar atomically via a temp file
// plus rename, mirroring vault.FSBackend's atomic content publish.
func (sn *StorageNode) saveMetadata(filename string, md *models.FileMetadata) error {
	tmp, err := os.CreateTemp(sn.metaDir, filename+".*.toml.tmp")
	if err != nil {
		return fmt.Errorf("creating temp metadata file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := toml.NewEncoder(tmp)
	enc.Indent = "  "
	if err := enc.Encode(md); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding metadata for %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp metadata file: %w", err)
	}
	if err := os.Rename(tmpPath, sn.metadataPath(filename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publishing metadata for %s: %w", filename, err)
	}
	return nil
}

func (sn *StorageNode) deleteMetadata(filename string) error {
	if err := os.Remove(sn.metadataPath(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting metadata for %s: %w", filename, err)
	}
	return nil
}
