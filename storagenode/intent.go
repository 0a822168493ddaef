package storagenode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// intentRecord names a (content, metadata) write that is in flight,
// grounded in danmuck-dps_files' key_store intent.go: write an intent
// before a multi-step disk write, clear it only once every step has
// landed, and let a crash-recovery scan clean up whatever a half-finished
// intent left behind.
type intentRecord struct {
	Filename string `json:"filename"`
	Op       string `json:"op"`
}

func (sn *StorageNode) intentDir() string {
	return filepath.Join(sn.metaDir, ".intents")
}

func (sn *StorageNode) intentPath(filename string) string {
	return filepath.Join(sn.intentDir(), filename+".json")
}

func (sn *StorageNode) beginIntent(filename, op string) error {
	dir := sn.intentDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating intents directory: %w", err)
	}

	data, err := json.Marshal(intentRecord{Filename: filename, Op: op})
	if err != nil {
		return fmt.Errorf("marshaling intent: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filename+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp intent file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing intent: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing intent file: %w", err)
	}
	if err := os.Rename(tmpPath, sn.intentPath(filename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publishing intent file: %w", err)
	}
	return nil
}

func (sn *StorageNode) clearIntent(filename string) error {
	if err := os.Remove(sn.intentPath(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing intent for %s: %w", filename, err)
	}
	return nil
}

// recoverIntents runs once at startup. Any intent whose metadata sidecar
// exists is treated as committed and just cleared; any intent with no
// metadata means the process died mid-create, so the orphaned content (if
// any) is removed and the filename is left absent, as if Create had never
// happened. A WriteCommit intent always finds the file's existing sidecar,
// so it is only cleared: content and metadata stay as the crash left them.
func (sn *StorageNode) recoverIntents() error {
	dir := sn.intentDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading intents directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := sn.recoverIntentFile(path); err != nil {
			sn.log.Warnf("intent recovery issue for %s: %v", entry.Name(), err)
		}
	}
	return nil
}

func (sn *StorageNode) recoverIntentFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading intent file: %w", err)
	}

	var rec intentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return os.Remove(path)
	}

	var md struct{}
	if _, err := toml.DecodeFile(sn.metadataPath(rec.Filename), &md); err == nil {
		// metadata landed; the write committed before the crash.
		return os.Remove(path)
	}

	if err := sn.content.Delete(rec.Filename); err != nil {
		sn.log.Warnf("cleaning orphaned content for %s: %v", rec.Filename, err)
	}
	return os.Remove(path)
}
