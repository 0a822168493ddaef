package storagenode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/filecoord/osnfs/editengine"
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// Checkpoint snapshots filename's current body under tag (spec §4.7,
// §3: Checkpoint). SPEC_FULL.md §9 disposes the "what permission does
// checkpointing need" Open Question as read-only: any identity that can
// read the file may checkpoint it, since a checkpoint does not mutate
// the live document.
func (sn *StorageNode) Checkpoint(identity, filename, tag string) error {
	unlock := sn.rlock(filename)
	md, err := sn.loadMetadata(filename)
	if err != nil {
		unlock()
		return helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionRead) {
		unlock()
		return helper.ErrUnauthorized
	}

	body, loadErr := sn.readBody(filename)
	unlock()
	if loadErr != nil {
		return helper.ErrInternal
	}

	cp := &models.Checkpoint{Filename: filename, Tag: tag, Body: body, Timestamp: sn.clock.Now()}

	if err := sn.saveCheckpoint(cp); err != nil {
		return helper.ErrInternal
	}

	sn.mu.Lock()
	sn.checkpoints[models.CheckpointKey{Filename: filename, Tag: tag}] = cp
	sn.mu.Unlock()
	return nil
}

// ViewCheckpoint returns the stored body and timestamp for (filename, tag)
// (spec §4.7: "ViewCheckpoint"). Read permission on the live file is
// enough, consistent with Checkpoint's own permission disposition.
func (sn *StorageNode) ViewCheckpoint(identity, filename, tag string) (string, time.Time, error) {
	unlock := sn.rlock(filename)
	md, err := sn.loadMetadata(filename)
	unlock()
	if err != nil {
		return "", time.Time{}, helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionRead) {
		return "", time.Time{}, helper.ErrUnauthorized
	}

	sn.mu.Lock()
	cp, ok := sn.checkpoints[models.CheckpointKey{Filename: filename, Tag: tag}]
	sn.mu.Unlock()
	if !ok {
		return "", time.Time{}, helper.ErrFileNotFound
	}
	return cp.Body, cp.Timestamp, nil
}

// ListCheckpoints returns every tag recorded for filename (spec §4.7:
// "ListCheckpoints").
func (sn *StorageNode) ListCheckpoints(identity, filename string) ([]string, error) {
	unlock := sn.rlock(filename)
	md, err := sn.loadMetadata(filename)
	unlock()
	if err != nil {
		return nil, helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionRead) {
		return nil, helper.ErrUnauthorized
	}

	sn.mu.Lock()
	defer sn.mu.Unlock()

	var tags []string
	for key := range sn.checkpoints {
		if key.Filename == filename {
			tags = append(tags, key.Tag)
		}
	}
	return tags, nil
}

// Revert replaces filename's live body with checkpoint tag's snapshot
// (spec §4.7: "Revert"), requiring write permission since it mutates the
// live document. The pre-revert body is stashed so a following Undo
// toggles back to it (SPEC_FULL.md §9's one-level undo disposition).
func (sn *StorageNode) Revert(identity, filename, tag string) error {
	sn.mu.Lock()
	cp, ok := sn.checkpoints[models.CheckpointKey{Filename: filename, Tag: tag}]
	sn.mu.Unlock()
	if !ok {
		return helper.ErrFileNotFound
	}

	unlock := sn.lock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionWrite) {
		return helper.ErrUnauthorized
	}

	current, err := sn.readBodyLocked(filename)
	if err != nil {
		return helper.ErrInternal
	}
	sn.stashUndo(filename, current)

	if err := sn.content.Save(filename, strings.NewReader(cp.Body), int64(len(cp.Body))); err != nil {
		return helper.ErrInternal
	}

	words, chars := editengine.Stats(cp.Body)
	md.WordCount, md.CharCount = words, chars
	md.Modified = sn.clock.Now()
	if err := sn.saveMetadata(filename, md); err != nil {
		return helper.ErrInternal
	}

	if sn.nn != nil {
		_ = sn.nn.ReportFileStats(filename, words, chars)
	}
	return nil
}

func (sn *StorageNode) readBody(filename string) (string, error) {
	return sn.readBodyLocked(filename)
}

func (sn *StorageNode) readBodyLocked(filename string) (string, error) {
	var buf bytes.Buffer
	if err := sn.content.Load(filename, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (sn *StorageNode) saveCheckpoint(cp *models.Checkpoint) error {
	dir := filepath.Join(sn.metaDir, "checkpoints")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(sn.checkpointPath(cp.Filename, cp.Tag))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	return enc.Encode(cp)
}

// loadCheckpoints populates sn.checkpoints from the checkpoints directory
// on startup.
func (sn *StorageNode) loadCheckpoints() error {
	dir := filepath.Join(sn.metaDir, "checkpoints")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		var cp models.Checkpoint
		if _, err := toml.DecodeFile(filepath.Join(dir, entry.Name()), &cp); err != nil {
			sn.log.Warnf("skipping unreadable checkpoint file %s: %v", entry.Name(), err)
			continue
		}
		sn.checkpoints[models.CheckpointKey{Filename: cp.Filename, Tag: cp.Tag}] = &cp
	}
	return nil
}

func (sn *StorageNode) deleteCheckpointsFor(filename string) {
	sn.mu.Lock()
	for key := range sn.checkpoints {
		if key.Filename == filename {
			delete(sn.checkpoints, key)
			os.Remove(sn.checkpointPath(key.Filename, key.Tag))
		}
	}
	sn.mu.Unlock()
}
