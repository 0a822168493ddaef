package storagenode

import (
	"bytes"
	"strings"

	"github.com/filecoord/osnfs/editengine"
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// stashUndo records body as the pre-mutation state for filename, so a
// following Undo can restore it. The caller must already hold filename's
// write lock.
func (sn *StorageNode) stashUndo(filename, body string) {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	sn.undoStash[filename] = body
}

// Undo swaps filename's current body with the one stashed before the
// last WriteCommit or Revert. A second Undo swaps back, since only one
// prior state is ever retained (SPEC_FULL.md §9's disposition of the
// "how many undo levels" Open Question: exactly one, toggling).
func (sn *StorageNode) Undo(identity, filename string) error {
	unlock := sn.lock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionWrite) {
		return helper.ErrUnauthorized
	}

	sn.mu.Lock()
	prev, stashed := sn.undoStash[filename]
	sn.mu.Unlock()
	if !stashed {
		return helper.ErrInvalidCommand
	}

	var buf bytes.Buffer
	if err := sn.content.Load(filename, &buf); err != nil {
		return helper.ErrInternal
	}
	current := buf.String()

	if err := sn.content.Save(filename, strings.NewReader(prev), int64(len(prev))); err != nil {
		return helper.ErrInternal
	}

	words, chars := editengine.Stats(prev)
	md.WordCount, md.CharCount = words, chars
	md.Modified = sn.clock.Now()
	if err := sn.saveMetadata(filename, md); err != nil {
		return helper.ErrInternal
	}

	sn.mu.Lock()
	sn.undoStash[filename] = current
	sn.mu.Unlock()

	if sn.nn != nil {
		_ = sn.nn.ReportFileStats(filename, words, chars)
	}
	return nil
}
