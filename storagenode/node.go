// Package storagenode implements the Storage Node: the process that owns
// file content, per-file metadata and ACLs, sentence-level write
// application, and the checkpoint/undo subsystem (spec §4.7-§4.9).
package storagenode

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
	"github.com/filecoord/osnfs/vault"
)

// NNLink is the subset of the Name Node's RPC surface a Storage Node
// calls back into: lock revalidation before a commit (spec §9's
// cooperative-to-enforced redesign) and pushing updated word/char counts
// after a mutation (SPEC_FULL.md §4.2 supplement).
type NNLink interface {
	CheckLocks(identity, filename string, sentenceIdxs []int) (bool, error)
	ReportFileStats(filename string, words, chars int) error
}

// StorageNode owns one vault.Backend's worth of content plus the
// metadata/ACL/checkpoint bookkeeping around it. There are no
// package-level globals; every operation hangs off this struct (spec §9).
type StorageNode struct {
	id string

	content vault.Backend
	metaDir string

	locks *fileLockTable

	mu          sync.Mutex // guards checkpoints and undoStash maps below
	checkpoints map[models.CheckpointKey]*models.Checkpoint
	undoStash   map[string]string // filename -> body before the last WriteCommit/Revert/Undo

	nn    NNLink
	clock helper.Clock
	log   *helper.Logger
}

// Config bundles a StorageNode's dependencies.
type Config struct {
	ID         string
	Content    vault.Backend
	MetaDir    string
	NN         NNLink
	Clock      helper.Clock
	Logger     *helper.Logger
}

// New constructs a StorageNode rooted at cfg.MetaDir for metadata/intents
// and backed by cfg.Content for file bodies. It replays any incomplete
// intents left by a prior crash before returning.
func New(cfg Config) (*StorageNode, error) {
	if cfg.Clock == nil {
		cfg.Clock = helper.RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = helper.NewLogger("[SN]")
	}
	if err := os.MkdirAll(cfg.MetaDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}

	sn := &StorageNode{
		id:          cfg.ID,
		content:     cfg.Content,
		metaDir:     cfg.MetaDir,
		locks:       newFileLockTable(),
		checkpoints: make(map[models.CheckpointKey]*models.Checkpoint),
		undoStash:   make(map[string]string),
		nn:          cfg.NN,
		clock:       cfg.Clock,
		log:         cfg.Logger,
	}

	if err := sn.recoverIntents(); err != nil {
		return nil, err
	}
	if err := sn.loadCheckpoints(); err != nil {
		return nil, err
	}

	return sn, nil
}

func (sn *StorageNode) metadataPath(filename string) string {
	return filepath.Join(sn.metaDir, filepath.Base(filename)+".toml")
}

func (sn *StorageNode) checkpointPath(filename, tag string) string {
	return filepath.Join(sn.metaDir, "checkpoints", filepath.Base(filename)+"."+filepath.Base(tag)+".toml")
}
