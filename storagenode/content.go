package storagenode

import (
	"bytes"
	"strings"

	"github.com/filecoord/osnfs/editengine"
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
)

// Create allocates an empty body and owner-only metadata for filename
// (spec §4.7). The NN has already reserved the namespace entry and
// redirected the client here; the SN just materializes the file.
func (sn *StorageNode) Create(identity, filename string) error {
	unlock := sn.lock(filename)
	defer unlock()

	if _, err := sn.loadMetadata(filename); err == nil {
		return helper.ErrFileExists
	}

	if err := sn.beginIntent(filename, "create"); err != nil {
		return err
	}

	if err := sn.content.Save(filename, strings.NewReader(""), 0); err != nil {
		return helper.ErrInternal
	}

	now := sn.clock.Now()
	md := &models.FileMetadata{Owner: identity, Created: now, Modified: now, Accessed: now, LastAccessedBy: identity}
	if err := sn.saveMetadata(filename, md); err != nil {
		return helper.ErrInternal
	}

	return sn.clearIntent(filename)
}

// Read returns filename's full body for identity, provided identity holds
// at least read permission (spec §4.7).
func (sn *StorageNode) Read(identity, filename string) (string, error) {
	unlock := sn.rlock(filename)
	md, err := sn.loadMetadata(filename)
	if err != nil {
		unlock()
		return "", helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionRead) {
		unlock()
		return "", helper.ErrUnauthorized
	}

	var buf bytes.Buffer
	loadErr := sn.content.Load(filename, &buf)
	unlock()
	if loadErr != nil {
		return "", helper.ErrInternal
	}

	sn.touchAccess(filename, identity)
	return buf.String(), nil
}

// touchAccess best-effort updates Accessed/LastAccessedBy after a read.
// It takes its own write lock rather than upgrading Read's read lock, so
// a read never blocks behind another reader's bookkeeping update.
func (sn *StorageNode) touchAccess(filename, identity string) {
	unlock := sn.lock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return
	}
	md.Accessed = sn.clock.Now()
	md.LastAccessedBy = identity
	_ = sn.saveMetadata(filename, md)
}

// WriteCommit applies an edit script to filename's body (spec §4.9),
// after revalidating with the NN that identity still holds a live lease
// on every sentence the script touches (spec §9's enforced-lock redesign).
func (sn *StorageNode) WriteCommit(identity, filename, rawScript string) error {
	script, err := editengine.ParseEditScript(rawScript)
	if err != nil {
		return err
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

	if sn.nn != nil {
		ok, err := sn.nn.CheckLocks(identity, filename, []int{script.SentenceIdx})
		if err != nil {
			return helper.ErrInternal
		}
		if !ok {
			return helper.ErrFileLocked
		}
	}

	var buf bytes.Buffer
	if err := sn.content.Load(filename, &buf); err != nil {
		return helper.ErrInternal
	}

	newBody, err := editengine.Apply(buf.String(), script)
	if err != nil {
		return err
	}

	if err := sn.beginIntent(filename, "write"); err != nil {
		return err
	}

	sn.stashUndo(filename, buf.String())

	if err := sn.content.Save(filename, strings.NewReader(newBody), int64(len(newBody))); err != nil {
		return helper.ErrInternal
	}

	words, chars := editengine.Stats(newBody)
	md.WordCount, md.CharCount = words, chars
	md.Modified = sn.clock.Now()
	if err := sn.saveMetadata(filename, md); err != nil {
		return helper.ErrInternal
	}

	if err := sn.clearIntent(filename); err != nil {
		return err
	}

	if sn.nn != nil {
		_ = sn.nn.ReportFileStats(filename, words, chars)
	}
	return nil
}

// Delete removes filename's content, metadata, and checkpoints (the
// Open Question disposition recorded in SPEC_FULL.md §9: Delete cascades
// to checkpoints rather than orphaning them).
func (sn *StorageNode) Delete(identity, filename string) error {
	unlock := sn.lock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return helper.ErrFileNotFound
	}
	if md.Owner != identity {
		return helper.ErrUnauthorized
	}

	if err := sn.content.Delete(filename); err != nil {
		return helper.ErrInternal
	}
	if err := sn.deleteMetadata(filename); err != nil {
		return helper.ErrInternal
	}
	sn.deleteCheckpointsFor(filename)

	sn.mu.Lock()
	delete(sn.undoStash, filename)
	sn.mu.Unlock()

	sn.locks.forget(filename)
	return nil
}

// Info returns filename's metadata plus its current content size (spec
// §4.7: "Info").
func (sn *StorageNode) Info(identity, filename string) (models.FileInfo, error) {
	unlock := sn.rlock(filename)
	defer unlock()

	md, err := sn.loadMetadata(filename)
	if err != nil {
		return models.FileInfo{}, helper.ErrFileNotFound
	}
	if !md.HasPermission(identity, models.PermissionRead) {
		return models.FileInfo{}, helper.ErrUnauthorized
	}

	size, err := sn.content.Stat(filename)
	if err != nil {
		return models.FileInfo{}, helper.ErrInternal
	}

	return models.FileInfo{
		Filename:       filename,
		Owner:          md.Owner,
		Size:           int(size),
		Created:        md.Created,
		Modified:       md.Modified,
		Accessed:       md.Accessed,
		LastAccessedBy: md.LastAccessedBy,
		WordCount:      md.WordCount,
		CharCount:      md.CharCount,
		ACL:            md.ACL,
	}, nil
}

// Stream returns every word of filename's body in reading order, for the
// word-paced display the client drives (spec §4.7/§4.1: "Stream").
func (sn *StorageNode) Stream(identity, filename string) ([]string, error) {
	body, err := sn.Read(identity, filename)
	if err != nil {
		return nil, err
	}

	var words []string
	for _, s := range editengine.Sentences(body) {
		words = append(words, editengine.Words(s)...)
	}
	return words, nil
}

// Copy clones src's current body into a brand-new dst, owned by identity
// with an empty ACL (spec §4.7: "Copy" fails if dst already exists). It
// operates within this SN's content store only: the client always sends
// Copy to src's home, and dst gets no NN namespace entry. Copies across
// Storage Nodes are not supported.
func (sn *StorageNode) Copy(identity, src, dst string) error {
	body, err := sn.Read(identity, src)
	if err != nil {
		return err
	}

	unlock := sn.lock(dst)
	defer unlock()

	if _, err := sn.loadMetadata(dst); err == nil {
		return helper.ErrFileExists
	}

	if err := sn.content.Save(dst, strings.NewReader(body), int64(len(body))); err != nil {
		return helper.ErrInternal
	}

	words, chars := editengine.Stats(body)
	now := sn.clock.Now()
	md := &models.FileMetadata{
		Owner:          identity,
		Created:        now,
		Modified:       now,
		Accessed:       now,
		LastAccessedBy: identity,
		WordCount:      words,
		CharCount:      chars,
	}
	if err := sn.saveMetadata(dst, md); err != nil {
		return helper.ErrInternal
	}

	if sn.nn != nil {
		_ = sn.nn.ReportFileStats(dst, words, chars)
	}
	return nil
}
