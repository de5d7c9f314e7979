// Package journal persists the inverse of every applied operation so a
// plan can be undone after a crash or an explicit rejection.
package journal

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"

	typesplan "github.com/Voltaic314/DeskSweep/code/types/plan"
)

// PlanID derives the identifier binding a journal file to the plan
// document that produced it.
func PlanID(document string) string {
	sum := sha256.Sum256([]byte(document))
	return hex.EncodeToString(sum[:])[:16]
}

// FilePath returns the journal file location for a plan inside the
// state directory.
func FilePath(stateDir, planID string) string {
	return filepath.Join(stateDir, "journal-"+planID+".jsonl")
}

// Exists reports whether a journal for the plan is already on disk,
// which means an earlier run never resolved its commit/rollback.
func Exists(stateDir, planID string) bool {
	_, err := os.Stat(FilePath(stateDir, planID))
	return err == nil
}

// Journal is an append-only JSON-lines log of rollback entries. Every
// Record call is flushed to durable storage before it returns, so the
// file on disk always reflects exactly the moves that actually happened.
type Journal struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	entries []typesplan.RollbackEntry
}

// Open creates (or reopens, after a crash) the journal for a plan.
// Existing entries are loaded so an interrupted run can still be undone.
func Open(stateDir, planID string) (*Journal, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	path := FilePath(stateDir, planID)

	entries, err := readEntries(path)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}

	return &Journal{path: path, file: file, entries: entries}, nil
}

// Record appends an entry durably. UndoOrder is assigned from the append
// position; Pending() returns entries in strict reverse of it.
func (j *Journal) Record(e typesplan.RollbackEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	e.UndoOrder = len(j.entries)
	e.Status = typesplan.StatusPending

	line, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal journal entry")
	}
	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "append journal entry")
	}
	// The crash-safety boundary: the entry must hit disk before the
	// engine is allowed to touch the next operation.
	if err := j.file.Sync(); err != nil {
		return errors.Wrap(err, "sync journal")
	}

	j.entries = append(j.entries, e)
	return nil
}

// Pending returns all Pending entries in undo order: later moves are
// undone first, since an earlier move's destination may be a later
// move's new parent.
func (j *Journal) Pending() []typesplan.RollbackEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	var pending []typesplan.RollbackEntry
	for _, e := range j.entries {
		if e.Status == typesplan.StatusPending {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, k int) bool {
		return pending[i].UndoOrder > pending[k].UndoOrder
	})
	return pending
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// RewritePending atomically replaces the journal contents with only the
// given unresolved entries. Used after a partial rollback so a retry or
// manual fix still has exactly the entries that could not be restored.
func (j *Journal) RewritePending(unresolved []typesplan.RollbackEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	tmp := j.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open temp journal")
	}
	for _, e := range unresolved {
		line, merr := json.Marshal(e)
		if merr != nil {
			f.Close()
			return errors.Wrap(merr, "marshal journal entry")
		}
		if _, werr := f.Write(append(line, '\n')); werr != nil {
			f.Close()
			return errors.Wrap(werr, "write temp journal")
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "sync temp journal")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close temp journal")
	}

	j.file.Close()
	if err := os.Rename(tmp, j.path); err != nil {
		return errors.Wrap(err, "swap journal")
	}

	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "reopen journal")
	}
	j.file = file
	j.entries = unresolved
	return nil
}

// Delete removes the journal file. Only called on full commit or a
// fully successful rollback; a partial rollback keeps the file.
func (j *Journal) Delete() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		j.file.Close()
		j.file = nil
	}
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove journal")
	}
	j.entries = nil
	return nil
}

// Close releases the file handle without deleting anything.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func readEntries(path string) ([]typesplan.RollbackEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read journal")
	}
	defer f.Close()

	var entries []typesplan.RollbackEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e typesplan.RollbackEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, errors.Wrapf(err, "corrupt journal line in %s", path)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan journal")
	}
	return entries, nil
}
