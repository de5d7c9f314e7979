package execution

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// Lock is the advisory marker preventing two Execute runs from
// corrupting each other's journals on the same root. Scans don't take
// it; they only read.
type Lock struct {
	path string
}

type lockInfo struct {
	PID       int       `json:"pid"`
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// AcquireLock takes the advisory lock for the target root, refusing if
// another Execute run already holds it.
func AcquireLock(stateDir, sessionID string) (*Lock, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	path := filepath.Join(stateDir, "execute.lock")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Errorf("another execute run holds the lock at %s; finish or roll back that run first", path)
		}
		return nil, errors.Wrap(err, "acquire lock")
	}

	info := lockInfo{PID: os.Getpid(), SessionID: sessionID, StartedAt: time.Now()}
	payload, _ := json.Marshal(info)
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.Wrap(err, "write lock info")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, errors.Wrap(err, "close lock file")
	}

	return &Lock{path: path}, nil
}

// TakeoverLock claims the lock for rollback recovery. A marker left by a
// dead process is replaced; a marker whose owner is still running wins,
// so recovery can never yank the lock out from under a live run.
func TakeoverLock(stateDir, sessionID string) (*Lock, error) {
	path := filepath.Join(stateDir, "execute.lock")

	data, err := os.ReadFile(path)
	if err == nil {
		var info lockInfo
		if jerr := json.Unmarshal(data, &info); jerr == nil && info.PID != os.Getpid() && pidAlive(info.PID) {
			return nil, errors.Errorf("another execute run (pid %d) holds the lock at %s; wait for it to finish", info.PID, path)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "clear stale lock")
		}
	}

	return AcquireLock(stateDir, sessionID)
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to someone else.
	return errors.Is(err, syscall.EPERM)
}

// Release removes the marker file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "release lock")
	}
	return nil
}
