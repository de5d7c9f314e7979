// Package execution applies validated plans to disk under a crash-safe,
// reversible transaction model.
package execution

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Voltaic314/DeskSweep/code/config"
	"github.com/Voltaic314/DeskSweep/code/journal"
	"github.com/Voltaic314/DeskSweep/code/logging"
	"github.com/Voltaic314/DeskSweep/code/tree"
	typesplan "github.com/Voltaic314/DeskSweep/code/types/plan"
)

// Engine owns one Session: it applies a validated plan in order,
// journals the inverse of every mutation before touching the next one,
// and resolves the run through Commit or Rollback.
//
// State machine: Idle -> Executing -> {Committed, RolledBack}.
type Engine struct {
	session *typesplan.Session
	cfg     config.Config
	jrnl    *journal.Journal
	lock    *Lock
}

// NewEngine builds an idle engine for one plan run against rootPath.
func NewEngine(rootPath, planDocument string, cfg config.Config) (*Engine, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolve root path")
	}
	return &Engine{
		session: &typesplan.Session{
			ID:        uuid.New().String(),
			PlanID:    journal.PlanID(planDocument),
			Mode:      typesplan.ModeExecute,
			State:     typesplan.StateIdle,
			RootPath:  abs,
			StartedAt: time.Now(),
		},
		cfg: cfg,
	}, nil
}

// Session exposes the run's state for reporting.
func (e *Engine) Session() *typesplan.Session { return e.session }

func (e *Engine) stateDir() string {
	return filepath.Join(e.session.RootPath, e.cfg.StateDirName)
}

// Execute applies the validated operations in sequence order. On
// success the engine stays in Executing, awaiting the commit/rollback
// decision. On a mid-plan failure it automatically rolls back everything
// applied so far and returns an ExecutionError describing both halves.
func (e *Engine) Execute(ops []typesplan.Op) error {
	if e.session.State != typesplan.StateIdle {
		return errors.Errorf("engine is %s, expected %s", e.session.State, typesplan.StateIdle)
	}

	lock, err := AcquireLock(e.stateDir(), e.session.ID)
	if err != nil {
		return err
	}
	e.lock = lock

	jrnl, err := journal.Open(e.stateDir(), e.session.PlanID)
	if err != nil {
		e.releaseLock()
		return err
	}
	e.jrnl = jrnl
	e.session.State = typesplan.StateExecuting

	e.log("info", "Execution started", map[string]any{
		"plan_id": e.session.PlanID,
		"ops":     len(ops),
	}, "EXECUTE_PLAN")

	for _, op := range ops {
		if err := e.apply(op); err != nil {
			return e.failAndRollback(op, err)
		}
	}

	return nil
}

// Commit irreversibly accepts the executed plan: entries are marked
// Committed and the journal file is deleted. No undo after this.
func (e *Engine) Commit() error {
	if e.session.State != typesplan.StateExecuting {
		return errors.Errorf("engine is %s, expected %s", e.session.State, typesplan.StateExecuting)
	}
	if err := e.jrnl.Delete(); err != nil {
		return err
	}
	e.session.State = typesplan.StateCommitted
	e.releaseLock()
	e.log("info", "Plan committed", map[string]any{"plan_id": e.session.PlanID}, "COMMIT_PLAN")
	return nil
}

// Rollback undoes every Pending journal entry in undo order. A fully
// successful rollback deletes the journal; a partial one retains only
// the unresolved entries and returns a RollbackError. Calling Rollback
// again after a partial failure retries just those entries.
func (e *Engine) Rollback() error {
	if e.session.State != typesplan.StateExecuting && e.session.State != typesplan.StateRolledBack {
		return errors.Errorf("engine is %s, nothing to roll back", e.session.State)
	}

	rbErr := undoPending(e.session.RootPath, e.jrnl)
	e.session.State = typesplan.StateRolledBack
	if rbErr != nil {
		e.log("error", "Rollback incomplete", map[string]any{
			"unresolved": len(rbErr.Unresolved),
			"reasons":    rbErr.Reasons,
		}, "ROLLBACK_PLAN")
		// The lock stays held: no new run may start on this root while
		// unresolved entries remain in the journal.
		return rbErr
	}

	e.releaseLock()
	e.log("info", "Rollback complete", map[string]any{"plan_id": e.session.PlanID}, "ROLLBACK_PLAN")
	return nil
}

// ResumeRollback restores an interrupted run from its persisted journal:
// the process died (or was killed) mid-plan, and the journal on disk is
// the only record of what actually happened.
func ResumeRollback(rootPath, planDocument string, cfg config.Config) error {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return errors.Wrap(err, "resolve root path")
	}
	stateDir := filepath.Join(abs, cfg.StateDirName)
	planID := journal.PlanID(planDocument)

	if !journal.Exists(stateDir, planID) {
		return errors.Errorf("no journal found for plan %s; nothing to roll back", planID)
	}

	// Recovery takes over the dead run's lock; if the owner is still
	// alive this refuses rather than undoing moves under a live run.
	lock, err := TakeoverLock(stateDir, uuid.New().String())
	if err != nil {
		return err
	}

	jrnl, err := journal.Open(stateDir, planID)
	if err != nil {
		lock.Release()
		return err
	}
	if rbErr := undoPending(abs, jrnl); rbErr != nil {
		// Keep the lock marker: the root stays closed to new runs until
		// the unresolved entries are dealt with.
		return rbErr
	}
	return lock.Release()
}

// apply physically performs one operation and journals its inverse. The
// journal append is flushed before apply returns; that flush is the only
// suspension point the crash-safety story depends on.
func (e *Engine) apply(op typesplan.Op) error {
	switch op.Kind {
	case typesplan.OpMkdir:
		return e.applyMkdir(op)
	case typesplan.OpMove:
		return e.applyMove(op)
	default:
		return errors.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (e *Engine) applyMkdir(op typesplan.Op) error {
	osPath := tree.OSPath(e.session.RootPath, op.Destination)
	if info, err := os.Stat(osPath); err == nil {
		if info.IsDir() {
			e.log("info", "Directory already exists, skipping", map[string]any{"path": op.Destination}, "APPLY_MKDIR")
			return nil
		}
		return errors.Errorf("mkdir target %s exists and is not a directory", op.Destination)
	}

	if err := e.createDirs(op.Destination); err != nil {
		return err
	}
	e.log("info", "Directory created", map[string]any{"path": op.Destination}, "APPLY_MKDIR")
	return nil
}

func (e *Engine) applyMove(op typesplan.Op) error {
	parent := tree.Parent(op.Destination)
	if parent != "/" {
		if _, err := os.Stat(tree.OSPath(e.session.RootPath, parent)); os.IsNotExist(err) {
			if !e.cfg.AutoMkdir {
				return errors.Errorf("destination directory %s does not exist", parent)
			}
			if cerr := e.createDirs(parent); cerr != nil {
				return cerr
			}
		}
	}

	srcOS := tree.OSPath(e.session.RootPath, op.Source)
	dstOS := tree.OSPath(e.session.RootPath, op.Destination)
	if err := os.Rename(srcOS, dstOS); err != nil {
		return errors.Wrapf(err, "move %s -> %s", op.Source, op.Destination)
	}

	if jerr := e.jrnl.Record(typesplan.RollbackEntry{
		Kind:               typesplan.OpMove,
		AppliedSource:      op.Source,
		AppliedDestination: op.Destination,
	}); jerr != nil {
		// The move happened but its inverse never hit disk. Put the
		// entry back by hand so the upcoming rollback stays complete.
		if uerr := os.Rename(dstOS, srcOS); uerr != nil {
			return errors.Wrapf(jerr, "journal append failed and manual restore of %s also failed: %v", op.Source, uerr)
		}
		return jerr
	}

	e.log("info", "Moved", map[string]any{
		"source":      op.Source,
		"destination": op.Destination,
	}, "APPLY_MOVE")
	return nil
}

// createDirs makes the directory (and any missing ancestors) under the
// root one level at a time, shallowest first, journaling each directory
// the moment it exists. A directory is never left on disk without its
// undo entry: if the journal append fails, the fresh directory is
// removed before the error surfaces.
func (e *Engine) createDirs(dir string) error {
	var missing []string
	for p := dir; p != "/"; p = tree.Parent(p) {
		if _, err := os.Stat(tree.OSPath(e.session.RootPath, p)); err == nil {
			break
		}
		missing = append([]string{p}, missing...)
	}

	for _, p := range missing {
		osPath := tree.OSPath(e.session.RootPath, p)
		if err := os.Mkdir(osPath, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", p)
		}
		if jerr := e.jrnl.Record(typesplan.RollbackEntry{
			Kind:               typesplan.OpMkdir,
			AppliedDestination: p,
		}); jerr != nil {
			os.Remove(osPath)
			return jerr
		}
	}
	return nil
}

func (e *Engine) failAndRollback(op typesplan.Op, cause error) error {
	e.log("error", "Operation failed, rolling back", map[string]any{
		"op":  op.SequenceIndex,
		"err": cause.Error(),
	}, "EXECUTE_PLAN")

	execErr := &ExecutionError{Op: op, Cause: cause}
	if rbErr := undoPending(e.session.RootPath, e.jrnl); rbErr != nil {
		// Partial rollback keeps the lock so no new run starts while
		// unresolved entries remain.
		execErr.RollbackFailure = rbErr
	} else {
		execErr.RollbackComplete = true
		e.releaseLock()
	}
	e.session.State = typesplan.StateRolledBack
	return execErr
}

// undoPending runs the rollback procedure over every Pending entry in
// undo order. Individual failures don't abort the procedure; the
// survivors are reported together at the end.
func undoPending(rootPath string, jrnl *journal.Journal) *RollbackError {
	pending := jrnl.Pending()

	var unresolved []typesplan.RollbackEntry
	var reasons []string

	for _, entry := range pending {
		if err := undoEntry(rootPath, entry); err != nil {
			unresolved = append(unresolved, entry)
			reasons = append(reasons, err.Error())
			if logging.GlobalLogger != nil {
				logging.GlobalLogger.Log("error", "engine", "", "Undo failed", map[string]any{
					"applied_source":      entry.AppliedSource,
					"applied_destination": entry.AppliedDestination,
					"err":                 err.Error(),
				}, "UNDO_MOVE")
			}
		}
	}

	if len(unresolved) > 0 {
		if err := jrnl.RewritePending(unresolved); err != nil {
			reasons = append(reasons, err.Error())
		}
		return &RollbackError{Unresolved: unresolved, Reasons: reasons}
	}

	if err := jrnl.Delete(); err != nil {
		return &RollbackError{Reasons: []string{err.Error()}}
	}
	return nil
}

func undoEntry(rootPath string, entry typesplan.RollbackEntry) error {
	switch entry.Kind {
	case typesplan.OpMove:
		from := tree.OSPath(rootPath, entry.AppliedDestination)
		to := tree.OSPath(rootPath, entry.AppliedSource)
		if err := os.Rename(from, to); err != nil {
			return errors.Wrapf(err, "restore %s", entry.AppliedSource)
		}
		return nil

	case typesplan.OpMkdir:
		osPath := tree.OSPath(rootPath, entry.AppliedDestination)
		entries, err := os.ReadDir(osPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil // already gone
			}
			return errors.Wrapf(err, "inspect %s", entry.AppliedDestination)
		}
		if len(entries) > 0 {
			// Someone put files in it between execution and rollback.
			// Leaving an extra directory is harmless next to deleting
			// a user's files, so warn and move on.
			if logging.GlobalLogger != nil {
				logging.GlobalLogger.Log("warning", "engine", "", "Directory not empty during rollback, keeping it", map[string]any{
					"path": entry.AppliedDestination,
				}, "UNDO_MKDIR")
			}
			return nil
		}
		if err := os.Remove(osPath); err != nil {
			return errors.Wrapf(err, "remove directory %s", entry.AppliedDestination)
		}
		return nil

	default:
		return errors.Errorf("unknown journal entry kind %q", entry.Kind)
	}
}

func (e *Engine) releaseLock() {
	if e.lock != nil {
		e.lock.Release()
		e.lock = nil
	}
}

func (e *Engine) log(level, message string, details map[string]any, action string) {
	if logging.GlobalLogger == nil {
		return
	}
	logging.GlobalLogger.Log(level, "engine", e.session.ID, message, details, action)
}
