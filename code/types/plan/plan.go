// Package plan provides types for plan documents, rollback records,
// and execution sessions.
package plan

import "time"

// OpKind identifies what a plan step does on disk.
type OpKind string

const (
	OpMove  OpKind = "move"
	OpMkdir OpKind = "mkdir"
)

// Op is one parsed plan step. Paths are root-relative with forward
// slashes and a leading "/", matching tree snapshot paths.
type Op struct {
	Kind          OpKind
	Source        string // move only
	Destination   string // move target, or the directory for mkdir
	SequenceIndex int    // position in the plan; execution order is significant
	Line          int    // 1-based line in the plan document, for error reporting
}

// EntryStatus is the lifecycle state of a journal record.
type EntryStatus string

const (
	StatusPending    EntryStatus = "Pending"
	StatusCommitted  EntryStatus = "Committed"
	StatusRolledBack EntryStatus = "RolledBack"
)

// RollbackEntry is the persisted inverse of one applied operation.
// For a move, undo means moving AppliedDestination back to AppliedSource.
// For a mkdir, undo means removing AppliedDestination if still empty.
type RollbackEntry struct {
	Kind               OpKind      `json:"kind"`
	AppliedSource      string      `json:"applied_source"`
	AppliedDestination string      `json:"applied_destination"`
	UndoOrder          int         `json:"undo_order"`
	Status             EntryStatus `json:"status"`
}

// Mode selects what a run does.
type Mode string

const (
	ModePlan    Mode = "plan"
	ModeExecute Mode = "execute"
)

// SessionState is the execution engine's state machine position.
type SessionState string

const (
	StateIdle       SessionState = "Idle"
	StateExecuting  SessionState = "Executing"
	StateCommitted  SessionState = "Committed"
	StateRolledBack SessionState = "RolledBack"
)

// Session is the process-wide state for one plan run. It binds a journal
// to the plan document that produced it via PlanID.
type Session struct {
	ID        string
	PlanID    string // hash prefix of the plan document
	Mode      Mode
	State     SessionState
	RootPath  string // absolute, OS-native path of the target root
	StartedAt time.Time
}
