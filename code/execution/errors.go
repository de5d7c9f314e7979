package execution

import (
	"fmt"

	typesplan "github.com/Voltaic314/DeskSweep/code/types/plan"
)

// ExecutionError means a physical move failed mid-plan. The engine never
// continues past a failure; it rolls back everything applied so far and
// reports how that went alongside the original cause.
type ExecutionError struct {
	Op               typesplan.Op
	Cause            error
	RollbackComplete bool           // true when the automatic rollback restored everything
	RollbackFailure  *RollbackError // set when the automatic rollback was itself partial
}

func (e *ExecutionError) Error() string {
	if e.RollbackComplete {
		return fmt.Sprintf("operation %d failed (%v); all prior operations rolled back", e.Op.SequenceIndex, e.Cause)
	}
	return fmt.Sprintf("operation %d failed (%v); rollback incomplete: %v", e.Op.SequenceIndex, e.Cause, e.RollbackFailure)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// RollbackError reports undo moves that could not be applied. The
// unresolved entries stay in the journal for a retry or manual fix;
// this is the one state the system cannot self-heal.
type RollbackError struct {
	Unresolved []typesplan.RollbackEntry
	Reasons    []string
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback left %d entries unresolved; journal retained for manual resolution: %v", len(e.Unresolved), e.Reasons)
}
