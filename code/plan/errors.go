package plan

import (
	"fmt"
	"strings"
)

// SyntaxError reports the first malformed line in a plan document.
// A plan is all-or-nothing: one bad line fails the whole parse.
type SyntaxError struct {
	Line   int
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("plan syntax error at line %d: %s (%q)", e.Line, e.Reason, e.Text)
}

// ValidationKind names a structural problem a plan can have.
type ValidationKind string

const (
	UnknownSource         ValidationKind = "UnknownSource"
	DuplicateSource       ValidationKind = "DuplicateSource"
	DestinationConflict   ValidationKind = "DestinationConflict"
	NoOpMove              ValidationKind = "NoOpMove"
	CyclicMove            ValidationKind = "CyclicMove"
	UnknownDestinationDir ValidationKind = "UnknownDestinationDir"
)

// ValidationError is the verdict for a structurally unsound plan. It
// carries the offending paths and the plan line that introduced them.
type ValidationError struct {
	Kind  ValidationKind
	Paths []string
	Line  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan validation failed (%s) at line %d: %s", e.Kind, e.Line, strings.Join(e.Paths, ", "))
}
