// File: errors.go
// Role: RegionError/InternalInvariantError types, their Kind enum, and the
// sentinel errors every pass wraps with them.
package rerrors

import (
	"errors"
	"fmt"
)

// Sentinels every pass checks against with errors.Is, regardless of which
// RegionError.Kind they end up wrapped in.
var (
	ErrNotDAG                 = errors.New("rerrors: graph is not a DAG")
	ErrInvariantBroken        = errors.New("rerrors: class invariant broken")
	ErrDuplicateNodeID        = errors.New("rerrors: duplicate node id")
	ErrDanglingEdge           = errors.New("rerrors: dangling edge target")
	ErrMissingEntry           = errors.New("rerrors: missing entry")
	ErrMissingPostDominator   = errors.New("rerrors: expected post-dominator is absent")
	ErrDuplicationBudgetBlown = errors.New("rerrors: duplication budget exceeded")
)

// RegionKind distinguishes the three region-fatal error categories of
// spec.md §7.
type RegionKind int

const (
	// KindStructure: the graph is not a DAG where a pass requires one, or
	// a class invariant (e.g. predecessor/successor symmetry) is broken.
	KindStructure RegionKind = iota
	// KindBudgetExceeded: inflate exceeded inflate.max_duplications.
	KindBudgetExceeded
	// KindMalformedInput: duplicate node id, dangling edge target,
	// missing entry.
	KindMalformedInput
)

func (k RegionKind) String() string {
	switch k {
	case KindStructure:
		return "StructureError"
	case KindBudgetExceeded:
		return "BudgetExceeded"
	case KindMalformedInput:
		return "MalformedInput"
	default:
		return "UnknownRegionErrorKind"
	}
}

// RegionError is fatal for the one region it was raised against: the
// pipeline skips that region and reports the error, but keeps processing
// the rest of a multi-function job.
type RegionError struct {
	Kind RegionKind
	Op   string
	Err  error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RegionError) Unwrap() error { return e.Err }

// Structure wraps err as a StructureError raised by op.
func Structure(op string, err error) error {
	return &RegionError{Kind: KindStructure, Op: op, Err: err}
}

// Budget wraps err as a BudgetExceeded error raised by op.
func Budget(op string, err error) error {
	return &RegionError{Kind: KindBudgetExceeded, Op: op, Err: err}
}

// Malformed wraps err as a MalformedInput error raised by op.
func Malformed(op string, err error) error {
	return &RegionError{Kind: KindMalformedInput, Op: op, Err: err}
}

// InternalInvariantError is fatal for the whole run: it signals a bug in
// the algorithm itself (e.g. a supposed post-dominator is nil where
// non-nil is required), not a property of the input.
type InternalInvariantError struct {
	Op  string
	Err error
}

func (e *InternalInvariantError) Error() string {
	return fmt.Sprintf("%s: InternalInvariant: %v", e.Op, e.Err)
}

func (e *InternalInvariantError) Unwrap() error { return e.Err }

// Internal wraps err as an InternalInvariantError raised by op.
func Internal(op string, err error) error {
	return &InternalInvariantError{Op: op, Err: err}
}

// AsRegionError reports whether err is (or wraps) a *RegionError, and
// returns it.
func AsRegionError(err error) (*RegionError, bool) {
	var re *RegionError
	ok := errors.As(err, &re)
	return re, ok
}

// AsInternalInvariantError reports whether err is (or wraps) an
// *InternalInvariantError, and returns it.
func AsInternalInvariantError(err error) (*InternalInvariantError, bool) {
	var ie *InternalInvariantError
	ok := errors.As(err, &ie)
	return ie, ok
}
