// Package errorsx implements the three-way error disposition described in
// spec.md §7: fatal errors are logged and the process exits; recoverable
// errors are warned about and the offending unit is skipped; invariant
// violations abort via panic so a misbehaving merge or visitor doesn't
// silently corrupt the graph.
package errorsx

import (
	"fmt"
	"time"
)

// Kind classifies how a CallgraphError should be handled by its caller.
type Kind string

const (
	// KindFatal errors make forward progress impossible: a missing
	// compilation database, an allocation failure, an unrecoverable
	// config-file syntax error.
	KindFatal Kind = "fatal"
	// KindRecoverable errors cause one unit of work (a translation
	// unit, an option) to be skipped or rejected; the run continues.
	KindRecoverable Kind = "recoverable"
	// KindInvariant errors indicate a broken internal invariant
	// (nested function, a merge reconciling two distinct definition
	// files without DUPLICATED set, a failed buffer adjust) and should
	// abort the run rather than produce a silently wrong graph.
	KindInvariant Kind = "invariant"
)

// CallgraphError carries enough context to log and, for recoverable
// errors, to decide what was skipped.
type CallgraphError struct {
	Kind      Kind
	Operation string
	Detail    string
	Err       error
	At        time.Time
}

func (e *CallgraphError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Detail)
}

func (e *CallgraphError) Unwrap() error { return e.Err }

// New constructs a CallgraphError of the given kind.
func New(kind Kind, op string, err error, format string, args ...any) *CallgraphError {
	return &CallgraphError{
		Kind:      kind,
		Operation: op,
		Detail:    fmt.Sprintf(format, args...),
		Err:       err,
		At:        time.Now(),
	}
}

// Fatal builds a KindFatal error.
func Fatal(op string, err error, format string, args ...any) *CallgraphError {
	return New(KindFatal, op, err, format, args...)
}

// Recoverable builds a KindRecoverable error.
func Recoverable(op string, err error, format string, args ...any) *CallgraphError {
	return New(KindRecoverable, op, err, format, args...)
}

// InvariantViolation panics with a KindInvariant error. Call sites use
// this the way the original C used assert(): a violation here means a
// bug in the core, not bad input.
func InvariantViolation(op, format string, args ...any) {
	panic(New(KindInvariant, op, nil, format, args...))
}

// Assert panics with an invariant-violation error if cond is false.
// Mirrors the liberal assert() calls in literal.c / callgraph.c.
func Assert(cond bool, op, format string, args ...any) {
	if !cond {
		InvariantViolation(op, format, args...)
	}
}

// Recover turns a panic carrying a *CallgraphError back into an error
// return, for call sites (such as per-translation-unit parsing) that
// need to convert an invariant violation into a recoverable skip rather
// than crash the whole pipeline. Other panic values are re-raised.
func Recover(into *error) {
	r := recover()
	if r == nil {
		return
	}
	if ce, ok := r.(*CallgraphError); ok {
		*into = ce
		return
	}
	panic(r)
}
