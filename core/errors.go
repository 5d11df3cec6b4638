/*
errors.go - Centralized error types for the staffing engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors  - Invalid caller input (invalid margin target)
  2. Lifecycle errors - Transition attempts that violate an invariant
  3. Store errors  - Missing rows, lost-update conflicts
  4. Integrity errors - Stored data that no longer parses (unknown status)

USAGE:
  Callers classify with errors.Is:

    if errors.Is(err, core.ErrPreconditionFailed) {
        // 409, caller must correct the request
    }

SEE ALSO:
  - rate/margin.go: Wraps ErrInvalidMarginInput
  - contract/lifecycle.go: Wraps ErrPreconditionFailed
  - store/sqlite: Returns ErrNotFound and ErrConcurrentModification
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidMarginInput is returned when a target margin of 100% or more
	// is passed to an inverse rate calculation. Never clamped silently.
	ErrInvalidMarginInput = errors.New("invalid margin input")

	// ErrPreconditionFailed is returned when a lifecycle transition violates
	// an invariant, such as transitioning out of a terminal status or
	// deleting a signed signatory. The caller must correct the request.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotFound is returned when a referenced entity or version does not
	// exist within the caller's organization.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification is returned when an optimistic-concurrency
	// check detects that another operator saved the record first.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrUnknownStatus is returned when a stored status string does not parse
	// to a known value. This is a data-integrity error to be logged, never
	// displayed as a silent fallback.
	ErrUnknownStatus = errors.New("unknown status value")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidMarginError reports the offending target margin percentage.
type InvalidMarginError struct {
	TargetMarginPct string
}

func (e *InvalidMarginError) Error() string {
	return fmt.Sprintf("target margin %s%% must be below 100%%", e.TargetMarginPct)
}

func (e *InvalidMarginError) Unwrap() error { return ErrInvalidMarginInput }

// TransitionError reports an invalid lifecycle transition attempt.
type TransitionError struct {
	EntityKind string
	From       string
	To         string
	Reason     string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot transition from %s to %s: %s", e.EntityKind, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s cannot transition from %s to %s", e.EntityKind, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrPreconditionFailed }

// UnknownStatusError reports an unrecognized stored status string.
type UnknownStatusError struct {
	EntityKind string
	Value      string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("%s has unknown status %q", e.EntityKind, e.Value)
}

func (e *UnknownStatusError) Unwrap() error { return ErrUnknownStatus }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMarginInput) ||
		errors.Is(err, ErrPreconditionFailed)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error indicates a lost-update conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
