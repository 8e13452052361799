package engine

import (
	"errors"
	"fmt"
)

// SequenceError represents an error detected while reading or rewriting a
// firing sequence.
//
// Sequence errors include:
//   - Out of bounds: a move past either end of the sequence
//   - Unknown unit: an operation names a unit the sequence does not hold
//   - Stale suggestion: a suggestion references ids no longer present
//   - Invariant violation: a rewrite would break the permutation invariant
//
// Every error is returned as a value. The sequence it refers to is left
// exactly as it was before the call.
type SequenceError struct {
	// Code identifies the error category.
	Code SequenceErrorCode

	// Message is a human-readable description.
	Message string

	// CaptainID identifies the affected captain, when known.
	CaptainID string

	// UnitID identifies the affected unit, when known.
	UnitID string

	// Details contains additional context.
	Details map[string]string
}

// SequenceErrorCode categorizes sequence errors.
type SequenceErrorCode string

const (
	// ErrCodeOutOfBounds indicates a move past the first or last slot.
	ErrCodeOutOfBounds SequenceErrorCode = "OUT_OF_BOUNDS"

	// ErrCodeUnknownUnit indicates a unit id absent from the sequence or registry.
	ErrCodeUnknownUnit SequenceErrorCode = "UNKNOWN_UNIT"

	// ErrCodeStaleSuggestion indicates a suggestion computed against an older sequence.
	ErrCodeStaleSuggestion SequenceErrorCode = "STALE_SUGGESTION"

	// ErrCodeInvariantViolation indicates a result that is not a permutation of its input.
	ErrCodeInvariantViolation SequenceErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeUnknownCaptain indicates a captain the roster has never been assigned.
	ErrCodeUnknownCaptain SequenceErrorCode = "UNKNOWN_CAPTAIN"
)

// Error implements the error interface.
func (e *SequenceError) Error() string {
	if e.CaptainID != "" && e.UnitID != "" {
		return fmt.Sprintf("%s: %s (captain=%s, unit=%s)", e.Code, e.Message, e.CaptainID, e.UnitID)
	}
	if e.CaptainID != "" {
		return fmt.Sprintf("%s: %s (captain=%s)", e.Code, e.Message, e.CaptainID)
	}
	if e.UnitID != "" {
		return fmt.Sprintf("%s: %s (unit=%s)", e.Code, e.Message, e.UnitID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the SequenceErrorCode carried by err, or "" if err is not
// (and does not wrap) a *SequenceError.
func CodeOf(err error) SequenceErrorCode {
	var se *SequenceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsOutOfBounds returns true if the error is an out-of-bounds move.
// Uses errors.As to handle wrapped errors.
func IsOutOfBounds(err error) bool {
	return CodeOf(err) == ErrCodeOutOfBounds
}

// IsUnknownUnit returns true if the error names an unknown unit.
func IsUnknownUnit(err error) bool {
	return CodeOf(err) == ErrCodeUnknownUnit
}

// IsStaleSuggestion returns true if the error is a stale suggestion.
func IsStaleSuggestion(err error) bool {
	return CodeOf(err) == ErrCodeStaleSuggestion
}

// IsInvariantViolation returns true if the error is a permutation invariant violation.
func IsInvariantViolation(err error) bool {
	return CodeOf(err) == ErrCodeInvariantViolation
}

// IsUnknownCaptain returns true if the error names an unknown captain.
func IsUnknownCaptain(err error) bool {
	return CodeOf(err) == ErrCodeUnknownCaptain
}

// NewOutOfBoundsError creates a SequenceError for a move past an edge.
func NewOutOfBoundsError(unitID string, position, length int, dir string) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeOutOfBounds,
		Message: fmt.Sprintf("cannot move %s from position %d of %d", dir, position, length),
		UnitID:  unitID,
		Details: map[string]string{
			"position":  fmt.Sprintf("%d", position),
			"length":    fmt.Sprintf("%d", length),
			"direction": dir,
		},
	}
}

// NewUnknownUnitError creates a SequenceError for a unit absent from the sequence.
func NewUnknownUnitError(unitID string) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeUnknownUnit,
		Message: "unit is not in the sequence",
		UnitID:  unitID,
	}
}

// NewStaleSuggestionError creates a SequenceError for a suggestion that no
// longer matches the sequence. Callers should re-analyze.
func NewStaleSuggestionError(reason string, missing []string) *SequenceError {
	e := &SequenceError{
		Code:    ErrCodeStaleSuggestion,
		Message: reason,
	}
	if len(missing) > 0 {
		e.Details = map[string]string{"missing": fmt.Sprintf("%v", missing)}
	}
	return e
}

// NewInvariantViolationError creates a SequenceError for a non-permutation.
func NewInvariantViolationError(message string) *SequenceError {
	return &SequenceError{
		Code:    ErrCodeInvariantViolation,
		Message: message,
	}
}

// NewUnknownCaptainError creates a SequenceError for an unassigned captain.
func NewUnknownCaptainError(captainID string) *SequenceError {
	return &SequenceError{
		Code:      ErrCodeUnknownCaptain,
		Message:   "captain has no firing sequence",
		CaptainID: captainID,
	}
}

// withCaptain returns err with CaptainID filled in when it is a
// *SequenceError that does not carry one yet.
func withCaptain(err error, captainID string) error {
	var se *SequenceError
	if errors.As(err, &se) && se.CaptainID == "" {
		cp := *se
		cp.CaptainID = captainID
		return &cp
	}
	return err
}
