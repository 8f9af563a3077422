package mcdm

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrDegenerate matches every *DegeneracyError via errors.Is.
	ErrDegenerate = errors.New("numerical degeneracy")
)

// ValidationError reports malformed input rejected before any computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError with a formatted reason.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DegeneracyError reports a computation that would otherwise yield NaN or
// Inf, such as a zero normalisation denominator.
type DegeneracyError struct {
	Stage  string
	Reason string
}

func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("degenerate %s: %s", e.Stage, e.Reason)
}

func (e *DegeneracyError) Is(target error) bool { return target == ErrDegenerate }

// Degenerate builds a DegeneracyError with a formatted reason.
func Degenerate(stage, format string, args ...interface{}) error {
	return &DegeneracyError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// ConsistencyWarning is attached to a weighting result whose consistency
// ratio exceeds the acceptable threshold. The weights are still usable.
type ConsistencyWarning struct {
	Group     string  `json:"group,omitempty"`
	CR        float64 `json:"cr"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

func (w ConsistencyWarning) String() string {
	if w.Group != "" {
		return fmt.Sprintf("group %s: %s", w.Group, w.Message)
	}
	return w.Message
}
