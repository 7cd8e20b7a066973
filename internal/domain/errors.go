package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrCycle      = errors.New("dependency cycle")
	ErrNotFound   = errors.New("not found")
	ErrProvider   = errors.New("suggestion provider failed")
	ErrTimeout    = errors.New("operation timed out")
)

// ValidationError names the offending field of a rejected write.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return ErrValidation.Error() + ": " + e.Reason
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CycleError reports an edge that would break the acyclic skill graph.
type CycleError struct {
	SkillID     string
	DependsOnID string
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	if e.SkillID == "" {
		return ErrCycle.Error() + ": graph is not acyclic"
	}
	if e.SkillID == e.DependsOnID {
		return fmt.Sprintf("%s: skill %s cannot depend on itself", ErrCycle.Error(), e.SkillID)
	}
	return fmt.Sprintf("%s: %s already reaches %s", ErrCycle.Error(), e.DependsOnID, e.SkillID)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
