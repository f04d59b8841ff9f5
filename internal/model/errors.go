package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when an input is malformed or can't be serialized.
	ErrNotValid = errors.New("not valid")
	// ErrWorkflow is returned when a requested transition violates the workflow rules.
	ErrWorkflow = errors.New("workflow violation")
	// ErrDatabase is returned when storage keeps failing after all the retry attempts.
	ErrDatabase = errors.New("database failure")
	// ErrConflict is returned when a step was modified by someone else since it was read.
	ErrConflict = errors.New("concurrent modification")
)

// WorkflowError describes a rejected transition with enough detail to build
// a precise message for the user.
type WorkflowError struct {
	Reason             string
	StepNumbers        []int
	InterventionStatus InterventionStatus
	StepStatus         StepStatus
}

func (e *WorkflowError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason)
	if len(e.StepNumbers) > 0 {
		nums := make([]string, 0, len(e.StepNumbers))
		for _, n := range e.StepNumbers {
			nums = append(nums, fmt.Sprintf("%d", n))
		}
		fmt.Fprintf(&b, " (steps: %s)", strings.Join(nums, ", "))
	}
	if e.InterventionStatus != "" {
		fmt.Fprintf(&b, " (intervention status: %s)", e.InterventionStatus)
	}
	if e.StepStatus != "" {
		fmt.Fprintf(&b, " (step status: %s)", e.StepStatus)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrWorkflow) match.
func (e *WorkflowError) Is(target error) bool { return target == ErrWorkflow }

// DatabaseError is returned when a storage operation failed on every attempt.
type DatabaseError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %s", e.Op, e.Attempts, e.Err)
}

// Is makes errors.Is(err, ErrDatabase) match.
func (e *DatabaseError) Is(target error) bool { return target == ErrDatabase }

func (e *DatabaseError) Unwrap() error { return e.Err }

// IsTransient returns true when the error may go away by retrying the same operation.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrNotValid),
		errors.Is(err, ErrWorkflow),
		errors.Is(err, ErrConflict):
		return false
	}
	return true
}
