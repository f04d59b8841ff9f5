package model

import (
	"fmt"
	"time"
)

// InterventionStatus represents the lifecycle state of an intervention.
type InterventionStatus string

const (
	InterventionStatusPending    InterventionStatus = "pending"
	InterventionStatusInProgress InterventionStatus = "in_progress"
	InterventionStatusPaused     InterventionStatus = "paused"
	InterventionStatusCompleted  InterventionStatus = "completed"
	InterventionStatusCancelled  InterventionStatus = "cancelled"
)

// Valid returns true if the status is a known one.
func (s InterventionStatus) Valid() bool {
	switch s {
	case InterventionStatusPending, InterventionStatusInProgress, InterventionStatusPaused,
		InterventionStatusCompleted, InterventionStatusCancelled:
		return true
	}
	return false
}

// Intervention is a single field-service job instance tied to a parent task.
type Intervention struct {
	ID           string
	TaskID       string
	TechnicianID string
	TemplateName string
	Status       InterventionStatus

	// CurrentStep is the step number of the lowest incomplete step. It's a
	// cache derived from the steps, the steps are the source of truth.
	CurrentStep int
	// CompletionPercentage is derived from the steps by the repository.
	CompletionPercentage float64

	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the intervention structural fields.
func (i Intervention) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if i.TaskID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if i.TechnicianID == "" {
		return fmt.Errorf("technician id is required: %w", ErrNotValid)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", i.Status, ErrNotValid)
	}
	return nil
}

// Progress is the aggregated completion state of an intervention.
type Progress struct {
	Percentage  float64
	CurrentStep int
	Completed   int
	Total       int
}

// ProgressOf computes the aggregated progress from the intervention steps.
// The current step is the lowest step number that is not completed, or the
// last step number when all of them are completed.
func ProgressOf(steps []Step) Progress {
	p := Progress{Total: len(steps)}
	if len(steps) == 0 {
		return p
	}

	lowestIncomplete := 0
	highest := 0
	for _, s := range steps {
		if s.StepNumber > highest {
			highest = s.StepNumber
		}
		if s.Status == StepStatusCompleted {
			p.Completed++
			continue
		}
		if lowestIncomplete == 0 || s.StepNumber < lowestIncomplete {
			lowestIncomplete = s.StepNumber
		}
	}

	p.Percentage = float64(p.Completed) / float64(p.Total) * 100
	p.CurrentStep = lowestIncomplete
	if p.CurrentStep == 0 {
		p.CurrentStep = highest
	}

	return p
}
