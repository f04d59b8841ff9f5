package lib

import (
	"errors"
	"time"

	"github.com/fieldops/intervention/internal/model"
)

// InterventionStatus is the lifecycle state of an intervention.
//
//	in_progress <-> paused
//	in_progress  -> completed
type InterventionStatus string

const (
	InterventionStatusPending    InterventionStatus = "pending"
	InterventionStatusInProgress InterventionStatus = "in_progress"
	InterventionStatusPaused     InterventionStatus = "paused"
	InterventionStatusCompleted  InterventionStatus = "completed"
	InterventionStatusCancelled  InterventionStatus = "cancelled"
)

// StepStatus is the state of a single step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusPaused     StepStatus = "paused"
	StepStatusFailed     StepStatus = "failed"
	StepStatusSkipped    StepStatus = "skipped"
	StepStatusRework     StepStatus = "rework"
)

// Intervention is a read-only snapshot of an intervention at the time of the call.
type Intervention struct {
	ID           string
	TaskID       string
	TechnicianID string
	TemplateName string
	Status       InterventionStatus
	// CurrentStep is the number of the lowest incomplete step.
	CurrentStep          int
	CompletionPercentage float64
	StartedAt            *time.Time
	CompletedAt          *time.Time
	CreatedAt            time.Time
}

// Step is a read-only snapshot of a step at the time of the call.
type Step struct {
	ID             string
	InterventionID string
	StepNumber     int
	Name           string
	Status         StepStatus
	Mandatory      bool
	CollectedData  map[string]any
	Notes          string
	PhotoURLs      []string
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// Progress is the completion state computed from the steps.
type Progress struct {
	Percentage  float64
	CurrentStep int
	Completed   int
	Total       int
}

// InterventionDetails is an intervention with its ordered steps.
type InterventionDetails struct {
	Intervention Intervention
	Steps        []Step
	Progress     Progress
}

// StartInterventionOpts are the options to start an intervention.
type StartInterventionOpts struct {
	TaskID       string
	TechnicianID string
	// Template is the template file path inside [Config.Templates].
	// Default: the builtin PPF template.
	Template string
}

// AdvanceStepOpts are the options to complete a step.
type AdvanceStepOpts struct {
	// CollectedData keys overwrite the existing ones.
	CollectedData map[string]any
	// Photos are appended to the step photos.
	Photos []string
	// Notes replace the step notes when set.
	Notes              *string
	QualityCheckPassed bool
	Issues             []string
}

// SaveStepProgressOpts are the options to save partial work on a step.
type SaveStepProgressOpts struct {
	CollectedData map[string]any
	Photos        []string
	Notes         *string
}

// AdvanceResult is the outcome of completing a step.
type AdvanceResult struct {
	Step Step
	// NextStep is nil when the completed step was the last one, or when it
	// could not be resolved.
	NextStep           *Step
	ProgressPercentage float64
	// RequirementsCompleted lists the satisfied requirement tags, e.g. "step_2_completed".
	RequirementsCompleted []string
}

// ListInterventionsOpts filters the listed interventions.
type ListInterventionsOpts struct {
	TaskID string
	Status *InterventionStatus
}

// EventType is the kind of event.
type EventType string

const (
	EventInterventionStarted   EventType = EventType(model.EventTypeInterventionStarted)
	EventInterventionPaused    EventType = EventType(model.EventTypeInterventionPaused)
	EventInterventionResumed   EventType = EventType(model.EventTypeInterventionResumed)
	EventInterventionCompleted EventType = EventType(model.EventTypeInterventionCompleted)
	EventStepCompleted         EventType = EventType(model.EventTypeStepCompleted)
	EventStepProgressSaved     EventType = EventType(model.EventTypeStepProgressSaved)
)

// Event is emitted after a workflow change has been persisted.
type Event struct {
	Type               EventType
	InterventionID     string
	StepID             string
	StepNumber         int
	ProgressPercentage float64
	OccurredAt         time.Time
}

// WorkflowError describes a rejected workflow transition. Use errors.As to
// get the offending step numbers.
type WorkflowError = model.WorkflowError

// DatabaseError is returned when storage keeps failing after all the attempts.
type DatabaseError = model.DatabaseError

// Errors returned by the SDK. Use errors.Is to check them.
var (
	// ErrNotFound is returned when an intervention or step does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource with the same ID already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned for invalid input, e.g. data that can't be serialized.
	ErrNotValid = errors.New("not valid")
	// ErrWorkflow is returned when the workflow rules reject the operation.
	ErrWorkflow = errors.New("workflow violation")
	// ErrDatabase is returned when storage failed on every attempt.
	ErrDatabase = errors.New("database failure")
	// ErrConflict is returned when the step was modified concurrently, reload and retry.
	ErrConflict = errors.New("concurrent modification")
)

var errorMapping = []struct{ internal, public error }{
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
	{model.ErrWorkflow, ErrWorkflow},
	{model.ErrDatabase, ErrDatabase},
	{model.ErrConflict, ErrConflict},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}
	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }

func fromInternalIntervention(i model.Intervention) Intervention {
	return Intervention{
		ID:                   i.ID,
		TaskID:               i.TaskID,
		TechnicianID:         i.TechnicianID,
		TemplateName:         i.TemplateName,
		Status:               InterventionStatus(i.Status),
		CurrentStep:          i.CurrentStep,
		CompletionPercentage: i.CompletionPercentage,
		StartedAt:            i.StartedAt,
		CompletedAt:          i.CompletedAt,
		CreatedAt:            i.CreatedAt,
	}
}

func fromInternalInterventionList(is []model.Intervention) []Intervention {
	result := make([]Intervention, len(is))
	for i, iv := range is {
		result[i] = fromInternalIntervention(iv)
	}
	return result
}

func fromInternalStep(s model.Step) Step {
	return Step{
		ID:             s.ID,
		InterventionID: s.InterventionID,
		StepNumber:     s.StepNumber,
		Name:           s.Name,
		Status:         StepStatus(s.Status),
		Mandatory:      s.Mandatory,
		CollectedData:  s.CollectedData,
		Notes:          s.Notes,
		PhotoURLs:      s.PhotoURLs,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
	}
}

func fromInternalStepList(ss []model.Step) []Step {
	result := make([]Step, len(ss))
	for i, s := range ss {
		result[i] = fromInternalStep(s)
	}
	return result
}

func fromInternalProgress(p model.Progress) Progress {
	return Progress{
		Percentage:  p.Percentage,
		CurrentStep: p.CurrentStep,
		Completed:   p.Completed,
		Total:       p.Total,
	}
}

func fromInternalEvent(e model.Event) Event {
	return Event{
		Type:               EventType(e.Type),
		InterventionID:     e.InterventionID,
		StepID:             e.StepID,
		StepNumber:         e.StepNumber,
		ProgressPercentage: e.ProgressPercentage,
		OccurredAt:         e.OccurredAt,
	}
}
