package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepStatus represents the state of an intervention step.
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

// Valid returns true if the status is a known one.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusCompleted, StepStatusPaused,
		StepStatusFailed, StepStatusSkipped, StepStatusRework:
		return true
	}
	return false
}

// Step is an ordered unit of work of an intervention.
type Step struct {
	ID             string
	InterventionID string
	StepNumber     int
	Name           string
	Status         StepStatus
	Mandatory      bool

	CollectedData map[string]any
	Notes         string
	PhotoURLs     []string
	PhotoCount    int

	// Version is increased on every save, a save with a stale version is rejected.
	Version int

	StartedAt   *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// Validate validates the step structural fields.
func (s Step) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if s.InterventionID == "" {
		return fmt.Errorf("intervention id is required: %w", ErrNotValid)
	}
	if s.StepNumber < 1 {
		return fmt.Errorf("step number must be positive: %w", ErrNotValid)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", s.Status, ErrNotValid)
	}
	return nil
}

// MarshalCollectedData returns the JSON representation of the collected data.
func (s Step) MarshalCollectedData() ([]byte, error) {
	if s.CollectedData == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(s.CollectedData)
	if err != nil {
		return nil, fmt.Errorf("collected data is not serializable: %s: %w", err, ErrNotValid)
	}
	return data, nil
}

// Copy returns a deep copy of the step so mutations don't leak to the caller.
func (s Step) Copy() Step {
	c := s
	if s.CollectedData != nil {
		c.CollectedData = copyMap(s.CollectedData)
	}
	if s.PhotoURLs != nil {
		c.PhotoURLs = append([]string(nil), s.PhotoURLs...)
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

func copyMap(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = copyValue(v)
	}
	return c
}

// copyValue copies the containers a decoded collected data blob can hold,
// scalars are returned as they are.
func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyMap(v)
	case []any:
		c := make([]any, len(v))
		for i, e := range v {
			c[i] = copyValue(e)
		}
		return c
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

// StepTemplate is the definition of a step used to materialize the steps of
// an intervention when it starts.
type StepTemplate struct {
	Name      string
	Mandatory bool
}

// WorkflowTemplate is the fixed ordered list of steps of a kind of job.
type WorkflowTemplate struct {
	Name  string
	Steps []StepTemplate
}

// Validate validates the template.
func (t WorkflowTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required: %w", ErrNotValid)
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("template %q has no steps: %w", t.Name, ErrNotValid)
	}
	for i, s := range t.Steps {
		if s.Name == "" {
			return fmt.Errorf("template %q step %d name is required: %w", t.Name, i+1, ErrNotValid)
		}
	}
	return nil
}
