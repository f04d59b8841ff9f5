package model

import "time"

// EventType is the kind of domain event.
type EventType string

const (
	EventTypeInterventionStarted   EventType = "intervention.started"
	EventTypeInterventionPaused    EventType = "intervention.paused"
	EventTypeInterventionResumed   EventType = "intervention.resumed"
	EventTypeInterventionCompleted EventType = "intervention.completed"
	EventTypeStepCompleted         EventType = "step.completed"
	EventTypeStepProgressSaved     EventType = "step.progress_saved"
)

// Event is a domain event emitted after a workflow change has been persisted.
type Event struct {
	Type               EventType
	InterventionID     string
	StepID             string
	StepNumber         int
	ProgressPercentage float64
	OccurredAt         time.Time
}
