package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/storage"
)

// ValidatorConfig is the configuration of the validator.
type ValidatorConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ValidatorConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workflow.Validator"})
	return nil
}

// Validator checks if workflow transitions are allowed.
type Validator struct {
	repo   storage.Repository
	logger log.Logger
}

// NewValidator returns a new validator.
func NewValidator(cfg ValidatorConfig) (*Validator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Validator{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// stepBlockedReasons are the step statuses that can't be advanced, these
// have no resume path.
var stepBlockedReasons = map[model.StepStatus]string{
	model.StepStatusCompleted: "step already completed",
	model.StepStatusPaused:    "step is paused",
	model.StepStatusFailed:    "step has failed",
	model.StepStatusSkipped:   "step was skipped",
	model.StepStatusRework:    "step is waiting for rework",
}

// ValidateStepAdvancement checks that the step can be completed now. The
// checks run in order and the first failing one is returned.
func (v *Validator) ValidateStepAdvancement(ctx context.Context, intervention model.Intervention, step model.Step) error {
	logger := v.logger.WithCtxValues(ctx).WithValues(log.Kv{
		"intervention-id": intervention.ID,
		"step-id":         step.ID,
		"step-number":     step.StepNumber,
	})

	if step.InterventionID != intervention.ID {
		logger.Warningf("step belongs to intervention %s", step.InterventionID)
		return &model.WorkflowError{Reason: "invalid step for this intervention"}
	}

	switch intervention.Status {
	case model.InterventionStatusInProgress:
	case model.InterventionStatusPaused:
		logger.Warningf("rejected step advancement: intervention paused")
		return &model.WorkflowError{Reason: "intervention is paused", InterventionStatus: intervention.Status}
	default:
		logger.Warningf("rejected step advancement: intervention %s", intervention.Status)
		return &model.WorkflowError{Reason: "intervention not in progress", InterventionStatus: intervention.Status}
	}

	if step.Status != model.StepStatusPending && step.Status != model.StepStatusInProgress {
		reason, ok := stepBlockedReasons[step.Status]
		if !ok {
			reason = "step can't be advanced"
		}
		logger.Warningf("rejected step advancement: step %s", step.Status)
		return &model.WorkflowError{Reason: reason, StepNumbers: []int{step.StepNumber}, StepStatus: step.Status}
	}

	if step.StepNumber > 1 {
		prevNumber := step.StepNumber - 1
		prev, err := v.repo.GetStepByNumber(ctx, intervention.ID, prevNumber)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warningf("previous step %d not found", prevNumber)
				return &model.WorkflowError{Reason: "previous step not found", StepNumbers: []int{prevNumber}}
			}
			logger.Errorf("could not get previous step %d: %s", prevNumber, err)
			return &model.DatabaseError{Op: "get previous step", Attempts: 1, Err: err}
		}

		if prev.Status != model.StepStatusCompleted {
			logger.Warningf("rejected step advancement: previous step %d is %s", prevNumber, prev.Status)
			return &model.WorkflowError{Reason: "previous step not completed", StepNumbers: []int{prevNumber}, StepStatus: prev.Status}
		}
	}

	logger.Debugf("step advancement allowed")
	return nil
}

// ValidateInterventionFinalization checks that the intervention is in
// progress and all its mandatory steps are completed. Optional steps are ignored.
func (v *Validator) ValidateInterventionFinalization(ctx context.Context, intervention model.Intervention) error {
	logger := v.logger.WithCtxValues(ctx).WithValues(log.Kv{"intervention-id": intervention.ID})

	switch intervention.Status {
	case model.InterventionStatusInProgress:
	case model.InterventionStatusCompleted:
		logger.Warningf("rejected finalization: already completed")
		return &model.WorkflowError{Reason: "already completed", InterventionStatus: intervention.Status}
	default:
		logger.Warningf("rejected finalization: intervention %s", intervention.Status)
		return &model.WorkflowError{Reason: "intervention not in progress", InterventionStatus: intervention.Status}
	}

	steps, err := v.repo.ListInterventionSteps(ctx, intervention.ID)
	if err != nil {
		logger.Errorf("could not list steps: %s", err)
		return &model.DatabaseError{Op: "list intervention steps", Attempts: 1, Err: err}
	}

	var incomplete []int
	for _, s := range steps {
		if s.Mandatory && s.Status != model.StepStatusCompleted {
			incomplete = append(incomplete, s.StepNumber)
		}
	}

	if len(incomplete) > 0 {
		logger.Warningf("rejected finalization: %d mandatory steps not completed", len(incomplete))
		return &model.WorkflowError{Reason: "mandatory steps not completed", StepNumbers: incomplete}
	}

	logger.Debugf("finalization allowed")
	return nil
}

// ValidateStartIntervention checks the arguments required to start an
// intervention. Task existence and technician availability are checked
// by their owners, not here.
func (v *Validator) ValidateStartIntervention(taskID, technicianID string) error {
	if strings.TrimSpace(taskID) == "" {
		v.logger.Warningf("rejected start: missing task id")
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}
	if strings.TrimSpace(technicianID) == "" {
		v.logger.Warningf("rejected start: missing technician id")
		return fmt.Errorf("technician id is required: %w", model.ErrNotValid)
	}
	return nil
}
