package advance

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/workflow"
)

// ServiceConfig is the configuration for the advance service.
type ServiceConfig struct {
	Validator  *workflow.Validator
	Progressor *workflow.Progressor
	Publisher  event.Publisher
	Logger     log.Logger
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Validator == nil {
		return fmt.Errorf("validator is required")
	}

	if c.Progressor == nil {
		return fmt.Errorf("progressor is required")
	}

	if c.Publisher == nil {
		c.Publisher = event.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.advance.Service"})

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	return nil
}

// Service completes the current step of an intervention.
type Service struct {
	validator  *workflow.Validator
	progressor *workflow.Progressor
	publisher  event.Publisher
	logger     log.Logger
	timeNow    func() time.Time
}

// NewService creates a new advance service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		validator:  cfg.Validator,
		progressor: cfg.Progressor,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		timeNow:    cfg.TimeNow,
	}, nil
}

// Run loads the intervention and the step, validates the advancement and
// completes the step. Nothing is written when the validation fails.
func (s *Service) Run(ctx context.Context, req model.AdvanceStepRequest) (*model.AdvanceStepResponse, error) {
	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"intervention-id": req.InterventionID, "step-id": req.StepID})

	iv, err := s.progressor.FetchIntervention(ctx, req.InterventionID)
	if err != nil {
		return nil, err
	}

	step, err := s.progressor.FetchStep(ctx, req.StepID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateStepAdvancement(ctx, *iv, *step); err != nil {
		return nil, err
	}

	resp, err := s.progressor.AdvanceStep(ctx, *iv, *step, req)
	if err != nil {
		return nil, err
	}

	event.PublishSafe(ctx, s.publisher, s.logger, model.Event{
		Type:               model.EventTypeStepCompleted,
		InterventionID:     iv.ID,
		StepID:             resp.Step.ID,
		StepNumber:         resp.Step.StepNumber,
		ProgressPercentage: resp.ProgressPercentage,
		OccurredAt:         s.timeNow().UTC(),
	})

	return resp, nil
}
