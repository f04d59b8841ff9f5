package saveprogress

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/workflow"
)

// ServiceConfig is the configuration for the save progress service.
type ServiceConfig struct {
	Progressor *workflow.Progressor
	Publisher  event.Publisher
	Logger     log.Logger
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Progressor == nil {
		return fmt.Errorf("progressor is required")
	}

	if c.Publisher == nil {
		c.Publisher = event.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.saveprogress.Service"})

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	return nil
}

// Service checkpoints partial work on a step without completing it.
type Service struct {
	progressor *workflow.Progressor
	publisher  event.Publisher
	logger     log.Logger
	timeNow    func() time.Time
}

// NewService creates a new save progress service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		progressor: cfg.Progressor,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		timeNow:    cfg.TimeNow,
	}, nil
}

// Run saves the step progress.
func (s *Service) Run(ctx context.Context, req model.SaveStepProgressRequest) (*model.Step, error) {
	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"step-id": req.StepID})

	step, err := s.progressor.SaveStepProgress(ctx, req)
	if err != nil {
		return nil, err
	}

	event.PublishSafe(ctx, s.publisher, s.logger, model.Event{
		Type:           model.EventTypeStepProgressSaved,
		InterventionID: step.InterventionID,
		StepID:         step.ID,
		StepNumber:     step.StepNumber,
		OccurredAt:     s.timeNow().UTC(),
	})

	return step, nil
}
