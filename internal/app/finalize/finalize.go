package finalize

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
	"github.com/fieldops/intervention/internal/workflow"
)

// ServiceConfig is the configuration for the finalize service.
type ServiceConfig struct {
	Repository storage.Repository
	Validator  *workflow.Validator
	Retrier    *retry.Retrier
	Publisher  event.Publisher
	Logger     log.Logger
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Validator == nil {
		return fmt.Errorf("validator is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.finalize.Service"})

	if c.Retrier == nil {
		r, err := retry.New(retry.Config{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create retrier: %w", err)
		}
		c.Retrier = r
	}

	if c.Publisher == nil {
		c.Publisher = event.Noop
	}

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	return nil
}

// Service completes interventions.
type Service struct {
	repo      storage.Repository
	validator *workflow.Validator
	retrier   *retry.Retrier
	publisher event.Publisher
	logger    log.Logger
	timeNow   func() time.Time
}

// NewService creates a new finalize service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		validator: cfg.Validator,
		retrier:   cfg.Retrier,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNow,
	}, nil
}

// Request represents the finalize request parameters.
type Request struct {
	InterventionID string
}

// Run marks the intervention as completed once all its mandatory steps are completed.
func (s *Service) Run(ctx context.Context, req Request) (*model.Intervention, error) {
	iv, err := retry.Do(ctx, s.retrier, "get intervention", func(ctx context.Context) (*model.Intervention, error) {
		return s.repo.GetIntervention(ctx, req.InterventionID)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get intervention: %w", err)
	}

	if err := s.validator.ValidateInterventionFinalization(ctx, *iv); err != nil {
		return nil, err
	}

	now := s.timeNow().UTC()
	iv.Status = model.InterventionStatusCompleted
	iv.CompletedAt = &now
	iv.UpdatedAt = now

	iv, err = retry.Do(ctx, s.retrier, "update intervention", func(ctx context.Context) (*model.Intervention, error) {
		return s.repo.UpdateIntervention(ctx, *iv)
	})
	if err != nil {
		return nil, fmt.Errorf("could not update intervention: %w", err)
	}

	s.logger.Infof("intervention %s completed", iv.ID)

	event.PublishSafe(ctx, s.publisher, s.logger, model.Event{
		Type:               model.EventTypeInterventionCompleted,
		InterventionID:     iv.ID,
		ProgressPercentage: iv.CompletionPercentage,
		OccurredAt:         now,
	})

	return iv, nil
}
