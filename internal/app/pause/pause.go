package pause

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
)

// ServiceConfig is the configuration for the pause service.
type ServiceConfig struct {
	Repository storage.Repository
	Retrier    *retry.Retrier
	Publisher  event.Publisher
	Logger     log.Logger
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.pause.Service"})

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

// Service pauses in progress interventions.
type Service struct {
	repo      storage.Repository
	retrier   *retry.Retrier
	publisher event.Publisher
	logger    log.Logger
	timeNow   func() time.Time
}

// NewService creates a new pause service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		retrier:   cfg.Retrier,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNow,
	}, nil
}

// Request represents the pause request parameters.
type Request struct {
	InterventionID string
}

// Run pauses the intervention. While paused none of its steps can be advanced.
func (s *Service) Run(ctx context.Context, req Request) (*model.Intervention, error) {
	iv, err := retry.Do(ctx, s.retrier, "get intervention", func(ctx context.Context) (*model.Intervention, error) {
		return s.repo.GetIntervention(ctx, req.InterventionID)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get intervention: %w", err)
	}

	if iv.Status != model.InterventionStatusInProgress {
		return nil, &model.WorkflowError{Reason: "intervention not in progress", InterventionStatus: iv.Status}
	}

	now := s.timeNow().UTC()
	iv.Status = model.InterventionStatusPaused
	iv.UpdatedAt = now

	iv, err = retry.Do(ctx, s.retrier, "update intervention", func(ctx context.Context) (*model.Intervention, error) {
		return s.repo.UpdateIntervention(ctx, *iv)
	})
	if err != nil {
		return nil, fmt.Errorf("could not update intervention: %w", err)
	}

	s.logger.Infof("intervention %s paused", iv.ID)

	event.PublishSafe(ctx, s.publisher, s.logger, model.Event{
		Type:               model.EventTypeInterventionPaused,
		InterventionID:     iv.ID,
		ProgressPercentage: iv.CompletionPercentage,
		OccurredAt:         now,
	})

	return iv, nil
}
