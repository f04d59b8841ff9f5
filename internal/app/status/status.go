package status

import (
	"context"
	"fmt"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
)

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Repository storage.Repository
	Retrier    *retry.Retrier
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.status.Service"})

	if c.Retrier == nil {
		r, err := retry.New(retry.Config{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create retrier: %w", err)
		}
		c.Retrier = r
	}

	return nil
}

// Service returns the detailed state of an intervention.
type Service struct {
	repo    storage.Repository
	retrier *retry.Retrier
	logger  log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		retrier: cfg.Retrier,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	InterventionID string
}

// Response is the intervention with its steps and the progress computed from them.
type Response struct {
	Intervention model.Intervention
	Steps        []model.Step
	Progress     model.Progress
}

// Run returns the intervention status.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	iv, err := retry.Do(ctx, s.retrier, "get intervention", func(ctx context.Context) (*model.Intervention, error) {
		return s.repo.GetIntervention(ctx, req.InterventionID)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get intervention: %w", err)
	}

	steps, err := retry.Do(ctx, s.retrier, "list intervention steps", func(ctx context.Context) ([]model.Step, error) {
		return s.repo.ListInterventionSteps(ctx, iv.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("could not list steps: %w", err)
	}

	return &Response{
		Intervention: *iv,
		Steps:        steps,
		Progress:     model.ProgressOf(steps),
	}, nil
}
