package list

import (
	"context"
	"fmt"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
)

// ServiceConfig is the configuration for the list service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.list.Service"})

	if c.Retrier == nil {
		r, err := retry.New(retry.Config{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create retrier: %w", err)
		}
		c.Retrier = r
	}

	return nil
}

// Service lists interventions.
type Service struct {
	repo    storage.Repository
	retrier *retry.Retrier
	logger  log.Logger
}

// NewService creates a new list service.
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

// Request represents the list request filters. Empty filters match everything.
type Request struct {
	TaskID string
	Status model.InterventionStatus
}

// Run returns the interventions matching the filters.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Intervention, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", req.Status, model.ErrNotValid)
	}

	all, err := retry.Do(ctx, s.retrier, "list interventions", func(ctx context.Context) ([]model.Intervention, error) {
		return s.repo.ListInterventions(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("could not list interventions: %w", err)
	}

	ivs := make([]model.Intervention, 0, len(all))
	for _, iv := range all {
		if req.TaskID != "" && iv.TaskID != req.TaskID {
			continue
		}
		if req.Status != "" && iv.Status != req.Status {
			continue
		}
		ivs = append(ivs, iv)
	}

	s.logger.Debugf("listed %d of %d interventions", len(ivs), len(all))
	return ivs, nil
}
