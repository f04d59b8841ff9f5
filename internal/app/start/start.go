package start

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
	"github.com/fieldops/intervention/internal/workflow"
)

// ServiceConfig is the configuration for the start service.
type ServiceConfig struct {
	Repository         storage.Repository
	TemplateRepository storage.TemplateRepository
	Validator          *workflow.Validator
	Retrier            *retry.Retrier
	Publisher          event.Publisher
	Logger             log.Logger
	TimeNow            func() time.Time
	IDGen              func() string
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.TemplateRepository == nil {
		return fmt.Errorf("template repository is required")
	}

	if c.Validator == nil {
		return fmt.Errorf("validator is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.start.Service"})

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

	if c.IDGen == nil {
		c.IDGen = func() string { return ulid.Make().String() }
	}

	return nil
}

// Service starts interventions from a workflow template.
type Service struct {
	repo      storage.Repository
	templates storage.TemplateRepository
	validator *workflow.Validator
	retrier   *retry.Retrier
	publisher event.Publisher
	logger    log.Logger
	timeNow   func() time.Time
	idGen     func() string
}

// NewService creates a new start service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		templates: cfg.TemplateRepository,
		validator: cfg.Validator,
		retrier:   cfg.Retrier,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNow,
		idGen:     cfg.IDGen,
	}, nil
}

// Request represents the start request parameters.
type Request struct {
	TaskID       string
	TechnicianID string
	// Template is the template reference understood by the template repository.
	Template string
}

// Response is the started intervention with its materialized steps.
type Response struct {
	Intervention model.Intervention
	Steps        []model.Step
}

// Run creates a new in progress intervention with one pending step per template step.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	if err := s.validator.ValidateStartIntervention(req.TaskID, req.TechnicianID); err != nil {
		return nil, err
	}

	tpl, err := s.templates.GetTemplate(ctx, req.Template)
	if err != nil {
		return nil, fmt.Errorf("could not load template %q: %w", req.Template, err)
	}

	now := s.timeNow().UTC()
	iv := model.Intervention{
		ID:           s.idGen(),
		TaskID:       req.TaskID,
		TechnicianID: req.TechnicianID,
		TemplateName: tpl.Name,
		Status:       model.InterventionStatusInProgress,
		CurrentStep:  1,
		StartedAt:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	steps := make([]model.Step, 0, len(tpl.Steps))
	for i, st := range tpl.Steps {
		steps = append(steps, model.Step{
			ID:             s.idGen(),
			InterventionID: iv.ID,
			StepNumber:     i + 1,
			Name:           st.Name,
			Status:         model.StepStatusPending,
			Mandatory:      st.Mandatory,
			UpdatedAt:      now,
		})
	}

	err = retry.Run(ctx, s.retrier, "create intervention", func(ctx context.Context) error {
		return s.repo.CreateIntervention(ctx, iv, steps)
	})
	if err != nil {
		return nil, fmt.Errorf("could not create intervention: %w", err)
	}

	s.logger.Infof("started intervention %s for task %s (%d steps)", iv.ID, iv.TaskID, len(steps))

	event.PublishSafe(ctx, s.publisher, s.logger, model.Event{
		Type:           model.EventTypeInterventionStarted,
		InterventionID: iv.ID,
		OccurredAt:     now,
	})

	return &Response{Intervention: iv, Steps: steps}, nil
}
