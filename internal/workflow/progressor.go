package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
)

// ProgressorConfig is the configuration of the progressor.
type ProgressorConfig struct {
	Repository storage.Repository
	// Retrier wraps every storage write and the fetch helpers. Defaults to
	// 3 attempts with linear backoff.
	Retrier *retry.Retrier
	Logger  log.Logger
	TimeNow func() time.Time
}

func (c *ProgressorConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Retrier == nil {
		r, err := retry.New(retry.Config{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create retrier: %w", err)
		}
		c.Retrier = r
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workflow.Progressor"})
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Progressor executes the step transitions already approved by the Validator.
type Progressor struct {
	repo    storage.Repository
	retrier *retry.Retrier
	logger  log.Logger
	timeNow func() time.Time
}

// NewProgressor returns a new progressor.
func NewProgressor(cfg ProgressorConfig) (*Progressor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Progressor{
		repo:    cfg.Repository,
		retrier: cfg.Retrier,
		logger:  cfg.Logger,
		timeNow: cfg.TimeNow,
	}, nil
}

// AdvanceStep merges the request data into the step and completes it. A step
// is always fully completed by a single call.
//
// The step write and the intervention progress recompute are two separate
// writes. If the second one fails the step stays completed and the error is
// returned, callers must be ready to reconcile. Failing to resolve the next
// step is not an error, the response just has no next step.
func (p *Progressor) AdvanceStep(ctx context.Context, intervention model.Intervention, step model.Step, req model.AdvanceStepRequest) (*model.AdvanceStepResponse, error) {
	logger := p.logger.WithCtxValues(ctx).WithValues(log.Kv{
		"intervention-id": intervention.ID,
		"step-id":         step.ID,
		"step-number":     step.StepNumber,
	})

	step = step.Copy()
	mergeStepData(&step, req.CollectedData, req.Notes, req.Photos)
	if _, err := step.MarshalCollectedData(); err != nil {
		return nil, err
	}

	if !req.QualityCheckPassed || len(req.Issues) > 0 {
		logger.Infof("step completed with quality check passed=%t and %d issues", req.QualityCheckPassed, len(req.Issues))
	}

	now := p.timeNow().UTC()
	if step.Status == model.StepStatusPending {
		step.Status = model.StepStatusInProgress
		step.StartedAt = &now
	}
	step.Status = model.StepStatusCompleted
	step.CompletedAt = &now

	saved, err := retry.Do(ctx, p.retrier, "save step", func(ctx context.Context) (*model.Step, error) {
		return p.repo.SaveStep(ctx, step)
	})
	if err != nil {
		logger.Errorf("could not save completed step: %s", err)
		return nil, fmt.Errorf("could not save step: %w", err)
	}
	logger.Infof("step completed")

	updated, err := retry.Do(ctx, p.retrier, "update intervention progress", func(ctx context.Context) (*model.Intervention, error) {
		return p.repo.UpdateInterventionProgress(ctx, intervention.ID)
	})
	if err != nil {
		logger.Errorf("step is completed but intervention progress could not be updated: %s", err)
		return nil, fmt.Errorf("could not update intervention progress: %w", err)
	}

	next, err := p.repo.GetNextStep(ctx, intervention.ID, saved.StepNumber)
	if err != nil {
		logger.Warningf("could not resolve next step, ignoring: %s", err)
		next = nil
	}

	return &model.AdvanceStepResponse{
		Step:                  *saved,
		NextStep:              next,
		ProgressPercentage:    updated.CompletionPercentage,
		RequirementsCompleted: []string{fmt.Sprintf("step_%d_completed", saved.StepNumber)},
	}, nil
}

// SaveStepProgress checkpoints partial work on a step. A pending step is
// started, but it's never completed.
func (p *Progressor) SaveStepProgress(ctx context.Context, req model.SaveStepProgressRequest) (*model.Step, error) {
	step, err := p.FetchStep(ctx, req.StepID)
	if err != nil {
		return nil, err
	}

	logger := p.logger.WithCtxValues(ctx).WithValues(log.Kv{
		"intervention-id": step.InterventionID,
		"step-id":         step.ID,
		"step-number":     step.StepNumber,
	})

	if step.Status == model.StepStatusPending {
		now := p.timeNow().UTC()
		step.Status = model.StepStatusInProgress
		step.StartedAt = &now
	}

	mergeStepData(step, req.CollectedData, req.Notes, req.Photos)
	if _, err := step.MarshalCollectedData(); err != nil {
		logger.Warningf("rejected step progress: %s", err)
		return nil, err
	}

	saved, err := retry.Do(ctx, p.retrier, "save step", func(ctx context.Context) (*model.Step, error) {
		return p.repo.SaveStep(ctx, *step)
	})
	if err != nil {
		logger.Errorf("could not save step progress: %s", err)
		return nil, fmt.Errorf("could not save step: %w", err)
	}

	logger.Debugf("step progress saved")
	return saved, nil
}

// FetchIntervention reads an intervention retrying on storage failures.
func (p *Progressor) FetchIntervention(ctx context.Context, id string) (*model.Intervention, error) {
	i, err := retry.Do(ctx, p.retrier, "get intervention", func(ctx context.Context) (*model.Intervention, error) {
		return p.repo.GetIntervention(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get intervention: %w", err)
	}
	return i, nil
}

// FetchStep reads a step retrying on storage failures.
func (p *Progressor) FetchStep(ctx context.Context, id string) (*model.Step, error) {
	s, err := retry.Do(ctx, p.retrier, "get step", func(ctx context.Context) (*model.Step, error) {
		return p.repo.GetStep(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get step: %w", err)
	}
	return s, nil
}

// mergeStepData overwrites the collected data keys, replaces the notes when
// set and appends the photos.
func mergeStepData(step *model.Step, data map[string]any, notes *string, photos []string) {
	if len(data) > 0 {
		if step.CollectedData == nil {
			step.CollectedData = make(map[string]any, len(data))
		}
		for k, v := range data {
			step.CollectedData[k] = v
		}
	}

	if notes != nil {
		step.Notes = *notes
	}

	if len(photos) > 0 {
		step.PhotoURLs = append(step.PhotoURLs, photos...)
	}
	step.PhotoCount = len(step.PhotoURLs)
}
