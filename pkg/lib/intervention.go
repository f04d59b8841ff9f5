package lib

import (
	"context"
	"fmt"

	"github.com/fieldops/intervention/internal/app/advance"
	"github.com/fieldops/intervention/internal/app/finalize"
	"github.com/fieldops/intervention/internal/app/list"
	"github.com/fieldops/intervention/internal/app/pause"
	"github.com/fieldops/intervention/internal/app/resume"
	"github.com/fieldops/intervention/internal/app/saveprogress"
	"github.com/fieldops/intervention/internal/app/start"
	"github.com/fieldops/intervention/internal/app/status"
	"github.com/fieldops/intervention/internal/model"
	storageio "github.com/fieldops/intervention/internal/storage/io"
)

// StartIntervention starts a new intervention with one pending step per template step.
func (c *Client) StartIntervention(ctx context.Context, opts StartInterventionOpts) (*InterventionDetails, error) {
	svc, err := start.NewService(start.ServiceConfig{
		Repository:         c.repo,
		TemplateRepository: c.templates,
		Validator:          c.validator,
		Retrier:            c.retrier,
		Publisher:          c.publisher,
		Logger:             c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	tpl := opts.Template
	if tpl == "" {
		tpl = storageio.DefaultTemplatePath
	}

	resp, err := svc.Run(ctx, start.Request{
		TaskID:       opts.TaskID,
		TechnicianID: opts.TechnicianID,
		Template:     tpl,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &InterventionDetails{
		Intervention: fromInternalIntervention(resp.Intervention),
		Steps:        fromInternalStepList(resp.Steps),
		Progress:     fromInternalProgress(model.ProgressOf(resp.Steps)),
	}, nil
}

// AdvanceStep completes a step. Steps must be completed in order and only
// while the intervention is in progress, otherwise an error matching
// [ErrWorkflow] is returned and nothing is written.
func (c *Client) AdvanceStep(ctx context.Context, interventionID, stepID string, opts *AdvanceStepOpts) (*AdvanceResult, error) {
	svc, err := advance.NewService(advance.ServiceConfig{
		Validator:  c.validator,
		Progressor: c.progressor,
		Publisher:  c.publisher,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := model.AdvanceStepRequest{InterventionID: interventionID, StepID: stepID, QualityCheckPassed: true}
	if opts != nil {
		req.CollectedData = opts.CollectedData
		req.Photos = opts.Photos
		req.Notes = opts.Notes
		req.QualityCheckPassed = opts.QualityCheckPassed
		req.Issues = opts.Issues
	}

	resp, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	result := &AdvanceResult{
		Step:                  fromInternalStep(resp.Step),
		ProgressPercentage:    resp.ProgressPercentage,
		RequirementsCompleted: resp.RequirementsCompleted,
	}
	if resp.NextStep != nil {
		next := fromInternalStep(*resp.NextStep)
		result.NextStep = &next
	}
	return result, nil
}

// SaveStepProgress saves partial work on a step without completing it.
func (c *Client) SaveStepProgress(ctx context.Context, stepID string, opts SaveStepProgressOpts) (*Step, error) {
	svc, err := saveprogress.NewService(saveprogress.ServiceConfig{
		Progressor: c.progressor,
		Publisher:  c.publisher,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	step, err := svc.Run(ctx, model.SaveStepProgressRequest{
		StepID:        stepID,
		CollectedData: opts.CollectedData,
		Notes:         opts.Notes,
		Photos:        opts.Photos,
	})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalStep(*step)
	return &result, nil
}

// GetIntervention returns the intervention with its steps and progress.
func (c *Client) GetIntervention(ctx context.Context, interventionID string) (*InterventionDetails, error) {
	svc, err := status.NewService(status.ServiceConfig{
		Repository: c.repo,
		Retrier:    c.retrier,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	resp, err := svc.Run(ctx, status.Request{InterventionID: interventionID})
	if err != nil {
		return nil, mapError(err)
	}

	return &InterventionDetails{
		Intervention: fromInternalIntervention(resp.Intervention),
		Steps:        fromInternalStepList(resp.Steps),
		Progress:     fromInternalProgress(resp.Progress),
	}, nil
}

// ListInterventions lists interventions, newest first. Pass nil opts to list all of them.
func (c *Client) ListInterventions(ctx context.Context, opts *ListInterventionsOpts) ([]Intervention, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Retrier:    c.retrier,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := list.Request{}
	if opts != nil {
		req.TaskID = opts.TaskID
		if opts.Status != nil {
			req.Status = model.InterventionStatus(*opts.Status)
		}
	}

	ivs, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalInterventionList(ivs), nil
}

// FinalizeIntervention completes the intervention. All its mandatory steps
// must be completed, optional ones are ignored.
func (c *Client) FinalizeIntervention(ctx context.Context, interventionID string) (*Intervention, error) {
	svc, err := finalize.NewService(finalize.ServiceConfig{
		Repository: c.repo,
		Validator:  c.validator,
		Retrier:    c.retrier,
		Publisher:  c.publisher,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	iv, err := svc.Run(ctx, finalize.Request{InterventionID: interventionID})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalIntervention(*iv)
	return &result, nil
}

// PauseIntervention pauses an in progress intervention.
func (c *Client) PauseIntervention(ctx context.Context, interventionID string) (*Intervention, error) {
	svc, err := pause.NewService(pause.ServiceConfig{
		Repository: c.repo,
		Retrier:    c.retrier,
		Publisher:  c.publisher,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	iv, err := svc.Run(ctx, pause.Request{InterventionID: interventionID})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalIntervention(*iv)
	return &result, nil
}

// ResumeIntervention resumes a paused intervention.
func (c *Client) ResumeIntervention(ctx context.Context, interventionID string) (*Intervention, error) {
	svc, err := resume.NewService(resume.ServiceConfig{
		Repository: c.repo,
		Retrier:    c.retrier,
		Publisher:  c.publisher,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	iv, err := svc.Run(ctx, resume.Request{InterventionID: interventionID})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalIntervention(*iv)
	return &result, nil
}
