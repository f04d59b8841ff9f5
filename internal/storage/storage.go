package storage

import (
	"context"

	"github.com/fieldops/intervention/internal/model"
)

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository

// Repository is the data access collaborator of the workflow engine.
// Implementations must return errors wrapping model.ErrNotFound for missing
// resources so callers can tell them apart from storage failures.
type Repository interface {
	// CreateIntervention stores a new intervention together with all its steps.
	CreateIntervention(ctx context.Context, i model.Intervention, steps []model.Step) error
	GetIntervention(ctx context.Context, id string) (*model.Intervention, error)
	ListInterventions(ctx context.Context) ([]model.Intervention, error)
	// UpdateIntervention stores the status and lifecycle timestamps of the
	// intervention and returns the stored one. Progress fields are ignored,
	// only UpdateInterventionProgress writes them.
	UpdateIntervention(ctx context.Context, i model.Intervention) (*model.Intervention, error)

	GetStep(ctx context.Context, id string) (*model.Step, error)
	// GetStepByNumber returns the step of an intervention with the given ordinal.
	GetStepByNumber(ctx context.Context, interventionID string, number int) (*model.Step, error)
	// ListInterventionSteps returns the steps of an intervention sorted by step number.
	ListInterventionSteps(ctx context.Context, interventionID string) ([]model.Step, error)
	// SaveStep persists the step if the stored version matches the step one,
	// otherwise it returns model.ErrConflict. Returns the stored step with the new version.
	SaveStep(ctx context.Context, s model.Step) (*model.Step, error)

	// UpdateInterventionProgress recomputes and stores the completion percentage
	// and current step of the intervention from its steps.
	UpdateInterventionProgress(ctx context.Context, interventionID string) (*model.Intervention, error)
	// GetNextStep returns the step following current, or nil when current is the last one.
	GetNextStep(ctx context.Context, interventionID string, current int) (*model.Step, error)
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name TemplateRepository

// TemplateRepository returns the workflow templates used to start interventions.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, name string) (model.WorkflowTemplate, error)
}
