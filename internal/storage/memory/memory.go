package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
	// TimeNow is used to stamp updates, defaults to time.Now.
	TimeNow func() time.Time
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	interventions map[string]model.Intervention
	steps         map[string]model.Step
	// stepIDs indexes step IDs by intervention and step number.
	stepIDs map[string]map[int]string
	mu      sync.RWMutex
	logger  log.Logger
	timeNow func() time.Time
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		interventions: make(map[string]model.Intervention),
		steps:         make(map[string]model.Step),
		stepIDs:       make(map[string]map[int]string),
		logger:        cfg.Logger,
		timeNow:       cfg.TimeNow,
	}, nil
}

// CreateIntervention stores a new intervention with all its steps.
func (r *Repository) CreateIntervention(ctx context.Context, i model.Intervention, steps []model.Step) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("invalid intervention: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.interventions[i.ID]; ok {
		return fmt.Errorf("intervention with id %s: %w", i.ID, model.ErrAlreadyExists)
	}

	byNumber := make(map[int]string, len(steps))
	for _, s := range steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid step: %w", err)
		}
		if s.InterventionID != i.ID {
			return fmt.Errorf("step %s belongs to intervention %s: %w", s.ID, s.InterventionID, model.ErrNotValid)
		}
		if _, ok := r.steps[s.ID]; ok {
			return fmt.Errorf("step with id %s: %w", s.ID, model.ErrAlreadyExists)
		}
		if _, ok := byNumber[s.StepNumber]; ok {
			return fmt.Errorf("step number %d repeated: %w", s.StepNumber, model.ErrAlreadyExists)
		}
		byNumber[s.StepNumber] = s.ID
	}

	for _, s := range steps {
		r.steps[s.ID] = s.Copy()
	}
	r.stepIDs[i.ID] = byNumber
	r.interventions[i.ID] = i
	r.logger.Debugf("Created intervention in repository: %s (%d steps)", i.ID, len(steps))

	return nil
}

// GetIntervention retrieves an intervention by ID.
func (r *Repository) GetIntervention(ctx context.Context, id string) (*model.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.interventions[id]
	if !ok {
		return nil, fmt.Errorf("intervention %s: %w", id, model.ErrNotFound)
	}

	return &i, nil
}

// ListInterventions returns all interventions, newest first.
func (r *Repository) ListInterventions(ctx context.Context) ([]model.Intervention, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	interventions := make([]model.Intervention, 0, len(r.interventions))
	for _, i := range r.interventions {
		interventions = append(interventions, i)
	}
	sort.Slice(interventions, func(a, b int) bool {
		return interventions[a].CreatedAt.After(interventions[b].CreatedAt)
	})

	return interventions, nil
}

// UpdateIntervention stores the status and lifecycle timestamps of an existing intervention.
func (r *Repository) UpdateIntervention(ctx context.Context, i model.Intervention) (*model.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.interventions[i.ID]
	if !ok {
		return nil, fmt.Errorf("intervention %s: %w", i.ID, model.ErrNotFound)
	}

	stored.Status = i.Status
	stored.StartedAt = copyTime(i.StartedAt)
	stored.CompletedAt = copyTime(i.CompletedAt)
	stored.UpdatedAt = r.timeNow().UTC()
	r.interventions[i.ID] = stored
	r.logger.Debugf("Updated intervention in repository: %s", i.ID)

	return &stored, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// GetStep retrieves a step by ID.
func (r *Repository) GetStep(ctx context.Context, id string) (*model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.steps[id]
	if !ok {
		return nil, fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	stepCopy := s.Copy()
	return &stepCopy, nil
}

// GetStepByNumber retrieves a step by its intervention and step number.
func (r *Repository) GetStepByNumber(ctx context.Context, interventionID string, number int) (*model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.stepByNumber(interventionID, number)
}

func (r *Repository) stepByNumber(interventionID string, number int) (*model.Step, error) {
	id, ok := r.stepIDs[interventionID][number]
	if !ok {
		return nil, fmt.Errorf("step %d of intervention %s: %w", number, interventionID, model.ErrNotFound)
	}

	stepCopy := r.steps[id].Copy()
	return &stepCopy, nil
}

// ListInterventionSteps returns the steps of an intervention sorted by step number.
func (r *Repository) ListInterventionSteps(ctx context.Context, interventionID string) ([]model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.interventionSteps(interventionID), nil
}

func (r *Repository) interventionSteps(interventionID string) []model.Step {
	ids := r.stepIDs[interventionID]
	steps := make([]model.Step, 0, len(ids))
	for _, id := range ids {
		steps = append(steps, r.steps[id].Copy())
	}
	sort.Slice(steps, func(a, b int) bool { return steps[a].StepNumber < steps[b].StepNumber })

	return steps
}

// SaveStep stores the step if nobody else has saved it since it was read.
func (r *Repository) SaveStep(ctx context.Context, s model.Step) (*model.Step, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.steps[s.ID]
	if !ok {
		return nil, fmt.Errorf("step %s: %w", s.ID, model.ErrNotFound)
	}
	if stored.Version != s.Version {
		return nil, fmt.Errorf("step %s has version %d, got %d: %w", s.ID, stored.Version, s.Version, model.ErrConflict)
	}
	if stored.InterventionID != s.InterventionID || stored.StepNumber != s.StepNumber {
		return nil, fmt.Errorf("step %s ownership and ordinal can't change: %w", s.ID, model.ErrNotValid)
	}

	s = s.Copy()
	s.Version++
	s.UpdatedAt = r.timeNow().UTC()
	r.steps[s.ID] = s
	r.logger.Debugf("Saved step in repository: %s (version %d)", s.ID, s.Version)

	saved := s.Copy()
	return &saved, nil
}

// UpdateInterventionProgress recomputes the intervention progress from its steps.
func (r *Repository) UpdateInterventionProgress(ctx context.Context, interventionID string) (*model.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.interventions[interventionID]
	if !ok {
		return nil, fmt.Errorf("intervention %s: %w", interventionID, model.ErrNotFound)
	}

	p := model.ProgressOf(r.interventionSteps(interventionID))
	i.CompletionPercentage = p.Percentage
	i.CurrentStep = p.CurrentStep
	i.UpdatedAt = r.timeNow().UTC()
	r.interventions[interventionID] = i

	return &i, nil
}

// GetNextStep returns the step after current, nil if there is none.
func (r *Repository) GetNextStep(ctx context.Context, interventionID string, current int) (*model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.interventions[interventionID]; !ok {
		return nil, fmt.Errorf("intervention %s: %w", interventionID, model.ErrNotFound)
	}

	if _, ok := r.stepIDs[interventionID][current+1]; !ok {
		return nil, nil
	}

	return r.stepByNumber(interventionID, current+1)
}
