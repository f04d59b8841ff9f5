package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
	// TimeNow is used to stamp updates, defaults to time.Now.
	TimeNow func() time.Time
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db      *sql.DB
	logger  log.Logger
	timeNow func() time.Time
}

// NewRepository creates a new SQLite repository, the schema is migrated on creation.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger, timeNow: cfg.TimeNow}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const interventionColumns = `
	id, task_id, technician_id, template_name, status,
	current_step, completion_percentage,
	started_at, completed_at, created_at, updated_at`

const stepColumns = `
	id, intervention_id, step_number, name, status, mandatory,
	collected_data, notes, photo_urls, photo_count, version,
	started_at, completed_at, updated_at`

// CreateIntervention stores the intervention and its steps in a single transaction.
func (r *Repository) CreateIntervention(ctx context.Context, i model.Intervention, steps []model.Step) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("invalid intervention: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit.

	now := r.timeNow().UTC()
	if i.UpdatedAt.IsZero() {
		i.UpdatedAt = now
	}

	query := `INSERT INTO interventions (` + interventionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		i.ID, i.TaskID, i.TechnicianID, i.TemplateName, i.Status,
		i.CurrentStep, i.CompletionPercentage,
		unixOrNil(i.StartedAt), unixOrNil(i.CompletedAt), i.CreatedAt.Unix(), i.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("intervention %s: %w", i.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert intervention: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO steps (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid step: %w", err)
		}
		if s.InterventionID != i.ID {
			return fmt.Errorf("step %s belongs to intervention %s: %w", s.ID, s.InterventionID, model.ErrNotValid)
		}

		data, photos, err := encodeStepBlobs(s)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			s.ID, s.InterventionID, s.StepNumber, s.Name, s.Status, s.Mandatory,
			data, s.Notes, photos, s.PhotoCount, s.Version,
			unixOrNil(s.StartedAt), unixOrNil(s.CompletedAt), now.Unix(),
		)
		if err != nil {
			if isUniqueErr(err) {
				return fmt.Errorf("step %s (number %d): %w", s.ID, s.StepNumber, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created intervention in repository: %s (%d steps)", i.ID, len(steps))
	return nil
}

// GetIntervention retrieves an intervention by ID.
func (r *Repository) GetIntervention(ctx context.Context, id string) (*model.Intervention, error) {
	return r.getIntervention(ctx, r.db, id)
}

func (r *Repository) getIntervention(ctx context.Context, q querier, id string) (*model.Intervention, error) {
	query := `SELECT ` + interventionColumns + ` FROM interventions WHERE id = ?`

	i, err := scanIntervention(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("intervention %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query intervention: %w", err)
	}

	return i, nil
}

// ListInterventions returns all interventions, newest first.
func (r *Repository) ListInterventions(ctx context.Context) ([]model.Intervention, error) {
	query := `SELECT ` + interventionColumns + ` FROM interventions ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query interventions: %w", err)
	}
	defer rows.Close()

	var interventions []model.Intervention
	for rows.Next() {
		i, err := scanIntervention(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan intervention: %w", err)
		}
		interventions = append(interventions, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate interventions: %w", err)
	}

	return interventions, nil
}

// UpdateIntervention stores the status and lifecycle timestamps of an existing intervention.
func (r *Repository) UpdateIntervention(ctx context.Context, i model.Intervention) (*model.Intervention, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE interventions SET
			status = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		i.Status, unixOrNil(i.StartedAt), unixOrNil(i.CompletedAt), r.timeNow().UTC().Unix(),
		i.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("could not update intervention: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("intervention %s: %w", i.ID, model.ErrNotFound)
	}

	stored, err := r.getIntervention(ctx, tx, i.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Updated intervention in repository: %s", i.ID)
	return stored, nil
}

// GetStep retrieves a step by ID.
func (r *Repository) GetStep(ctx context.Context, id string) (*model.Step, error) {
	return r.getStep(ctx, r.db, id)
}

func (r *Repository) getStep(ctx context.Context, q querier, id string) (*model.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE id = ?`

	s, err := scanStep(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("step %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query step: %w", err)
	}

	return s, nil
}

// GetStepByNumber retrieves a step by its intervention and step number.
func (r *Repository) GetStepByNumber(ctx context.Context, interventionID string, number int) (*model.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE intervention_id = ? AND step_number = ?`

	s, err := scanStep(r.db.QueryRowContext(ctx, query, interventionID, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("step %d of intervention %s: %w", number, interventionID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query step: %w", err)
	}

	return s, nil
}

// ListInterventionSteps returns the steps of an intervention sorted by step number.
func (r *Repository) ListInterventionSteps(ctx context.Context, interventionID string) ([]model.Step, error) {
	return r.listSteps(ctx, r.db, interventionID)
}

func (r *Repository) listSteps(ctx context.Context, q querier, interventionID string) ([]model.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE intervention_id = ? ORDER BY step_number ASC`

	rows, err := q.QueryContext(ctx, query, interventionID)
	if err != nil {
		return nil, fmt.Errorf("could not query steps: %w", err)
	}
	defer rows.Close()

	var steps []model.Step
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan step: %w", err)
		}
		steps = append(steps, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate steps: %w", err)
	}

	return steps, nil
}

// SaveStep stores the step if nobody else has saved it since it was read.
func (r *Repository) SaveStep(ctx context.Context, s model.Step) (*model.Step, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step: %w", err)
	}

	data, photos, err := encodeStepBlobs(s)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored, err := r.getStep(ctx, tx, s.ID)
	if err != nil {
		return nil, err
	}
	if stored.Version != s.Version {
		return nil, fmt.Errorf("step %s has version %d, got %d: %w", s.ID, stored.Version, s.Version, model.ErrConflict)
	}
	if stored.InterventionID != s.InterventionID || stored.StepNumber != s.StepNumber {
		return nil, fmt.Errorf("step %s ownership and ordinal can't change: %w", s.ID, model.ErrNotValid)
	}

	query := `
		UPDATE steps SET
			name = ?, status = ?, mandatory = ?,
			collected_data = ?, notes = ?, photo_urls = ?, photo_count = ?,
			version = version + 1,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := tx.ExecContext(ctx, query,
		s.Name, s.Status, s.Mandatory,
		data, s.Notes, photos, s.PhotoCount,
		unixOrNil(s.StartedAt), unixOrNil(s.CompletedAt), r.timeNow().UTC().Unix(),
		s.ID, s.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("could not update step: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("step %s changed while saving: %w", s.ID, model.ErrConflict)
	}

	saved, err := r.getStep(ctx, tx, s.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Saved step in repository: %s (version %d)", saved.ID, saved.Version)
	return saved, nil
}

// UpdateInterventionProgress recomputes the intervention progress from its steps.
func (r *Repository) UpdateInterventionProgress(ctx context.Context, interventionID string) (*model.Intervention, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	i, err := r.getIntervention(ctx, tx, interventionID)
	if err != nil {
		return nil, err
	}

	steps, err := r.listSteps(ctx, tx, interventionID)
	if err != nil {
		return nil, err
	}

	p := model.ProgressOf(steps)
	i.CompletionPercentage = p.Percentage
	i.CurrentStep = p.CurrentStep
	i.UpdatedAt = r.timeNow().UTC()

	query := `UPDATE interventions SET completion_percentage = ?, current_step = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, i.CompletionPercentage, i.CurrentStep, i.UpdatedAt.Unix(), i.ID); err != nil {
		return nil, fmt.Errorf("could not update intervention progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Intervention %s progress: %.2f%% (%d/%d)", i.ID, p.Percentage, p.Completed, p.Total)
	return i, nil
}

// GetNextStep returns the step after current, nil if there is none.
func (r *Repository) GetNextStep(ctx context.Context, interventionID string, current int) (*model.Step, error) {
	if _, err := r.GetIntervention(ctx, interventionID); err != nil {
		return nil, err
	}

	next, err := r.GetStepByNumber(ctx, interventionID, current+1)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return next, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIntervention(row scanner) (*model.Intervention, error) {
	var (
		i                      model.Intervention
		startedAt, completedAt sql.NullInt64
		createdAt, updatedAt   int64
	)

	err := row.Scan(
		&i.ID, &i.TaskID, &i.TechnicianID, &i.TemplateName, &i.Status,
		&i.CurrentStep, &i.CompletionPercentage,
		&startedAt, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.StartedAt = timeOrNil(startedAt)
	i.CompletedAt = timeOrNil(completedAt)
	i.CreatedAt = time.Unix(createdAt, 0).UTC()
	i.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &i, nil
}

func scanStep(row scanner) (*model.Step, error) {
	var (
		s                      model.Step
		data, photos           string
		startedAt, completedAt sql.NullInt64
		updatedAt              int64
	)

	err := row.Scan(
		&s.ID, &s.InterventionID, &s.StepNumber, &s.Name, &s.Status, &s.Mandatory,
		&data, &s.Notes, &photos, &s.PhotoCount, &s.Version,
		&startedAt, &completedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &s.CollectedData); err != nil {
		return nil, fmt.Errorf("could not decode collected data of step %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(photos), &s.PhotoURLs); err != nil {
		return nil, fmt.Errorf("could not decode photos of step %s: %w", s.ID, err)
	}

	s.StartedAt = timeOrNil(startedAt)
	s.CompletedAt = timeOrNil(completedAt)
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &s, nil
}

func encodeStepBlobs(s model.Step) (data, photos string, err error) {
	rawData, err := s.MarshalCollectedData()
	if err != nil {
		return "", "", err
	}

	urls := s.PhotoURLs
	if urls == nil {
		urls = []string{}
	}
	rawPhotos, err := json.Marshal(urls)
	if err != nil {
		return "", "", fmt.Errorf("could not encode photos: %w", err)
	}

	return string(rawData), string(rawPhotos), nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func isUniqueErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
