package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/storage/sqlite"
	"github.com/fieldops/intervention/internal/storage/sqlite/migrations"
)

func interventionFixture(id string, mandatory ...bool) (model.Intervention, []model.Step) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	iv := model.Intervention{
		ID:           id,
		TaskID:       "task-" + id,
		TechnicianID: "tech-1",
		TemplateName: "ppf-full-front",
		Status:       model.InterventionStatusInProgress,
		CurrentStep:  1,
		CreatedAt:    now,
		StartedAt:    &now,
	}

	steps := make([]model.Step, 0, len(mandatory))
	for i, m := range mandatory {
		steps = append(steps, model.Step{
			ID:             fmt.Sprintf("%s-step-%d", id, i+1),
			InterventionID: id,
			StepNumber:     i + 1,
			Name:           fmt.Sprintf("step %d", i+1),
			Status:         model.StepStatusPending,
			Mandatory:      m,
		})
	}

	return iv, steps
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryInterventionCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	iv, steps := interventionFixture("iv1", true, true, false)
	require.NoError(t, repo.CreateIntervention(ctx, iv, steps))

	got, err := repo.GetIntervention(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, "task-iv1", got.TaskID)
	assert.Equal(t, "ppf-full-front", got.TemplateName)
	assert.Equal(t, model.InterventionStatusInProgress, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.Equal(t, iv.StartedAt.Unix(), got.StartedAt.Unix())
	assert.Nil(t, got.CompletedAt)

	gotSteps, err := repo.ListInterventionSteps(ctx, "iv1")
	require.NoError(t, err)
	require.Len(t, gotSteps, 3)
	assert.True(t, gotSteps[0].Mandatory)
	assert.False(t, gotSteps[2].Mandatory)
	assert.Equal(t, model.StepStatusPending, gotSteps[1].Status)

	now := time.Now().UTC()
	got.Status = model.InterventionStatusCompleted
	got.CompletedAt = &now
	_, err = repo.UpdateIntervention(ctx, *got)
	require.NoError(t, err)

	updated, err := repo.GetIntervention(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, model.InterventionStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	all, err := repo.ListInterventions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepositoryUpdateInterventionKeepsProgress(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	iv, steps := interventionFixture("iv1", true, true)
	steps[0].Status = model.StepStatusCompleted
	require.NoError(t, repo.CreateIntervention(ctx, iv, steps))
	_, err := repo.UpdateInterventionProgress(ctx, "iv1")
	require.NoError(t, err)

	// A stale copy read before the progress update.
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	iv.Status = model.InterventionStatusCompleted
	iv.CompletedAt = &now
	got, err := repo.UpdateIntervention(ctx, iv)
	require.NoError(t, err)
	assert.Equal(t, model.InterventionStatusCompleted, got.Status)
	assert.Equal(t, 50.0, got.CompletionPercentage)
	assert.Equal(t, 2, got.CurrentStep)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, now.Unix(), got.CompletedAt.Unix())

	stored, err := repo.GetIntervention(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.CompletionPercentage)
	assert.Equal(t, 2, stored.CurrentStep)
}

func TestRepositoryConstraints(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	iv, steps := interventionFixture("iv1", true, true)
	require.NoError(t, repo.CreateIntervention(ctx, iv, steps))

	err := repo.CreateIntervention(ctx, iv, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	iv2, steps2 := interventionFixture("iv2", true, true)
	steps2[1].StepNumber = 1
	err = repo.CreateIntervention(ctx, iv2, steps2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	// The failed transaction must not leave a half created intervention.
	_, err = repo.GetIntervention(ctx, "iv2")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	missing, _ := interventionFixture("missing")
	_, err = repo.UpdateIntervention(ctx, missing)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = repo.GetStep(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositorySaveStep(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	iv, steps := interventionFixture("iv1", true, true)
	require.NoError(t, repo.CreateIntervention(ctx, iv, steps))

	s, err := repo.GetStepByNumber(ctx, "iv1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, s.CollectedData)

	now := time.Now().UTC()
	s.Status = model.StepStatusCompleted
	s.StartedAt = &now
	s.CompletedAt = &now
	s.CollectedData = map[string]any{"film_lot": "L-2291", "panels": 3}
	s.Notes = "left fender had a scratch"
	s.PhotoURLs = []string{"s3://photos/1.jpg", "s3://photos/2.jpg"}
	s.PhotoCount = 2

	saved, err := repo.SaveStep(ctx, *s)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	got, err := repo.GetStep(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StepStatusCompleted, got.Status)
	assert.Equal(t, "L-2291", got.CollectedData["film_lot"])
	assert.Equal(t, float64(3), got.CollectedData["panels"])
	assert.Equal(t, []string{"s3://photos/1.jpg", "s3://photos/2.jpg"}, got.PhotoURLs)
	assert.Equal(t, 2, got.PhotoCount)
	assert.Equal(t, "left fender had a scratch", got.Notes)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, now.Unix(), got.CompletedAt.Unix())

	// Saving again with the old version is a lost update.
	_, err = repo.SaveStep(ctx, *s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))

	// Unserializable data is rejected before touching the database.
	got.CollectedData = map[string]any{"fn": func() {}}
	_, err = repo.SaveStep(ctx, *got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotValid))

	_, err = repo.SaveStep(ctx, model.Step{ID: "missing", InterventionID: "iv1", StepNumber: 1, Status: model.StepStatusPending})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryProgressAndNextStep(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	iv, steps := interventionFixture("iv1", true, true, false, true)
	require.NoError(t, repo.CreateIntervention(ctx, iv, steps))

	for _, n := range []int{1, 2} {
		s, err := repo.GetStepByNumber(ctx, "iv1", n)
		require.NoError(t, err)
		s.Status = model.StepStatusCompleted
		_, err = repo.SaveStep(ctx, *s)
		require.NoError(t, err)
	}

	got, err := repo.UpdateInterventionProgress(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, float64(50), got.CompletionPercentage)
	assert.Equal(t, 3, got.CurrentStep)

	stored, err := repo.GetIntervention(ctx, "iv1")
	require.NoError(t, err)
	assert.Equal(t, float64(50), stored.CompletionPercentage)
	assert.Equal(t, 3, stored.CurrentStep)

	next, err := repo.GetNextStep(ctx, "iv1", 2)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 3, next.StepNumber)

	last, err := repo.GetNextStep(ctx, "iv1", 4)
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = repo.GetNextStep(ctx, "missing", 1)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = repo.UpdateInterventionProgress(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestMigratorVersion(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db})
	require.NoError(t, err)

	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)

	require.NoError(t, m.Up(ctx))
	v, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)

	// Idempotent.
	require.NoError(t, m.Up(ctx))

	require.NoError(t, m.Down(ctx))
	_, err = db.ExecContext(ctx, `SELECT 1 FROM steps`)
	assert.Error(t, err)
}
