package saveprogress_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/intervention/internal/app/saveprogress"
	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage/memory"
	"github.com/fieldops/intervention/internal/workflow"
)

func TestServiceRun(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		reqs      []model.SaveStepProgressRequest
		expStep   func(t *testing.T, s model.Step)
		expEvents int
		expErr    error
	}{
		"Saving progress should start the step and keep it incomplete.": {
			reqs: []model.SaveStepProgressRequest{
				{StepID: "s1", CollectedData: map[string]any{"panels": 3}, Photos: []string{"a.jpg"}},
				{StepID: "s1", CollectedData: map[string]any{"panels": 4, "film": "matte"}, Photos: []string{"b.jpg"}},
			},
			expStep: func(t *testing.T, s model.Step) {
				assert.Equal(t, model.StepStatusInProgress, s.Status)
				assert.Equal(t, map[string]any{"panels": 4, "film": "matte"}, s.CollectedData)
				assert.Equal(t, []string{"a.jpg", "b.jpg"}, s.PhotoURLs)
				assert.Equal(t, 2, s.PhotoCount)
				assert.Nil(t, s.CompletedAt)
			},
			expEvents: 2,
		},

		"Saving progress of a missing step should fail.": {
			reqs:   []model.SaveStepProgressRequest{{StepID: "missing"}},
			expErr: model.ErrNotFound,
		},

		"Saving unserializable data should fail as a validation error.": {
			reqs:   []model.SaveStepProgressRequest{{StepID: "s1", CollectedData: map[string]any{"bad": func() {}}}},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{TimeNow: func() time.Time { return now }})
			require.NoError(err)
			require.NoError(repo.CreateIntervention(ctx,
				model.Intervention{ID: "iv1", TaskID: "t1", TechnicianID: "tech1", Status: model.InterventionStatusInProgress, CurrentStep: 1},
				[]model.Step{{ID: "s1", InterventionID: "iv1", StepNumber: 1, Status: model.StepStatusPending, Mandatory: true}},
			))

			p, err := workflow.NewProgressor(workflow.ProgressorConfig{
				Repository: repo,
				Retrier:    retry.MustNew(retry.Config{BaseDelay: time.Millisecond}),
				TimeNow:    func() time.Time { return now },
			})
			require.NoError(err)

			events := 0
			svc, err := saveprogress.NewService(saveprogress.ServiceConfig{
				Progressor: p,
				Publisher: event.PublisherFunc(func(_ context.Context, e model.Event) error {
					assert.Equal(t, model.EventTypeStepProgressSaved, e.Type)
					events++
					return nil
				}),
			})
			require.NoError(err)

			var got *model.Step
			for _, req := range test.reqs {
				got, err = svc.Run(ctx, req)
				if err != nil {
					break
				}
			}

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				assert.Zero(t, events)
				return
			}

			require.NoError(err)
			test.expStep(t, *got)
			assert.Equal(t, test.expEvents, events)
		})
	}
}
