package advance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/intervention/internal/app/advance"
	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage/storagemock"
	"github.com/fieldops/intervention/internal/workflow"
)

var testNow = time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

func saveStepBumpingVersion(_ context.Context, s model.Step) (*model.Step, error) {
	s.Version++
	return &s, nil
}

func TestNewService(t *testing.T) {
	repo := &storagemock.MockRepository{}
	v, err := workflow.NewValidator(workflow.ValidatorConfig{Repository: repo})
	require.NoError(t, err)
	p, err := workflow.NewProgressor(workflow.ProgressorConfig{Repository: repo})
	require.NoError(t, err)

	_, err = advance.NewService(advance.ServiceConfig{Progressor: p})
	assert.Error(t, err)
	_, err = advance.NewService(advance.ServiceConfig{Validator: v})
	assert.Error(t, err)
	svc, err := advance.NewService(advance.ServiceConfig{Validator: v, Progressor: p})
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestServiceRun(t *testing.T) {
	inProgress := &model.Intervention{ID: "iv1", TaskID: "t1", TechnicianID: "tech1", Status: model.InterventionStatusInProgress, CurrentStep: 1}
	paused := &model.Intervention{ID: "iv1", TaskID: "t1", TechnicianID: "tech1", Status: model.InterventionStatusPaused, CurrentStep: 1}
	step1 := &model.Step{ID: "s1", InterventionID: "iv1", StepNumber: 1, Status: model.StepStatusPending, Mandatory: true}
	step2 := &model.Step{ID: "s2", InterventionID: "iv1", StepNumber: 2, Status: model.StepStatusPending, Mandatory: true}

	tests := map[string]struct {
		mock        func(m *storagemock.MockRepository)
		publishErr  error
		req         model.AdvanceStepRequest
		expProgress float64
		expNextStep string
		expEvents   int
		expErr      error
	}{
		"Advancing the first step should complete it and publish the event.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetIntervention", mock.Anything, "iv1").Once().Return(inProgress, nil)
				m.On("GetStep", mock.Anything, "s1").Once().Return(step1, nil)
				m.On("SaveStep", mock.Anything, mock.MatchedBy(func(s model.Step) bool {
					return s.ID == "s1" && s.Status == model.StepStatusCompleted && s.CollectedData["film"] == "gloss"
				})).Once().Return(saveStepBumpingVersion)
				m.On("UpdateInterventionProgress", mock.Anything, "iv1").Once().Return(&model.Intervention{ID: "iv1", CompletionPercentage: 50, CurrentStep: 2}, nil)
				m.On("GetNextStep", mock.Anything, "iv1", 1).Once().Return(step2, nil)
			},
			req:         model.AdvanceStepRequest{InterventionID: "iv1", StepID: "s1", CollectedData: map[string]any{"film": "gloss"}, QualityCheckPassed: true},
			expProgress: 50,
			expNextStep: "s2",
			expEvents:   1,
		},

		"A publisher failure should not fail the advancement.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetIntervention", mock.Anything, "iv1").Once().Return(inProgress, nil)
				m.On("GetStep", mock.Anything, "s1").Once().Return(step1, nil)
				m.On("SaveStep", mock.Anything, mock.Anything).Once().Return(saveStepBumpingVersion)
				m.On("UpdateInterventionProgress", mock.Anything, "iv1").Once().Return(&model.Intervention{ID: "iv1", CompletionPercentage: 50}, nil)
				m.On("GetNextStep", mock.Anything, "iv1", 1).Once().Return(step2, nil)
			},
			publishErr:  errors.New("broker down"),
			req:         model.AdvanceStepRequest{InterventionID: "iv1", StepID: "s1"},
			expProgress: 50,
			expNextStep: "s2",
			expEvents:   1,
		},

		"A paused intervention should be rejected without writes.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetIntervention", mock.Anything, "iv1").Once().Return(paused, nil)
				m.On("GetStep", mock.Anything, "s1").Once().Return(step1, nil)
			},
			req:    model.AdvanceStepRequest{InterventionID: "iv1", StepID: "s1"},
			expErr: model.ErrWorkflow,
		},

		"A missing intervention should fail without retries.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetIntervention", mock.Anything, "iv1").Once().Return(nil, model.ErrNotFound)
			},
			req:    model.AdvanceStepRequest{InterventionID: "iv1", StepID: "s1"},
			expErr: model.ErrNotFound,
		},

		"A step of another intervention should be rejected.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetIntervention", mock.Anything, "iv1").Once().Return(inProgress, nil)
				m.On("GetStep", mock.Anything, "sx").Once().Return(&model.Step{ID: "sx", InterventionID: "iv2", StepNumber: 1, Status: model.StepStatusPending}, nil)
			},
			req:    model.AdvanceStepRequest{InterventionID: "iv1", StepID: "sx"},
			expErr: model.ErrWorkflow,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := storagemock.NewMockRepository(t)
			test.mock(repo)

			v, err := workflow.NewValidator(workflow.ValidatorConfig{Repository: repo, Logger: log.Noop})
			require.NoError(err)
			p, err := workflow.NewProgressor(workflow.ProgressorConfig{
				Repository: repo,
				Retrier:    retry.MustNew(retry.Config{BaseDelay: time.Millisecond}),
				TimeNow:    func() time.Time { return testNow },
			})
			require.NoError(err)

			var events []model.Event
			svc, err := advance.NewService(advance.ServiceConfig{
				Validator:  v,
				Progressor: p,
				Publisher: event.PublisherFunc(func(_ context.Context, e model.Event) error {
					events = append(events, e)
					return test.publishErr
				}),
				TimeNow: func() time.Time { return testNow },
			})
			require.NoError(err)

			resp, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				assert.Empty(events)
				return
			}

			require.NoError(err)
			assert.Equal(model.StepStatusCompleted, resp.Step.Status)
			assert.Equal(test.expProgress, resp.ProgressPercentage)
			require.NotNil(resp.NextStep)
			assert.Equal(test.expNextStep, resp.NextStep.ID)
			require.Len(events, test.expEvents)
			assert.Equal(model.Event{
				Type:               model.EventTypeStepCompleted,
				InterventionID:     "iv1",
				StepID:             "s1",
				StepNumber:         1,
				ProgressPercentage: test.expProgress,
				OccurredAt:         testNow,
			}, events[0])
		})
	}
}
