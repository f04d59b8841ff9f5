package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/intervention/internal/model"
)

func TestStepMarshalCollectedData(t *testing.T) {
	tests := map[string]struct {
		data    map[string]any
		expJSON string
		expErr  bool
	}{
		"Nil data should be an empty object": {
			data:    nil,
			expJSON: `{}`,
		},
		"Regular data should be serialized": {
			data:    map[string]any{"film": "ultimate-plus", "panels": 4},
			expJSON: `{"film":"ultimate-plus","panels":4}`,
		},
		"NaN values can't be serialized": {
			data:   map[string]any{"temperature": math.NaN()},
			expErr: true,
		},
		"Functions can't be serialized": {
			data:   map[string]any{"fn": func() {}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := model.Step{CollectedData: test.data}.MarshalCollectedData()

			if test.expErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, test.expJSON, string(got))
			}
		})
	}
}

func TestStepCopy(t *testing.T) {
	now := time.Now()
	orig := model.Step{
		ID:            "s1",
		CollectedData: map[string]any{"a": 1},
		PhotoURLs:     []string{"p1"},
		StartedAt:     &now,
	}

	c := orig.Copy()
	c.CollectedData["a"] = 2
	c.PhotoURLs[0] = "p2"
	*c.StartedAt = now.Add(time.Hour)

	assert.Equal(t, 1, orig.CollectedData["a"])
	assert.Equal(t, "p1", orig.PhotoURLs[0])
	assert.Equal(t, now, *orig.StartedAt)
}

func TestStepCopyNestedCollectedData(t *testing.T) {
	orig := model.Step{
		ID: "s1",
		CollectedData: map[string]any{
			"panels": map[string]any{"hood": "done"},
			"defects": []any{
				map[string]any{"zone": "door"},
			},
			"tags": []string{"matte"},
		},
	}

	c := orig.Copy()
	c.CollectedData["panels"].(map[string]any)["hood"] = "pending"
	c.CollectedData["defects"].([]any)[0].(map[string]any)["zone"] = "roof"
	c.CollectedData["tags"].([]string)[0] = "gloss"

	assert.Equal(t, "done", orig.CollectedData["panels"].(map[string]any)["hood"])
	assert.Equal(t, "door", orig.CollectedData["defects"].([]any)[0].(map[string]any)["zone"])
	assert.Equal(t, "matte", orig.CollectedData["tags"].([]string)[0])
}

func TestWorkflowTemplateValidate(t *testing.T) {
	tests := map[string]struct {
		tpl    model.WorkflowTemplate
		expErr bool
	}{
		"A valid template should not fail": {
			tpl: model.WorkflowTemplate{Name: "ppf", Steps: []model.StepTemplate{{Name: "inspection", Mandatory: true}}},
		},
		"Missing name should fail": {
			tpl:    model.WorkflowTemplate{Steps: []model.StepTemplate{{Name: "inspection"}}},
			expErr: true,
		},
		"No steps should fail": {
			tpl:    model.WorkflowTemplate{Name: "ppf"},
			expErr: true,
		},
		"Unnamed step should fail": {
			tpl:    model.WorkflowTemplate{Name: "ppf", Steps: []model.StepTemplate{{Name: "a"}, {}}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.tpl.Validate()
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
