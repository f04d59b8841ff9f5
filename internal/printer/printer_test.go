package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/printer"
)

func interventionFixture() model.Intervention {
	startedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return model.Intervention{
		ID:                   "01JNQ8Z0000000000000000000",
		TaskID:               "task-42",
		TechnicianID:         "tech-7",
		TemplateName:         "ppf-standard",
		Status:               model.InterventionStatusInProgress,
		CurrentStep:          2,
		CompletionPercentage: 50,
		StartedAt:            &startedAt,
		CreatedAt:            startedAt,
	}
}

func stepsFixture() []model.Step {
	return []model.Step{
		{ID: "s1", StepNumber: 1, Name: "Inspection", Status: model.StepStatusCompleted, Mandatory: true, PhotoCount: 2},
		{ID: "s2", StepNumber: 2, Name: "Installation", Status: model.StepStatusInProgress, Mandatory: true},
	}
}

func TestTablePrinterPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintStatus(interventionFixture(), stepsFixture(), model.Progress{Percentage: 50, CurrentStep: 2, Completed: 1, Total: 2})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Task:         task-42")
	assert.Contains(t, out, "Template:     ppf-standard")
	assert.Contains(t, out, "Started:      2026-03-02 09:00:00 UTC")
	assert.Contains(t, out, "[##########----------] 50.00% (1/2)")
	assert.Contains(t, out, "Inspection")
	assert.Regexp(t, `2\s+Installation\s+in_progress\s+true\s+0\s+.* <`, out)
}

func TestJSONPrinterPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintStatus(interventionFixture(), stepsFixture(), model.Progress{Percentage: 50, CurrentStep: 2, Completed: 1, Total: 2})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	iv := got["intervention"].(map[string]any)
	assert.Equal(t, "task-42", iv["task_id"])
	assert.Equal(t, "in_progress", iv["status"])
	assert.Nil(t, iv["completed_at"])
	assert.Equal(t, float64(2), got["progress"].(map[string]any)["total"])
	assert.Len(t, got["steps"], 2)
}

func TestPrintAdvance(t *testing.T) {
	resp := model.AdvanceStepResponse{
		Step:                  model.Step{ID: "s1", StepNumber: 1, Status: model.StepStatusCompleted},
		NextStep:              &model.Step{ID: "s2", StepNumber: 2, Name: "Installation", Status: model.StepStatusPending},
		ProgressPercentage:    33.33,
		RequirementsCompleted: []string{"step_1_completed"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printer.NewTablePrinter(&buf).PrintAdvance(resp))
		assert.Contains(t, buf.String(), "Completed step 1 (s1)")
		assert.Contains(t, buf.String(), "Next step:    2 Installation (s2)")
		assert.Contains(t, buf.String(), "33.33%")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printer.NewJSONPrinter(&buf).PrintAdvance(resp))
		assert.Contains(t, buf.String(), `"step_1_completed"`)
		assert.Contains(t, buf.String(), `"progress_percentage": 33.33`)
	})

	t.Run("table without next step", func(t *testing.T) {
		var buf bytes.Buffer
		last := resp
		last.NextStep = nil
		require.NoError(t, printer.NewTablePrinter(&buf).PrintAdvance(last))
		assert.Contains(t, buf.String(), "Next step:    -")
	})
}

func TestTablePrinterPrintInterventionListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer.NewTablePrinter(&buf).PrintInterventionList(nil))
	assert.Empty(t, buf.String())
}

func TestJSONPrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer.NewJSONPrinter(&buf).PrintMessage("intervention paused"))
	assert.JSONEq(t, `{"message":"intervention paused"}`, buf.String())
}
