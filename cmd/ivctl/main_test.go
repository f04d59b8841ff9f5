package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	fullArgs := append([]string{"ivctl", "--no-log", "--format", "json", "--db-path", c.dbPath, "--retry-base-delay", "1ms"}, args...)
	err := Run(context.Background(), fullArgs, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func (c cli) mustRun(v any, args ...string) {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err)
	if v != nil {
		require.NoError(c.t, json.Unmarshal([]byte(out), v))
	}
}

type statusJSON struct {
	Intervention struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"intervention"`
	Progress struct {
		Percentage  float64 `json:"percentage"`
		CurrentStep int     `json:"current_step"`
	} `json:"progress"`
	Steps []struct {
		ID            string         `json:"id"`
		Status        string         `json:"status"`
		Mandatory     bool           `json:"mandatory"`
		CollectedData map[string]any `json:"collected_data"`
	} `json:"steps"`
}

func TestCLIInterventionLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	c := cli{t: t, dbPath: filepath.Join(t.TempDir(), "ivctl.db")}

	var started statusJSON
	c.mustRun(&started, "start", "--task", "task-1", "--technician", "tech-1")
	require.Len(started.Steps, 5)
	assert.Equal("in_progress", started.Intervention.Status)
	ivID := started.Intervention.ID
	step := func(n int) string { return started.Steps[n-1].ID }

	// Steps are completed in order.
	_, err := c.run("advance", ivID, step(2))
	require.Error(err)
	assert.Contains(err.Error(), "previous step not completed (steps: 1)")

	var adv struct {
		ProgressPercentage float64 `json:"progress_percentage"`
		NextStep           *struct {
			ID string `json:"id"`
		} `json:"next_step"`
	}
	c.mustRun(&adv, "advance", ivID, step(1), "-d", "odometer=42000", "-d", "damage=[bumper]")
	assert.Equal(20.0, adv.ProgressPercentage)
	require.NotNil(adv.NextStep)
	assert.Equal(step(2), adv.NextStep.ID)

	// Paused interventions can't advance.
	c.mustRun(nil, "pause", ivID)
	_, err = c.run("advance", ivID, step(2))
	require.Error(err)
	assert.Contains(err.Error(), "intervention is paused")
	c.mustRun(nil, "resume", ivID)

	c.mustRun(nil, "save-progress", step(2), "-d", "panels=2")
	c.mustRun(nil, "advance", ivID, step(2))
	c.mustRun(nil, "advance", ivID, step(3))

	_, err = c.run("finalize", ivID)
	require.Error(err)
	assert.Contains(err.Error(), "mandatory steps not completed (steps: 5)")

	c.mustRun(nil, "advance", ivID, step(4))
	c.mustRun(&adv, "advance", ivID, step(5))
	assert.Equal(100.0, adv.ProgressPercentage)
	assert.Nil(adv.NextStep)

	var finalized struct {
		Status string `json:"status"`
	}
	c.mustRun(&finalized, "finalize", ivID)
	assert.Equal("completed", finalized.Status)

	var status statusJSON
	c.mustRun(&status, "status", ivID)
	assert.Equal(100.0, status.Progress.Percentage)
	assert.Equal(map[string]any{"odometer": float64(42000), "damage": []any{"bumper"}}, status.Steps[0].CollectedData)
	assert.Equal(map[string]any{"panels": float64(2)}, status.Steps[1].CollectedData)

	var list []struct {
		ID string `json:"id"`
	}
	c.mustRun(&list, "list", "--status", "completed")
	require.Len(list, 1)
	assert.Equal(ivID, list[0].ID)
}

func TestCLIStartWithTemplateFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	c := cli{t: t, dbPath: filepath.Join(dir, "ivctl.db")}

	tplPath := filepath.Join(dir, "tint.yaml")
	require.NoError(os.WriteFile(tplPath, []byte("name: window-tint\nsteps:\n  - name: Clean\n  - name: Apply\n    mandatory: false\n"), 0o644))

	var started statusJSON
	c.mustRun(&started, "start", "--task", "task-2", "--technician", "tech-2", "--template", tplPath)
	require.Len(started.Steps, 2)
	assert.True(t, started.Steps[0].Mandatory)
	assert.False(t, started.Steps[1].Mandatory)
}

func TestCLIErrors(t *testing.T) {
	c := cli{t: t, dbPath: filepath.Join(t.TempDir(), "ivctl.db")}

	tests := map[string]struct {
		args   []string
		errMsg string
	}{
		"Unknown command should fail.": {
			args:   []string{"explode"},
			errMsg: "invalid command configuration",
		},
		"Blank technician should fail.": {
			args:   []string{"start", "--task", "t", "--technician", " "},
			errMsg: "technician",
		},
		"Missing intervention should fail.": {
			args:   []string{"status", "does-not-exist"},
			errMsg: "not found",
		},
		"Invalid data spec should fail.": {
			args:   []string{"save-progress", "s1", "-d", "novalue"},
			errMsg: "invalid collected data",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.run(test.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.errMsg)
		})
	}
}
