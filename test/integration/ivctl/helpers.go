package ivctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldops/intervention/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		return fmt.Errorf("ivctl binary path is required (IVCTL_INTEGRATION_BINARY)")
	}

	// go test changes the CWD to the package directory, relative paths would break.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("IVCTL_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("ivctl binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "IVCTL_INTEGRATION"
		envBinary     = "IVCTL_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// NewIvctl returns an ivctl runner bound to a fresh database of the test.
func NewIvctl(t *testing.T, config Config) testutils.Ivctl {
	t.Helper()
	return testutils.Ivctl{
		Binary: config.Binary,
		DBPath: filepath.Join(t.TempDir(), "ivctl.db"),
	}
}

// Status is the subset of the start and status commands output used by the tests.
type Status struct {
	Intervention struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"intervention"`
	Progress struct {
		Percentage float64 `json:"percentage"`
		Completed  int     `json:"completed"`
	} `json:"progress"`
	Steps []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"steps"`
}

// RunStart starts an intervention of a task with the builtin template.
func RunStart(ctx context.Context, t *testing.T, ivctl testutils.Ivctl, taskID string) Status {
	t.Helper()

	var s Status
	err := ivctl.RunJSON(ctx, &s, "start", "--task", taskID, "--technician", "tech-1")
	require.NoError(t, err)
	return s
}

// RunAdvance completes a step of an intervention.
func RunAdvance(ctx context.Context, ivctl testutils.Ivctl, interventionID, stepID string) error {
	return ivctl.RunJSON(ctx, nil, "advance", interventionID, stepID)
}
