package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Ivctl runs ivctl binary commands, all of them against the same database.
type Ivctl struct {
	Binary string
	DBPath string
	// Env is appended after the process and ivctl env, so it wins on duplicated keys.
	Env []string
}

// Run executes an ivctl command. The database is selected with IVCTL_DB_PATH
// and logs are disabled so stdout only has the command output.
func (i Ivctl) Run(ctx context.Context, args ...string) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, i.Binary, args...)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	env := append([]string{}, os.Environ()...)
	env = append(env,
		"IVCTL_DB_PATH="+i.DBPath,
		"IVCTL_NO_LOG=true",
	)
	cmd.Env = append(env, i.Env...)

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}

// RunJSON executes an ivctl command with JSON output and decodes it into out.
// The returned error carries stderr when the command fails.
func (i Ivctl) RunJSON(ctx context.Context, out any, args ...string) error {
	i.Env = append([]string{"IVCTL_FORMAT=json"}, i.Env...)

	stdout, stderr, err := i.Run(ctx, args...)
	if err != nil {
		return fmt.Errorf("ivctl %v failed: %w: %s", args, err, bytes.TrimSpace(stderr))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(stdout, out); err != nil {
		return fmt.Errorf("could not decode ivctl %v output %q: %w", args, stdout, err)
	}

	return nil
}
