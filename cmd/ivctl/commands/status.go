package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/status"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interventionID string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Get the detailed status of an intervention and its steps.")
	c.Cmd.Arg("intervention-id", "Intervention ID.").Required().StringVar(&c.interventionID)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := status.NewService(status.ServiceConfig{
		Repository: eng.repo,
		Retrier:    eng.retrier,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	resp, err := svc.Run(ctx, status.Request{InterventionID: c.interventionID})
	if err != nil {
		return fmt.Errorf("could not get intervention status: %w", err)
	}

	if err := c.rootCmd.Printer().PrintStatus(resp.Intervention, resp.Steps, resp.Progress); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
