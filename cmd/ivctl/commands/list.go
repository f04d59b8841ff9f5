package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/list"
	"github.com/fieldops/intervention/internal/model"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	status string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List interventions.")
	c.Cmd.Alias("ls")
	c.Cmd.Flag("task", "Only interventions of this task.").Short('t').StringVar(&c.taskID)
	c.Cmd.Flag("status", "Only interventions with this status.").EnumVar(&c.status,
		string(model.InterventionStatusPending),
		string(model.InterventionStatusInProgress),
		string(model.InterventionStatusPaused),
		string(model.InterventionStatusCompleted),
		string(model.InterventionStatusCancelled),
	)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := list.NewService(list.ServiceConfig{
		Repository: eng.repo,
		Retrier:    eng.retrier,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	ivs, err := svc.Run(ctx, list.Request{TaskID: c.taskID, Status: model.InterventionStatus(c.status)})
	if err != nil {
		return fmt.Errorf("could not list interventions: %w", err)
	}

	if err := c.rootCmd.Printer().PrintInterventionList(ivs); err != nil {
		return fmt.Errorf("could not print interventions: %w", err)
	}

	return nil
}
