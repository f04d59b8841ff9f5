package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/finalize"
)

type FinalizeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interventionID string
}

// NewFinalizeCommand returns the finalize command.
func NewFinalizeCommand(rootCmd *RootCommand, app *kingpin.Application) *FinalizeCommand {
	c := &FinalizeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("finalize", "Complete an intervention once all its mandatory steps are done.")
	c.Cmd.Arg("intervention-id", "Intervention ID.").Required().StringVar(&c.interventionID)

	return c
}

func (c FinalizeCommand) Name() string { return c.Cmd.FullCommand() }

func (c FinalizeCommand) Run(ctx context.Context) error {
	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := finalize.NewService(finalize.ServiceConfig{
		Repository: eng.repo,
		Validator:  eng.validator,
		Retrier:    eng.retrier,
		Publisher:  eng.publisher,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	iv, err := svc.Run(ctx, finalize.Request{InterventionID: c.interventionID})
	if err != nil {
		return fmt.Errorf("could not finalize intervention: %w", err)
	}

	if err := c.rootCmd.Printer().PrintIntervention(*iv); err != nil {
		return fmt.Errorf("could not print intervention: %w", err)
	}

	return nil
}
