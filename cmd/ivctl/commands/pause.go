package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/pause"
	"github.com/fieldops/intervention/internal/app/resume"
)

type PauseCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interventionID string
}

// NewPauseCommand returns the pause command.
func NewPauseCommand(rootCmd *RootCommand, app *kingpin.Application) *PauseCommand {
	c := &PauseCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("pause", "Pause an in progress intervention.")
	c.Cmd.Arg("intervention-id", "Intervention ID.").Required().StringVar(&c.interventionID)

	return c
}

func (c PauseCommand) Name() string { return c.Cmd.FullCommand() }

func (c PauseCommand) Run(ctx context.Context) error {
	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := pause.NewService(pause.ServiceConfig{
		Repository: eng.repo,
		Retrier:    eng.retrier,
		Publisher:  eng.publisher,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	iv, err := svc.Run(ctx, pause.Request{InterventionID: c.interventionID})
	if err != nil {
		return fmt.Errorf("could not pause intervention: %w", err)
	}

	return c.rootCmd.Printer().PrintMessage(fmt.Sprintf("Intervention %s paused at step %d", iv.ID, iv.CurrentStep))
}

type ResumeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interventionID string
}

// NewResumeCommand returns the resume command.
func NewResumeCommand(rootCmd *RootCommand, app *kingpin.Application) *ResumeCommand {
	c := &ResumeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("resume", "Resume a paused intervention.")
	c.Cmd.Arg("intervention-id", "Intervention ID.").Required().StringVar(&c.interventionID)

	return c
}

func (c ResumeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ResumeCommand) Run(ctx context.Context) error {
	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := resume.NewService(resume.ServiceConfig{
		Repository: eng.repo,
		Retrier:    eng.retrier,
		Publisher:  eng.publisher,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	iv, err := svc.Run(ctx, resume.Request{InterventionID: c.interventionID})
	if err != nil {
		return fmt.Errorf("could not resume intervention: %w", err)
	}

	return c.rootCmd.Printer().PrintMessage(fmt.Sprintf("Intervention %s resumed at step %d", iv.ID, iv.CurrentStep))
}
