package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/saveprogress"
	"github.com/fieldops/intervention/internal/model"
)

type SaveProgressCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	stepID   string
	data     []string
	dataFile string
	photos   []string
	notes    string
}

// NewSaveProgressCommand returns the save-progress command.
func NewSaveProgressCommand(rootCmd *RootCommand, app *kingpin.Application) *SaveProgressCommand {
	c := &SaveProgressCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("save-progress", "Save partial work of a step without completing it.")
	c.Cmd.Arg("step-id", "Step ID.").Required().StringVar(&c.stepID)
	c.Cmd.Flag("data", "Collected data in key=value format (repeatable).").Short('d').StringsVar(&c.data)
	c.Cmd.Flag("data-file", "YAML file with collected data, --data entries override it.").StringVar(&c.dataFile)
	c.Cmd.Flag("photo", "Photo URL (repeatable).").StringsVar(&c.photos)
	c.Cmd.Flag("notes", "Step notes, replace the current ones.").StringVar(&c.notes)

	return c
}

func (c SaveProgressCommand) Name() string { return c.Cmd.FullCommand() }

func (c SaveProgressCommand) Run(ctx context.Context) error {
	data, err := c.rootCmd.collectedData(c.dataFile, c.data)
	if err != nil {
		return fmt.Errorf("invalid collected data: %w", err)
	}

	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := saveprogress.NewService(saveprogress.ServiceConfig{
		Progressor: eng.progressor,
		Publisher:  eng.publisher,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := model.SaveStepProgressRequest{
		StepID:        c.stepID,
		CollectedData: data,
		Photos:        c.photos,
	}
	if c.notes != "" {
		req.Notes = &c.notes
	}

	step, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not save step progress: %w", err)
	}

	if err := c.rootCmd.Printer().PrintStep(*step); err != nil {
		return fmt.Errorf("could not print step: %w", err)
	}

	return nil
}
