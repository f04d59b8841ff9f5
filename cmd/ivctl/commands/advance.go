package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/advance"
	"github.com/fieldops/intervention/internal/model"
)

type AdvanceCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interventionID     string
	stepID             string
	data               []string
	dataFile           string
	photos             []string
	notes              string
	qualityCheckPassed bool
	issues             []string
}

// NewAdvanceCommand returns the advance command.
func NewAdvanceCommand(rootCmd *RootCommand, app *kingpin.Application) *AdvanceCommand {
	c := &AdvanceCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("advance", "Complete a step of an intervention.")
	c.Cmd.Arg("intervention-id", "Intervention ID.").Required().StringVar(&c.interventionID)
	c.Cmd.Arg("step-id", "Step ID.").Required().StringVar(&c.stepID)
	c.Cmd.Flag("data", "Collected data in key=value format (repeatable).").Short('d').StringsVar(&c.data)
	c.Cmd.Flag("data-file", "YAML file with collected data, --data entries override it.").StringVar(&c.dataFile)
	c.Cmd.Flag("photo", "Photo URL (repeatable).").StringsVar(&c.photos)
	c.Cmd.Flag("notes", "Step notes, replace the current ones.").StringVar(&c.notes)
	c.Cmd.Flag("quality-check", "Quality check passed.").Default("true").BoolVar(&c.qualityCheckPassed)
	c.Cmd.Flag("issue", "Issue found during the step (repeatable).").StringsVar(&c.issues)

	return c
}

func (c AdvanceCommand) Name() string { return c.Cmd.FullCommand() }

func (c AdvanceCommand) Run(ctx context.Context) error {
	data, err := c.rootCmd.collectedData(c.dataFile, c.data)
	if err != nil {
		return fmt.Errorf("invalid collected data: %w", err)
	}

	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	svc, err := advance.NewService(advance.ServiceConfig{
		Validator:  eng.validator,
		Progressor: eng.progressor,
		Publisher:  eng.publisher,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := model.AdvanceStepRequest{
		InterventionID:     c.interventionID,
		StepID:             c.stepID,
		CollectedData:      data,
		Photos:             c.photos,
		QualityCheckPassed: c.qualityCheckPassed,
		Issues:             c.issues,
	}
	if c.notes != "" {
		req.Notes = &c.notes
	}

	resp, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not advance step: %w", err)
	}

	if err := c.rootCmd.Printer().PrintAdvance(*resp); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	return nil
}
