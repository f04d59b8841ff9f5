package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fieldops/intervention/internal/app/start"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/storage"
	storageio "github.com/fieldops/intervention/internal/storage/io"
)

type StartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID       string
	technicianID string
	templatePath string
}

// NewStartCommand returns the start command.
func NewStartCommand(rootCmd *RootCommand, app *kingpin.Application) *StartCommand {
	c := &StartCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("start", "Start a new intervention for a task.")
	c.Cmd.Flag("task", "Task ID the intervention belongs to.").Short('t').Required().StringVar(&c.taskID)
	c.Cmd.Flag("technician", "Technician ID doing the intervention.").Required().StringVar(&c.technicianID)
	c.Cmd.Flag("template", "Path to a workflow template YAML file, the builtin PPF template is used when not set.").StringVar(&c.templatePath)

	return c
}

func (c StartCommand) Name() string { return c.Cmd.FullCommand() }

func (c StartCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	eng, err := c.rootCmd.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	var templates storage.TemplateRepository = storageio.NewTemplateYAMLRepository(storageio.BuiltinTemplates())
	templatePath := storageio.DefaultTemplatePath
	if c.templatePath != "" {
		abs, err := filepath.Abs(c.templatePath)
		if err != nil {
			return fmt.Errorf("invalid template path: %w", err)
		}
		templates = storageio.NewTemplateYAMLRepository(c.rootCmd.rootFS())
		templatePath = abs
	}

	svc, err := start.NewService(start.ServiceConfig{
		Repository:         eng.repo,
		TemplateRepository: templates,
		Validator:          eng.validator,
		Retrier:            eng.retrier,
		Publisher:          eng.publisher,
		Logger:             logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	resp, err := svc.Run(ctx, start.Request{
		TaskID:       c.taskID,
		TechnicianID: c.technicianID,
		Template:     templatePath,
	})
	if err != nil {
		return fmt.Errorf("could not start intervention: %w", err)
	}

	p := c.rootCmd.Printer()
	if err := p.PrintStatus(resp.Intervention, resp.Steps, model.ProgressOf(resp.Steps)); err != nil {
		return fmt.Errorf("could not print intervention: %w", err)
	}

	return nil
}
