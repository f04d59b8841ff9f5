package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/spf13/afero"
	"k8s.io/client-go/util/homedir"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/printer"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage/sqlite"
	"github.com/fieldops/intervention/internal/utils/kv"
	"github.com/fieldops/intervention/internal/workflow"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// FormatTable is the table output format.
	FormatTable = "table"
	// FormatJSON is the JSON output format.
	FormatJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug          bool
	NoLog          bool
	NoColor        bool
	LoggerType     string
	DBPath         string
	Format         string
	RetryAttempts  uint
	RetryBaseDelay time.Duration
	RetryStrategy  string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
	// FS is the filesystem used to read user files (templates, data files).
	FS afero.Fs
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{FS: afero.NewOsFs()}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").Envar("IVCTL_NO_LOG").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("format", "Output format.").Envar("IVCTL_FORMAT").Default(FormatTable).EnumVar(&c.Format, FormatTable, FormatJSON)

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".ivctl", "ivctl.db")
	app.Flag("db-path", "Path to the SQLite database file.").Envar("IVCTL_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)

	app.Flag("retry-attempts", "Maximum attempts of every storage operation.").Default("3").UintVar(&c.RetryAttempts)
	app.Flag("retry-base-delay", "Base wait between storage attempts.").Default("100ms").DurationVar(&c.RetryBaseDelay)
	app.Flag("retry-strategy", "Wait growth between storage attempts.").Default(string(retry.StrategyLinear)).EnumVar(&c.RetryStrategy, string(retry.StrategyLinear), string(retry.StrategyExponential))

	return c
}

// Printer returns the printer for the selected output format.
func (r *RootCommand) Printer() printer.Printer {
	if r.Format == FormatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout)
}

// engine groups the collaborators shared by the workflow commands.
type engine struct {
	repo       *sqlite.Repository
	retrier    *retry.Retrier
	validator  *workflow.Validator
	progressor *workflow.Progressor
	publisher  event.Publisher
}

func (r *RootCommand) newEngine(ctx context.Context) (*engine, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	retrier, err := retry.New(retry.Config{
		MaxAttempts: r.RetryAttempts,
		BaseDelay:   r.RetryBaseDelay,
		Strategy:    retry.Strategy(r.RetryStrategy),
		Logger:      r.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create retrier: %w", err)
	}

	validator, err := workflow.NewValidator(workflow.ValidatorConfig{
		Repository: repo,
		Logger:     r.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create validator: %w", err)
	}

	progressor, err := workflow.NewProgressor(workflow.ProgressorConfig{
		Repository: repo,
		Retrier:    retrier,
		Logger:     r.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create progressor: %w", err)
	}

	return &engine{
		repo:       repo,
		retrier:    retrier,
		validator:  validator,
		progressor: progressor,
		publisher:  event.NewLogPublisher(r.Logger),
	}, nil
}

func (e *engine) Close() error { return e.repo.Close() }

// collectedData merges the data file (if any) with the inline specs, inline wins.
func (r *RootCommand) collectedData(dataFile string, specs []string) (map[string]any, error) {
	inline, err := kv.ParseSpecs(specs)
	if err != nil {
		return nil, err
	}
	if dataFile == "" {
		return inline, nil
	}

	abs, err := filepath.Abs(dataFile)
	if err != nil {
		return nil, fmt.Errorf("invalid data file path: %w", err)
	}
	fromFile, err := kv.LoadFile(r.rootFS(), abs)
	if err != nil {
		return nil, err
	}

	return kv.Merge(fromFile, inline), nil
}

// rootFS returns the user filesystem as an io/fs rooted at "/".
func (r *RootCommand) rootFS() afero.IOFS {
	return afero.NewIOFS(afero.NewBasePathFs(r.FS, "/"))
}
