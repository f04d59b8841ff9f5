package lib

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldops/intervention/internal/event"
	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
	"github.com/fieldops/intervention/internal/retry"
	"github.com/fieldops/intervention/internal/storage"
	storageio "github.com/fieldops/intervention/internal/storage/io"
	"github.com/fieldops/intervention/internal/storage/memory"
	"github.com/fieldops/intervention/internal/storage/sqlite"
	"github.com/fieldops/intervention/internal/workflow"
)

const (
	defaultDataDir = ".ivctl"
	defaultDBFile  = "ivctl.db"
)

// StorageType identifies the storage backend of the client.
type StorageType string

const (
	// StorageSQLite persists interventions in a SQLite database file.
	StorageSQLite StorageType = "sqlite"
	// StorageMemory keeps everything in memory, useful for tests.
	StorageMemory StorageType = "memory"
)

// RetryConfig configures how storage operations are retried.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Default: 3.
	MaxAttempts uint
	// BaseDelay is the wait unit between attempts.
	// Default: 100ms.
	BaseDelay time.Duration
	// Exponential doubles the wait with jitter instead of growing it linearly.
	Exponential bool
}

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.ivctl/ivctl.db for storage
// and the builtin workflow templates.
type Config struct {
	// Storage selects the storage backend.
	// Default: [StorageSQLite].
	Storage StorageType

	// DBPath is the SQLite database path.
	// Default: ~/.ivctl/ivctl.db.
	DBPath string

	// Templates is the filesystem workflow templates are loaded from.
	// Default: the builtin templates.
	Templates fs.FS

	// Retry configures storage retries.
	Retry RetryConfig

	// OnEvent is called with every domain event after the change is persisted.
	// Returned errors are logged and ignored.
	OnEvent func(ctx context.Context, e Event) error

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Storage == "" {
		c.Storage = StorageSQLite
	}

	if c.Storage == StorageSQLite && c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = filepath.Join(home, defaultDataDir, defaultDBFile)
	}

	if c.Templates == nil {
		c.Templates = storageio.BuiltinTemplates()
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point to run intervention workflows programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo       storage.Repository
	templates  storage.TemplateRepository
	retrier    *retry.Retrier
	validator  *workflow.Validator
	progressor *workflow.Progressor
	publisher  event.Publisher
	logger     log.Logger
	closeFn    func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		repo    storage.Repository
		closeFn = func() error { return nil }
	)
	switch cfg.Storage {
	case StorageSQLite:
		r, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		repo, closeFn = r, r.Close
	case StorageMemory:
		r, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		repo = r
	default:
		return nil, fmt.Errorf("unsupported storage type: %s: %w", cfg.Storage, ErrNotValid)
	}

	strategy := retry.StrategyLinear
	if cfg.Retry.Exponential {
		strategy = retry.StrategyExponential
	}
	retrier, err := retry.New(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Strategy:    strategy,
		Logger:      cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create retrier: %w", err)
	}

	validator, err := workflow.NewValidator(workflow.ValidatorConfig{Repository: repo, Logger: cfg.Logger})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create validator: %w", err)
	}

	progressor, err := workflow.NewProgressor(workflow.ProgressorConfig{Repository: repo, Retrier: retrier, Logger: cfg.Logger})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create progressor: %w", err)
	}

	var publisher event.Publisher = event.Noop
	if cfg.OnEvent != nil {
		onEvent := cfg.OnEvent
		publisher = event.PublisherFunc(func(ctx context.Context, e model.Event) error {
			return onEvent(ctx, fromInternalEvent(e))
		})
	}

	return &Client{
		repo:       repo,
		templates:  storageio.NewTemplateYAMLRepository(cfg.Templates),
		retrier:    retrier,
		validator:  validator,
		progressor: progressor,
		publisher:  publisher,
		logger:     cfg.Logger,
		closeFn:    closeFn,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
