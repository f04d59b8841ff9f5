package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
)

// Strategy is the way the wait between attempts grows.
type Strategy string

const (
	// StrategyLinear waits BaseDelay × attempt number.
	StrategyLinear Strategy = "linear"
	// StrategyExponential doubles the wait on every attempt with random jitter.
	StrategyExponential Strategy = "exponential"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 100 * time.Millisecond
)

// Config is the configuration of the retrier.
type Config struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	Strategy    Strategy
	Logger      log.Logger
}

func (c *Config) defaults() error {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.Strategy == "" {
		c.Strategy = StrategyLinear
	}
	if c.Strategy != StrategyLinear && c.Strategy != StrategyExponential {
		return fmt.Errorf("unknown retry strategy %q", c.Strategy)
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "retry.Retrier"})
	return nil
}

// Retrier runs storage operations with a bounded number of attempts.
// Only transient errors are retried (see model.IsTransient).
type Retrier struct {
	maxAttempts uint
	baseDelay   time.Duration
	strategy    Strategy
	logger      log.Logger
}

// New returns a new retrier.
func New(cfg Config) (*Retrier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Retrier{
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		strategy:    cfg.Strategy,
		logger:      cfg.Logger,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config) *Retrier {
	r, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

// Do runs op until it succeeds, returns a non transient error or runs out of attempts.
// When the attempts are exhausted it returns a *model.DatabaseError.
func Do[T any](ctx context.Context, r *Retrier, opName string, op func(ctx context.Context) (T, error)) (T, error) {
	logger := r.logger.WithCtxValues(ctx).WithValues(log.Kv{"op": opName})

	attempts := 0
	operation := func() (T, error) {
		attempts++
		res, err := op(ctx)
		if err != nil && !model.IsTransient(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	notify := func(err error, next time.Duration) {
		logger.Warningf("attempt %d/%d failed, retrying in %s: %s", attempts, r.maxAttempts, next, err)
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxAttempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err == nil {
		if attempts > 1 {
			logger.Debugf("succeeded after %d attempts", attempts)
		}
		return res, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s aborted after %d attempt(s): %w", opName, attempts, err)
	}

	if !model.IsTransient(err) {
		return res, err
	}

	logger.Errorf("giving up after %d attempts: %s", attempts, err)
	return res, &model.DatabaseError{Op: opName, Attempts: attempts, Err: err}
}

// Run is like Do for operations that only return an error.
func Run(ctx context.Context, r *Retrier, opName string, op func(ctx context.Context) error) error {
	_, err := Do(ctx, r, opName, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func (r *Retrier) newBackOff() backoff.BackOff {
	if r.strategy == StrategyExponential {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = r.baseDelay
		b.RandomizationFactor = 0.5
		b.Multiplier = 2
		b.MaxInterval = r.baseDelay << r.maxAttempts
		return b
	}

	return &linearBackOff{base: r.baseDelay}
}

// linearBackOff waits base × attempt between attempts.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return l.base * time.Duration(l.attempt)
}

func (l *linearBackOff) Reset() { l.attempt = 0 }
