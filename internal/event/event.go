package event

import (
	"context"
	"fmt"

	"github.com/fieldops/intervention/internal/log"
	"github.com/fieldops/intervention/internal/model"
)

// Publisher delivers domain events to the subsystems that react to them
// (audit log, live updates, inventory...).
type Publisher interface {
	Publish(ctx context.Context, e model.Event) error
}

// PublisherFunc is a helper to implement Publisher with a function.
type PublisherFunc func(ctx context.Context, e model.Event) error

func (f PublisherFunc) Publish(ctx context.Context, e model.Event) error { return f(ctx, e) }

// Noop publisher drops every event.
var Noop = PublisherFunc(func(context.Context, model.Event) error { return nil })

// LogPublisher writes the events to the logger.
type LogPublisher struct {
	logger log.Logger
}

// NewLogPublisher returns a publisher that logs every event at info level.
func NewLogPublisher(logger log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.Noop
	}
	return &LogPublisher{logger: logger.WithValues(log.Kv{"svc": "event.LogPublisher"})}
}

func (l *LogPublisher) Publish(ctx context.Context, e model.Event) error {
	kv := log.Kv{
		"event":           string(e.Type),
		"intervention-id": e.InterventionID,
		"progress":        fmt.Sprintf("%.2f", e.ProgressPercentage),
	}
	if e.StepID != "" {
		kv["step-id"] = e.StepID
		kv["step-number"] = e.StepNumber
	}
	l.logger.WithCtxValues(ctx).WithValues(kv).Infof("Event %s", e.Type)
	return nil
}

// PublishSafe publishes the event and only logs a failure. Events are
// published after the change is persisted so a delivery problem must not
// fail the operation.
func PublishSafe(ctx context.Context, p Publisher, logger log.Logger, e model.Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Warningf("could not publish %s event: %s", e.Type, err)
	}
}
