// Package outbox relays events recorded by settlements to the broker.
package outbox

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

// Sink receives relayed events. The RabbitMQ publisher implements it; the
// single-process setup hands events straight to the notifier.
type Sink interface {
	PublishJSON(ctx context.Context, key, messageID string, body []byte) error
}

type Options struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Backoff    time.Duration
	// MaxRuns is how many relay runs may fail on an event before it is
	// marked dead and skipped.
	MaxRuns int
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = 5 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.MaxRuns <= 0 {
		o.MaxRuns = 5
	}
}

type Publisher struct {
	repo   domain.OutboxRepository
	sink   Sink
	opts   Options
	logger observability.Logger
	now    func() time.Time
}

func NewPublisher(repo domain.OutboxRepository, sink Sink, opts Options, logger observability.Logger) *Publisher {
	opts.defaults()
	return &Publisher{repo: repo, sink: sink, opts: opts, logger: logger, now: time.Now}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.WithField("interval", p.opts.Interval.String()).Info("outbox publisher started")
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox publisher stopped")
			return
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.WithError(err).Error("outbox relay failed")
			}
		}
	}
}

// RunOnce relays one batch and returns how many events were published. It
// stops at the first event that cannot be published so ordering holds, until
// that event has failed MaxRuns runs; it is then marked dead and skipped.
func (p *Publisher) RunOnce(ctx context.Context) (int, error) {
	events, err := p.repo.PendingOutbox(ctx, p.opts.BatchSize)
	if err != nil {
		return 0, errors.Wrap(err, "load outbox")
	}
	if len(events) == 0 {
		observability.OutboxLag.Set(0)
		return 0, nil
	}
	observability.OutboxLag.Set(p.now().Sub(events[0].CreatedAt).Seconds())

	published := 0
	for _, ev := range events {
		if err := p.publish(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return published, ctx.Err()
			}
			dead := ev.Attempts+1 >= p.opts.MaxRuns
			if rerr := p.repo.RecordOutboxFailure(ctx, ev.ID, dead); rerr != nil {
				return published, errors.Wrapf(rerr, "record failure of %s", ev.DedupeKey)
			}
			if dead {
				observability.OutboxDead.Inc()
				p.logger.WithError(err).WithFields(map[string]interface{}{
					"event":    ev.EventType,
					"key":      ev.DedupeKey,
					"attempts": ev.Attempts + 1,
				}).Error("outbox event dead, skipping")
				continue
			}
			return published, errors.Wrapf(err, "publish %s", ev.DedupeKey)
		}
		if err := p.repo.MarkPublished(ctx, ev.ID, p.now().UTC()); err != nil {
			return published, errors.Wrapf(err, "mark %s", ev.DedupeKey)
		}
		published++
	}
	p.logger.WithField("count", published).Debug("outbox batch relayed")
	return published, nil
}

func (p *Publisher) publish(ctx context.Context, ev domain.OutboxEvent) error {
	var err error
	for attempt := 0; attempt < p.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			observability.RabbitPublishRetries.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.opts.Backoff << (attempt - 1)):
			}
		}
		if err = p.sink.PublishJSON(ctx, ev.EventType, ev.DedupeKey, ev.Payload); err == nil {
			return nil
		}
		p.logger.WithError(err).WithField("event", ev.EventType).Warn("publish attempt failed")
	}
	return err
}
