// Package audit batches command events and hands them to a loader, usually
// the Kafka audit writer. Recording never blocks command execution: when the
// buffer is full, events are dropped and counted.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

const (
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
	shutdownTimeout = 5 * time.Second

	// bufferBatches is how many full batches the channel and the retry
	// backlog may hold.
	bufferBatches = 20
)

// BatchLoader writes multiple command events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.CommandEvent) error
}

// Publisher buffers command events and flushes them in batches.
type Publisher struct {
	loader        BatchLoader
	events        chan domain.CommandEvent
	batchSize     int
	flushInterval time.Duration
	maxPending    int
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewPublisher creates a publisher that flushes when batchSize events are
// pending or every flushInterval, whichever comes first.
func NewPublisher(loader BatchLoader, batchSize int, flushInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		loader:        loader,
		events:        make(chan domain.CommandEvent, batchSize*bufferBatches),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		maxPending:    batchSize * bufferBatches,
		clock:         clockwork.NewRealClock(),
		logger:        logger,
		metrics:       metrics,
	}
}

// Record enqueues event without blocking.
func (p *Publisher) Record(event domain.CommandEvent) {
	select {
	case p.events <- event:
	default:
		p.metrics.AuditDropped.Inc()
		p.logger.Warn("audit buffer full, dropping event", "command", event.Command, "invocation_id", event.ID)
	}
}

// Run flushes batches until ctx is cancelled, then makes a final attempt to
// flush whatever is still buffered.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("audit publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.metrics.AuditRunning.Set(1)
	defer p.metrics.AuditRunning.Set(0)

	ticker := p.clock.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.CommandEvent, 0, p.batchSize)
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("audit publisher stopping", "reason", ctx.Err())
			p.shutdownFlush(ctx, p.drain(batch))
			return nil

		case event := <-p.events:
			batch = append(batch, event)
			if len(batch) >= p.batchSize {
				batch = p.flush(ctx, batch, &backoff)
			}

		case <-ticker.Chan():
			batch = p.drain(batch)
			if len(batch) > 0 {
				batch = p.flush(ctx, batch, &backoff)
			}
		}
	}
}

// drain moves every buffered event into batch without blocking.
func (p *Publisher) drain(batch []domain.CommandEvent) []domain.CommandEvent {
	for {
		select {
		case event := <-p.events:
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

// flush loads batch and returns what is left pending. A failed batch is kept
// for the next attempt after a backoff, trimmed to maxPending.
func (p *Publisher) flush(ctx context.Context, batch []domain.CommandEvent, backoff *time.Duration) []domain.CommandEvent {
	err := p.loader.LoadBatch(ctx, batch)
	if err == nil {
		p.metrics.AuditPublished.Add(float64(len(batch)))
		*backoff = initialBackoff
		return batch[:0]
	}
	if ctx.Err() != nil {
		return batch
	}

	p.logger.Error("audit batch failed", "error", err, "batch_size", len(batch))
	if over := len(batch) - p.maxPending; over > 0 {
		p.metrics.AuditDropped.Add(float64(over))
		batch = append(batch[:0], batch[over:]...)
	}
	if sleepWithContext(ctx, p.clock, *backoff) {
		*backoff = retry.NextBackoff(*backoff, maxBackoff)
	}
	return batch
}

func (p *Publisher) shutdownFlush(ctx context.Context, batch []domain.CommandEvent) {
	if len(batch) == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := p.loader.LoadBatch(flushCtx, batch); err != nil {
		p.metrics.AuditDropped.Add(float64(len(batch)))
		p.logger.Error("final audit flush failed", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.AuditPublished.Add(float64(len(batch)))
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
