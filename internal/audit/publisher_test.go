package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

// --- mocks ---

type mockLoader struct {
	mu       sync.Mutex
	batches  [][]domain.CommandEvent
	failures int // fail this many calls before succeeding
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.CommandEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, append([]domain.CommandEvent(nil), events...))
	return nil
}

func (m *mockLoader) loaded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func (m *mockLoader) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func event(i int) domain.CommandEvent {
	return domain.CommandEvent{ID: fmt.Sprintf("inv-%d", i), Command: "meme", Outcome: domain.OutcomeSuccess}
}

func newTestPublisher(loader BatchLoader, batchSize int, interval time.Duration) (*Publisher, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPublisher(loader, batchSize, interval, logger, metrics), metrics
}

func runAsync(t *testing.T, p *Publisher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

// --- tests ---

func TestPublisher_FlushesFullBatch(t *testing.T) {
	loader := &mockLoader{}
	p, metrics := newTestPublisher(loader, 2, time.Hour)
	cancel, done := runAsync(t, p)

	p.Record(event(1))
	p.Record(event(2))

	require.Eventually(t, func() bool { return loader.loaded() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, loader.batchCount())

	cancel()
	require.NoError(t, <-done)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.AuditPublished), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.AuditRunning), 0)
}

func TestPublisher_FlushesOnTick(t *testing.T) {
	loader := &mockLoader{}
	p, _ := newTestPublisher(loader, 50, 500*time.Millisecond)
	fc := clockwork.NewFakeClock()
	p.clock = fc
	runAsync(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))

	p.Record(event(1))
	fc.Advance(500 * time.Millisecond)

	require.Eventually(t, func() bool { return loader.loaded() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestPublisher_FlushesRemainderOnShutdown(t *testing.T) {
	loader := &mockLoader{}
	p, metrics := newTestPublisher(loader, 10, time.Hour)

	for i := range 3 {
		p.Record(event(i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))

	assert.Equal(t, 3, loader.loaded())
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.AuditPublished), 0)
}

func TestPublisher_RetriesFailedBatch(t *testing.T) {
	loader := &mockLoader{failures: 1}
	p, metrics := newTestPublisher(loader, 1, 20*time.Millisecond)
	runAsync(t, p)

	p.Record(event(1))

	require.Eventually(t, func() bool { return loader.loaded() == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.AuditDropped), 0)
}

func TestPublisher_DropsWhenBufferFull(t *testing.T) {
	p, metrics := newTestPublisher(&mockLoader{}, 1, time.Hour)

	for i := range bufferBatches + 5 {
		p.Record(event(i))
	}

	assert.InDelta(t, 5, testutil.ToFloat64(metrics.AuditDropped), 0)
}

func TestPublisher_FinalFlushFailureCountsDrops(t *testing.T) {
	loader := &mockLoader{failures: 1}
	p, metrics := newTestPublisher(loader, 10, time.Hour)
	p.Record(event(1))
	p.Record(event(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))

	assert.Equal(t, 0, loader.loaded())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.AuditDropped), 0)
}

func TestBackoffSchedule(t *testing.T) {
	var got []time.Duration
	for b := initialBackoff; len(got) < 7; b = retry.NextBackoff(b, maxBackoff) {
		got = append(got, b)
	}
	assert.Equal(t, []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
		5 * time.Second,
	}, got)
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepWithContext(ctx, clockwork.NewFakeClock(), time.Hour))
	assert.True(t, sleepWithContext(context.Background(), clockwork.NewFakeClock(), 0))
}
