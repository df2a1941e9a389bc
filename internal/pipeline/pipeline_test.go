package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
	"github.com/couchcryptid/burn-severity-etl/internal/observability"
	"github.com/couchcryptid/burn-severity-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	events []domain.RawEvent
	served atomic.Bool
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	if m.served.Swap(true) {
		// Block until context cancellation to simulate waiting for messages.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if len(m.events) > batchSize {
		return m.events[:batchSize], nil
	}
	return m.events, nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) all() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := domain.RawEvent{Key: []byte("req-1"), Value: []byte(`{"some":"payload"}`)}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	loaded := ldr.all()
	require.Len(t, loaded, 1)
	assert.Equal(t, raw.Value, loaded[0].Value)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no events
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsMessage(t *testing.T) {
	committed := false
	raw := domain.RawEvent{
		Key:   []byte("req-2"),
		Value: []byte(`not json`),
		Commit: func(_ context.Context) error {
			committed = true
			return nil
		},
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	tfm := &mockTransformer{err: errors.New("bad request")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	assert.Empty(t, ldr.all())
	assert.True(t, committed, "poison pills must be committed so the group moves past them")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var order []string
	raw := domain.RawEvent{
		Key:   []byte("req-3"),
		Value: []byte(`{}`),
		Topic: "burn-analysis-requests",
		Commit: func(_ context.Context) error {
			order = append(order, "commit")
			return nil
		},
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	require.Len(t, ldr.all(), 1)
	assert.Equal(t, []string{"commit"}, order)
}

func TestPipeline_Run_MixedBatch(t *testing.T) {
	good := domain.RawEvent{Key: []byte("good"), Value: []byte(`{}`)}
	bad := domain.RawEvent{Key: []byte("bad"), Value: []byte(`boom`)}

	ext := &mockExtractor{events: []domain.RawEvent{good, bad, good}}
	tfm := &selectiveTransformer{failKey: "bad"}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Len(t, ldr.all(), 2, "failures must not take down the rest of the batch")
}

type selectiveTransformer struct {
	failKey string
}

func (s *selectiveTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if string(raw.Key) == s.failKey {
		return domain.OutputEvent{}, errors.New("rejected")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}
