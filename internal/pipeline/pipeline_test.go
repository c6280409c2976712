package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroclim/yield-emulator/internal/domain"
	"github.com/agroclim/yield-emulator/internal/emulator"
	"github.com/agroclim/yield-emulator/internal/observability"
	"github.com/agroclim/yield-emulator/internal/pipeline"
)

// --- mocks ---

type mockBatchExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockBatchExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	failKeys map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.failKeys[string(raw.Key)] {
		return domain.OutputEvent{}, errors.New("bad request")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockBatchLoader struct {
	mu       sync.Mutex
	loaded   []domain.OutputEvent
	failures int
	onLoad   func()
}

func (m *mockBatchLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("sink unavailable")
	}
	m.loaded = append(m.loaded, events...)
	if m.onLoad != nil {
		m.onLoad()
	}
	return nil
}

func (m *mockBatchLoader) loadedEvents() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func rawRequest(key string) domain.RawEvent {
	return domain.RawEvent{
		Key:   []byte(key),
		Value: []byte(`{"crop":"maize","lat":40.25,"lon":20.25,"year":2003}`),
	}
}

// --- pipeline tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockBatchExtractor{batches: [][]domain.RawEvent{
		{rawRequest("r1"), rawRequest("r2")},
	}}
	tfm := &mockTransformer{}
	ldr := &mockBatchLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, tfm, ldr, testLogger(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loadedEvents(), 2)
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RequestsConsumed))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ResultsProduced))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockBatchExtractor{} // no batches, will block
	p := pipeline.New(ext, &mockTransformer{}, &mockBatchLoader{}, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsRequest(t *testing.T) {
	var committedBad atomic.Bool
	bad := rawRequest("bad")
	bad.Commit = func(context.Context) error {
		committedBad.Store(true)
		return nil
	}

	ext := &mockBatchExtractor{batches: [][]domain.RawEvent{
		{bad, rawRequest("good")},
	}}
	tfm := &mockTransformer{failKeys: map[string]bool{"bad": true}}
	ldr := &mockBatchLoader{}

	p := pipeline.New(ext, tfm, ldr, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	loaded := ldr.loadedEvents()
	require.Len(t, loaded, 1)
	assert.Equal(t, []byte("good"), loaded[0].Key)
	// Failed requests are committed anyway so they never block the partition.
	assert.True(t, committedBad.Load())
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var mu sync.Mutex
	var order []string

	raw := rawRequest("r1")
	raw.Commit = func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "commit")
		return nil
	}

	ext := &mockBatchExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockBatchLoader{}
	ldr.onLoad = func() {
		order = append(order, "load")
	}

	p := pipeline.New(ext, &mockTransformer{}, ldr, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"load", "commit"}, order)
}

func TestPipeline_Run_RetriesAfterLoadFailure(t *testing.T) {
	ext := &mockBatchExtractor{batches: [][]domain.RawEvent{
		{rawRequest("r1")},
		{rawRequest("r1")},
	}}
	ldr := &mockBatchLoader{failures: 1}

	p := pipeline.New(ext, &mockTransformer{}, ldr, testLogger(), newTestMetrics(), 50)

	// Long enough for one 200ms backoff cycle plus the retry.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loadedEvents(), 1)
}

// --- transformer tests ---

// fixedSource is a single-pixel DataSource whose intercept-only
// coefficients make every evaluation return the same anomaly.
type fixedSource struct {
	mu        sync.Mutex
	cropsSeen []string
}

func (s *fixedSource) recordCrop(crop string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cropsSeen = append(s.cropsSeen, crop)
}

func (s *fixedSource) GridLatitudes(context.Context) ([]float64, error) {
	return []float64{40.25}, nil
}

func (s *fixedSource) GridLongitudes(context.Context) ([]float64, error) {
	return []float64{20.25}, nil
}

func (s *fixedSource) Coefficients(_ context.Context, crop string) ([][]float64, error) {
	s.recordCrop(crop)
	coeffs := make([]float64, domain.CoefficientCount)
	coeffs[0] = 0.5
	return [][]float64{coeffs}, nil
}

func (s *fixedSource) Indicators(context.Context, string) ([][]int, error) {
	return [][]int{{1, 2, 3, 4, 5}}, nil
}

func (s *fixedSource) PlantingDay(context.Context, string) ([]float64, error) {
	return []float64{100}, nil
}

func (s *fixedSource) SeasonLength(context.Context, string) ([]float64, error) {
	return []float64{120}, nil
}

func (s *fixedSource) ReferenceDailySeries(context.Context, string, int) ([][]float64, error) {
	days := make([]float64, domain.DaysPerYear)
	for i := range days {
		days[i] = 5
	}
	return [][]float64{days}, nil
}

func (s *fixedSource) YearRange(context.Context) (int, int, error) {
	return 1983, 2016, nil
}

var _ domain.DataSource = (*fixedSource)(nil)

func TestYieldTransformer_Transform(t *testing.T) {
	source := &fixedSource{}
	em := emulator.New(source, testLogger())
	metrics := newTestMetrics()
	tfm := pipeline.NewTransformer(em, "maize", testLogger(), metrics)

	out, err := tfm.Transform(context.Background(), rawRequest("r1"))
	require.NoError(t, err)

	var result domain.YieldResult
	require.NoError(t, json.Unmarshal(out.Value, &result))
	assert.Equal(t, result.ID, string(out.Key))
	assert.InDelta(t, 0.5, result.Anomaly, 1e-9)
	assert.False(t, math.IsNaN(result.Anomaly))
	assert.Equal(t, "maize", out.Headers["crop"])
	assert.NotEmpty(t, out.Headers["processed_at"])

	type resultSummary struct {
		Crop string
		Lat  float64
		Lon  float64
		Year int
	}
	require.NotNil(t, result.Year)
	expected := resultSummary{Crop: "maize", Lat: 40.25, Lon: 20.25, Year: 2003}
	actual := resultSummary{Crop: result.Crop, Lat: result.Lat, Lon: result.Lon, Year: *result.Year}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestYieldTransformer_DefaultCropFallback(t *testing.T) {
	source := &fixedSource{}
	em := emulator.New(source, testLogger())
	tfm := pipeline.NewTransformer(em, "wheat", testLogger(), newTestMetrics())

	raw := domain.RawEvent{Value: []byte(`{"lat":40.25,"lon":20.25,"year":2003}`)}
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "wheat", out.Headers["crop"])
	assert.Contains(t, source.cropsSeen, "wheat")
}

func TestYieldTransformer_ParseError(t *testing.T) {
	metrics := newTestMetrics()
	tfm := pipeline.NewTransformer(nil, "maize", testLogger(), metrics)

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EvaluationErrors.WithLabelValues("parse")))
}

func TestYieldTransformer_ErrorCategories(t *testing.T) {
	metrics := newTestMetrics()
	source := &fixedSource{}
	em := emulator.New(source, testLogger())
	tfm := pipeline.NewTransformer(em, "maize", testLogger(), metrics)

	// Both a year and explicit arrays: configuration error.
	raw := domain.RawEvent{Value: []byte(`{"crop":"maize","lat":40.25,"lon":20.25,"year":2003,"tasmax":[1],"tasmin":[1],"pr":[1]}`)}
	_, err := tfm.Transform(context.Background(), raw)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EvaluationErrors.WithLabelValues("configuration")))
}
