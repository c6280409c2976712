package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agroclim/yield-emulator/internal/domain"
	"github.com/agroclim/yield-emulator/internal/emulator"
	"github.com/agroclim/yield-emulator/internal/observability"
)

// YieldTransformer implements Transformer by running each request through
// the emulator. A missing crop field falls back to the configured default.
type YieldTransformer struct {
	emulator    *emulator.Emulator
	defaultCrop string
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewTransformer creates a YieldTransformer.
func NewTransformer(em *emulator.Emulator, defaultCrop string, logger *slog.Logger, metrics *observability.Metrics) *YieldTransformer {
	return &YieldTransformer{
		emulator:    em,
		defaultCrop: defaultCrop,
		logger:      logger,
		metrics:     metrics,
	}
}

func (t *YieldTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseEvaluationRequest(raw)
	if err != nil {
		t.metrics.EvaluationErrors.WithLabelValues("parse").Inc()
		return domain.OutputEvent{}, err
	}
	if req.Crop == "" {
		req.Crop = t.defaultCrop
	}

	start := time.Now()
	result, err := t.emulator.Evaluate(ctx, req)
	if err != nil {
		t.metrics.EvaluationErrors.WithLabelValues(errorCategory(err)).Inc()
		return domain.OutputEvent{}, err
	}
	t.metrics.EvaluationDuration.Observe(time.Since(start).Seconds())

	return encodeResult(result)
}

// errorCategory maps an evaluation error onto its metrics label.
func errorCategory(err error) string {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	case errors.Is(err, domain.ErrNotLand):
		return "not_land"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "fetch"
	}
}

// encodeResult marshals a yield result into an output event keyed by the
// deterministic result ID.
func encodeResult(result domain.YieldResult) (domain.OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize yield result: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(result.ID),
		Value: data,
		Headers: map[string]string{
			"crop":         result.Crop,
			"processed_at": result.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
