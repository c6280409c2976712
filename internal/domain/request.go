package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the result topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// EvaluationRequest asks for one pixel-year yield anomaly. Exactly one
// climate source must be supplied: either a reference-dataset year, or all
// three explicit daily arrays.
type EvaluationRequest struct {
	Crop string  `json:"crop"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	// Year selects a reference-dataset year.
	Year *int `json:"year,omitempty"`

	// Explicit daily climate arrays, 365 values each.
	Tasmax []float64 `json:"tasmax,omitempty"`
	Tasmin []float64 `json:"tasmin,omitempty"`
	Pr     []float64 `json:"pr,omitempty"`
}

// ParseEvaluationRequest deserializes a RawEvent's value into an
// EvaluationRequest.
func ParseEvaluationRequest(raw RawEvent) (EvaluationRequest, error) {
	var req EvaluationRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return EvaluationRequest{}, fmt.Errorf("parse evaluation request: %w", err)
	}
	return req, nil
}

// HasExplicitSeries reports whether any explicit daily array was supplied.
// Partial sets count: supplying only some of the three arrays is a
// configuration error the emulator surfaces during validation.
func (r EvaluationRequest) HasExplicitSeries() bool {
	return len(r.Tasmax) > 0 || len(r.Tasmin) > 0 || len(r.Pr) > 0
}

// HasCompleteSeries reports whether all three explicit daily arrays were
// supplied.
func (r EvaluationRequest) HasCompleteSeries() bool {
	return len(r.Tasmax) > 0 && len(r.Tasmin) > 0 && len(r.Pr) > 0
}

// YieldResult is the emulator's output for one request.
type YieldResult struct {
	ID          string    `json:"id"`
	Crop        string    `json:"crop"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Year        *int      `json:"year,omitempty"`
	Anomaly     float64   `json:"anomaly"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NewYieldResult assembles a result with a deterministic ID and the current
// clock time. Reprocessing the same request yields the same ID, enabling
// idempotent upserts downstream.
func NewYieldResult(req EvaluationRequest, anomaly float64) YieldResult {
	return YieldResult{
		ID:          resultID(req),
		Crop:        req.Crop,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Year:        req.Year,
		Anomaly:     anomaly,
		ProcessedAt: clock.Now(),
	}
}

// resultID hashes the request's key fields into a short stable identifier.
func resultID(req EvaluationRequest) string {
	year := 0
	if req.Year != nil {
		year = *req.Year
	}
	input := fmt.Sprintf("%s|%.4f|%.4f|%d", req.Crop, req.Lat, req.Lon, year)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if req.Crop == "" {
		return short
	}
	return req.Crop + "-" + short
}
