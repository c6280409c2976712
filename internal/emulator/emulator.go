// Package emulator orchestrates one yield-anomaly evaluation: request
// validation, pixel resolution, parameter and climate fetches, and the
// domain computation pipeline.
package emulator

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/agroclim/yield-emulator/internal/domain"
)

// Emulator evaluates yield anomaly requests against an injected data
// source. It is stateless across calls; concurrent evaluations are safe
// as long as the data source is.
type Emulator struct {
	source domain.DataSource
	logger *slog.Logger
}

// New creates an Emulator backed by the given data source.
func New(source domain.DataSource, logger *slog.Logger) *Emulator {
	return &Emulator{source: source, logger: logger}
}

// Evaluate runs the full pipeline for one request and returns the yield
// result. Failures abort the evaluation; no partial results are returned.
func (e *Emulator) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.YieldResult, error) {
	if err := e.validateClimateSource(ctx, req); err != nil {
		return domain.YieldResult{}, err
	}

	pixel, nLon, err := e.resolvePixel(ctx, req)
	if err != nil {
		return domain.YieldResult{}, err
	}

	params, err := e.fetchParameters(ctx, req.Crop, pixel, nLon)
	if err != nil {
		return domain.YieldResult{}, err
	}

	daily, err := e.fetchDailySeries(ctx, req, pixel, nLon)
	if err != nil {
		return domain.YieldResult{}, err
	}

	windows := domain.ComputeWindows(params.Calendar)
	indices, err := domain.ExtractIndices(daily, windows, params.ActiveIndicators)
	if err != nil {
		return domain.YieldResult{}, err
	}

	anomaly, err := domain.EvaluatePolynomial(indices, params.ActiveIndicators, params.Coefficients)
	if err != nil {
		return domain.YieldResult{}, err
	}

	e.logger.Debug("evaluation complete",
		"crop", req.Crop,
		"lat", req.Lat,
		"lon", req.Lon,
		"lat_index", pixel.LatIndex,
		"lon_index", pixel.LonIndex,
		"anomaly", anomaly,
	)

	return domain.NewYieldResult(req, anomaly), nil
}

// validateClimateSource enforces the exactly-one-of rule between explicit
// daily arrays and a reference-dataset year, and checks the year against
// the dataset's supported range.
func (e *Emulator) validateClimateSource(ctx context.Context, req domain.EvaluationRequest) error {
	hasSeries := req.HasExplicitSeries()
	hasYear := req.Year != nil

	switch {
	case hasSeries && hasYear:
		return fmt.Errorf("%w: both explicit climate arrays and a reference year were supplied", domain.ErrConfiguration)
	case !hasSeries && !hasYear:
		return fmt.Errorf("%w: neither explicit climate arrays nor a reference year was supplied", domain.ErrConfiguration)
	case hasSeries && !req.HasCompleteSeries():
		return fmt.Errorf("%w: explicit climate input requires all of tasmax, tasmin, and pr", domain.ErrConfiguration)
	}

	if hasYear {
		first, last, err := e.source.YearRange(ctx)
		if err != nil {
			return fmt.Errorf("fetch supported year range: %w", err)
		}
		if *req.Year < first || *req.Year > last {
			return fmt.Errorf("%w: year %d outside supported range [%d,%d]", domain.ErrConfiguration, *req.Year, first, last)
		}
	}
	return nil
}

// resolvePixel maps the request's location to grid indices, returning the
// pixel and the longitude axis length used for flat indexing.
func (e *Emulator) resolvePixel(ctx context.Context, req domain.EvaluationRequest) (domain.Pixel, int, error) {
	lats, err := e.source.GridLatitudes(ctx)
	if err != nil {
		return domain.Pixel{}, 0, fmt.Errorf("fetch grid latitudes: %w", err)
	}
	lons, err := e.source.GridLongitudes(ctx)
	if err != nil {
		return domain.Pixel{}, 0, fmt.Errorf("fetch grid longitudes: %w", err)
	}

	lon := domain.NormalizeLongitude(req.Lon)
	pixel, err := domain.ResolvePixel(req.Lat, lon, lats, lons)
	if err != nil {
		return domain.Pixel{}, 0, err
	}
	return pixel, len(lons), nil
}

// fetchParameters loads and validates the pixel's trained regression
// parameters. A missing planting day marks an ocean/no-data cell.
func (e *Emulator) fetchParameters(ctx context.Context, crop string, pixel domain.Pixel, nLon int) (domain.PixelParameters, error) {
	idx := pixel.FlatIndex(nLon)

	plantingDays, err := e.source.PlantingDay(ctx, crop)
	if err != nil {
		return domain.PixelParameters{}, fmt.Errorf("fetch planting day: %w", err)
	}
	if idx < 0 || idx >= len(plantingDays) || domain.IsMissing(plantingDays[idx]) {
		return domain.PixelParameters{}, domain.ErrNotLand
	}

	seasonLengths, err := e.source.SeasonLength(ctx, crop)
	if err != nil {
		return domain.PixelParameters{}, fmt.Errorf("fetch season length: %w", err)
	}
	if idx >= len(seasonLengths) || domain.IsMissing(seasonLengths[idx]) {
		return domain.PixelParameters{}, domain.ErrNotLand
	}

	coefficients, err := e.source.Coefficients(ctx, crop)
	if err != nil {
		return domain.PixelParameters{}, fmt.Errorf("fetch coefficients: %w", err)
	}
	indicators, err := e.source.Indicators(ctx, crop)
	if err != nil {
		return domain.PixelParameters{}, fmt.Errorf("fetch indicators: %w", err)
	}
	if idx >= len(coefficients) || idx >= len(indicators) {
		return domain.PixelParameters{}, fmt.Errorf("%w: pixel %d outside parameter tables", domain.ErrInvalidInput, idx)
	}

	params := domain.PixelParameters{
		ActiveIndicators: indicators[idx],
		Coefficients:     coefficients[idx],
		Calendar: domain.SeasonCalendar{
			PlantingDay:  int(math.Round(plantingDays[idx])),
			SeasonLength: int(math.Round(seasonLengths[idx])),
		},
	}
	if err := params.Validate(); err != nil {
		return domain.PixelParameters{}, err
	}
	return params, nil
}

// fetchDailySeries returns the climate year to evaluate: the request's
// explicit arrays, or the pixel's row of the reference dataset.
func (e *Emulator) fetchDailySeries(ctx context.Context, req domain.EvaluationRequest, pixel domain.Pixel, nLon int) (domain.DailySeries, error) {
	if req.HasExplicitSeries() {
		return domain.NewDailySeries(req.Tasmax, req.Tasmin, req.Pr)
	}

	idx := pixel.FlatIndex(nLon)
	fields := make(map[string][]float64, 3)
	for _, variable := range []string{domain.VarTasmax, domain.VarTasmin, domain.VarPr} {
		rows, err := e.source.ReferenceDailySeries(ctx, variable, *req.Year)
		if err != nil {
			return domain.DailySeries{}, fmt.Errorf("fetch %s year %d: %w", variable, *req.Year, err)
		}
		if idx >= len(rows) {
			return domain.DailySeries{}, fmt.Errorf("%w: pixel %d outside %s field", domain.ErrInvalidInput, idx, variable)
		}
		fields[variable] = rows[idx]
	}
	return domain.NewDailySeries(fields[domain.VarTasmax], fields[domain.VarTasmin], fields[domain.VarPr])
}
