package domain

import "context"

// DataSource provides the externally hosted grid axes, per-pixel regression
// parameters, and reference climate fields the emulator consumes.
//
// Every method returns a fully loaded in-memory array. Per-pixel arrays are
// indexed by Pixel.FlatIndex; missing cells (ocean/no-data) carry NaN.
// Fetch failures propagate to the caller unchanged: a failed fetch aborts
// the evaluation, with no retries at this layer.
type DataSource interface {
	// GridLatitudes and GridLongitudes return the sorted axis values of
	// the 0.5-degree grid.
	GridLatitudes(ctx context.Context) ([]float64, error)
	GridLongitudes(ctx context.Context) ([]float64, error)

	// Coefficients returns the 21 trained polynomial coefficients per pixel.
	Coefficients(ctx context.Context, crop string) ([][]float64, error)

	// Indicators returns the five selected indicator ids per pixel, in
	// coefficient order.
	Indicators(ctx context.Context, crop string) ([][]int, error)

	// PlantingDay and SeasonLength return the per-pixel growing-season
	// calendar fields. NaN marks ocean/no-data cells.
	PlantingDay(ctx context.Context, crop string) ([]float64, error)
	SeasonLength(ctx context.Context, crop string) ([]float64, error)

	// ReferenceDailySeries returns one year of a daily climate variable
	// (VarTasmax, VarTasmin, or VarPr) for every pixel.
	ReferenceDailySeries(ctx context.Context, variable string, year int) ([][]float64, error)

	// YearRange reports the closed interval of years the reference
	// dataset covers.
	YearRange(ctx context.Context) (first, last int, err error)
}
