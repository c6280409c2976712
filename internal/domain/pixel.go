package domain

import (
	"fmt"
	"math"
)

// Pixel identifies one 0.5-degree grid cell by its latitude and longitude
// array indices.
type Pixel struct {
	LatIndex int
	LonIndex int
}

// FlatIndex converts a pixel to the row-major offset used by the per-pixel
// dataset arrays: latitude index times grid width plus longitude index.
func (p Pixel) FlatIndex(nLon int) int {
	return p.LatIndex*nLon + p.LonIndex
}

// NormalizeLongitude maps longitudes above 180 into the grid's convention
// by subtracting 180. This matches the trained emulator's rule verbatim;
// it is not a standard 360-degree wrap and is kept until the upstream
// datasets change convention.
func NormalizeLongitude(lon float64) float64 {
	if lon > 180 {
		return lon - 180
	}
	return lon
}

// NearestIndex returns the index of the grid value closest to target.
// Ties resolve to the lower index.
func NearestIndex(target float64, grid []float64) (int, error) {
	if len(grid) == 0 {
		return 0, fmt.Errorf("%w: empty grid axis", ErrInvalidInput)
	}
	best := 0
	bestDist := math.Abs(grid[0] - target)
	for i, v := range grid[1:] {
		if d := math.Abs(v - target); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best, nil
}

// ResolvePixel finds the grid cell nearest a latitude/longitude pair.
// The longitude must already be normalized by the caller.
func ResolvePixel(lat, lon float64, lats, lons []float64) (Pixel, error) {
	latIdx, err := NearestIndex(lat, lats)
	if err != nil {
		return Pixel{}, fmt.Errorf("latitude axis: %w", err)
	}
	lonIdx, err := NearestIndex(lon, lons)
	if err != nil {
		return Pixel{}, fmt.Errorf("longitude axis: %w", err)
	}
	return Pixel{LatIndex: latIdx, LonIndex: lonIdx}, nil
}
