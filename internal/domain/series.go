package domain

import (
	"fmt"
	"math"
)

// DaysPerYear is the fixed model year length. The reference climate fields
// use 365-day calendars with no leap days.
const DaysPerYear = 365

// Climate variable names as used by the reference datasets.
const (
	VarTasmax = "tasmax" // daily maximum near-surface air temperature, degrees C
	VarTasmin = "tasmin" // daily minimum near-surface air temperature, degrees C
	VarPr     = "pr"     // daily precipitation, mm/day
)

// DailySeries holds one model year of daily climate values for a single
// pixel: three parallel 365-element sequences. Day-of-year 1 maps to index 0.
type DailySeries struct {
	Tasmax []float64
	Tasmin []float64
	Pr     []float64
}

// NewDailySeries validates the three variable arrays and assembles a
// DailySeries. All three must be exactly DaysPerYear long.
func NewDailySeries(tasmax, tasmin, pr []float64) (DailySeries, error) {
	for _, v := range []struct {
		name   string
		values []float64
	}{
		{VarTasmax, tasmax},
		{VarTasmin, tasmin},
		{VarPr, pr},
	} {
		if len(v.values) != DaysPerYear {
			return DailySeries{}, fmt.Errorf("%w: %s has %d days, want %d", ErrInvalidInput, v.name, len(v.values), DaysPerYear)
		}
	}
	return DailySeries{Tasmax: tasmax, Tasmin: tasmin, Pr: pr}, nil
}

// MaxTemp returns tasmax for a 1-based day of year.
func (s DailySeries) MaxTemp(day int) float64 { return s.Tasmax[day-1] }

// MinTemp returns tasmin for a 1-based day of year.
func (s DailySeries) MinTemp(day int) float64 { return s.Tasmin[day-1] }

// Precip returns pr for a 1-based day of year.
func (s DailySeries) Precip(day int) float64 { return s.Pr[day-1] }

// MeanTemp returns the mean daily temperature (tasmax+tasmin)/2 for a
// 1-based day of year.
func (s DailySeries) MeanTemp(day int) float64 {
	return (s.Tasmax[day-1] + s.Tasmin[day-1]) / 2
}

// SeasonCalendar describes one pixel's growing season: the day of year the
// crop is planted and the number of days until harvest.
type SeasonCalendar struct {
	PlantingDay  int // day of year in [1,365]
	SeasonLength int // days, > 0
}

// HarvestDay is planting day plus season length, wrapped past the year
// boundary by subtracting 365 when the raw sum exceeds it.
func (c SeasonCalendar) HarvestDay() int {
	h := c.PlantingDay + c.SeasonLength
	if h > DaysPerYear {
		h -= DaysPerYear
	}
	return h
}

// Wraps reports whether the season crosses the year boundary.
func (c SeasonCalendar) Wraps() bool { return c.HarvestDay() < c.PlantingDay }

// Validate checks the calendar holds a plausible growing season.
func (c SeasonCalendar) Validate() error {
	if c.PlantingDay < 1 || c.PlantingDay > DaysPerYear {
		return fmt.Errorf("%w: planting day %d outside [1,%d]", ErrInvalidInput, c.PlantingDay, DaysPerYear)
	}
	if c.SeasonLength <= 0 {
		return fmt.Errorf("%w: season length %d must be positive", ErrInvalidInput, c.SeasonLength)
	}
	return nil
}

// PixelParameters are the pre-trained, externally supplied regression inputs
// for one pixel. Loaded once per evaluation and read-only thereafter.
type PixelParameters struct {
	// ActiveIndicators lists the five indicator ids (1..40) selected for
	// this pixel. Order matters: it fixes which polynomial coefficient
	// multiplies which indicator value.
	ActiveIndicators []int

	// Coefficients are the 21 terms of the yield polynomial, in the fixed
	// order intercept, linear x5, pairwise x10, squared x5.
	Coefficients []float64

	Calendar SeasonCalendar
}

// Validate checks the parameter shapes the regression requires.
func (p PixelParameters) Validate() error {
	if len(p.ActiveIndicators) != ActiveIndicatorCount {
		return fmt.Errorf("%w: %d active indicators, want %d", ErrInvalidInput, len(p.ActiveIndicators), ActiveIndicatorCount)
	}
	for _, id := range p.ActiveIndicators {
		if id < 1 || id > IndicatorCount {
			return fmt.Errorf("%w: indicator id %d outside [1,%d]", ErrInvalidInput, id, IndicatorCount)
		}
	}
	if len(p.Coefficients) != CoefficientCount {
		return fmt.Errorf("%w: %d coefficients, want %d", ErrInvalidInput, len(p.Coefficients), CoefficientCount)
	}
	return p.Calendar.Validate()
}

// IsMissing reports whether a per-pixel dataset value marks ocean/no-data.
func IsMissing(v float64) bool { return math.IsNaN(v) }
