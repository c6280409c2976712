package domain

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Indicator table dimensions.
const (
	IndicatorCount       = 40 // candidate indicators per pixel
	ActiveIndicatorCount = 5  // indicators selected by the trained model
)

// Statistic thresholds, fixed by the trained regression.
const (
	hotDayThreshold      = 30.0 // tasmax, degrees C
	extremeHeatThreshold = 35.0 // tasmax, degrees C
	frostThreshold       = 0.0  // tasmin, degrees C
	heavyRainThreshold   = 10.0 // pr, mm/day
	dryDayThreshold      = 0.01 // pr, mm/day
)

// windowKind names one of the five season windows.
type windowKind int

const (
	windowSeason windowKind = iota
	windowPlanting
	windowBefore
	windowDuring
	windowAfter
)

// statKind names one of the eight per-window statistics.
type statKind int

const (
	statMeanTemp        statKind = iota // mean of (tasmax+tasmin)/2
	statMeanPrecip                      // mean of pr
	statHotDays                         // days tasmax > 30
	statExtremeHeatDays                 // days tasmax > 35
	statFrostDays                       // days tasmin < 0
	statHeavyRainDays                   // days pr > 10
	statDryDays                         // days pr < 0.01
	statDrySpell                        // longest run of days pr < 0.01
)

// indicatorDef binds one indicator id to its window and statistic.
type indicatorDef struct {
	window windowKind
	stat   statKind
}

// indicatorTable maps indicator ids 1..40 to their definitions. The layout
// is eight statistics per window, windows ordered season, planting, before,
// during, after: id 1 is the season mean temperature, id 3 the count of
// season days with tasmax above 30, id 40 the longest dry spell after
// anthesis. Index 0 is unused so ids index directly.
var indicatorTable = buildIndicatorTable()

func buildIndicatorTable() [IndicatorCount + 1]indicatorDef {
	var table [IndicatorCount + 1]indicatorDef
	windows := []windowKind{windowSeason, windowPlanting, windowBefore, windowDuring, windowAfter}
	stats := []statKind{
		statMeanTemp, statMeanPrecip, statHotDays, statExtremeHeatDays,
		statFrostDays, statHeavyRainDays, statDryDays, statDrySpell,
	}
	id := 1
	for _, w := range windows {
		for _, s := range stats {
			table[id] = indicatorDef{window: w, stat: s}
			id++
		}
	}
	return table
}

// IndexTable maps indicator ids to their computed values. Sparse: only the
// requested ids are present.
type IndexTable map[int]float64

// ExtractIndices computes the requested climate indicators from one pixel's
// daily series restricted to its season windows. Ids outside [1,40] fail
// with ErrInvalidInput; windows referencing out-of-range days cannot occur
// when the calendar has been validated.
func ExtractIndices(daily DailySeries, w Windows, ids []int) (IndexTable, error) {
	table := make(IndexTable, len(ids))
	for _, id := range ids {
		if id < 1 || id > IndicatorCount {
			return nil, fmt.Errorf("%w: indicator id %d outside [1,%d]", ErrInvalidInput, id, IndicatorCount)
		}
		if _, done := table[id]; done {
			continue
		}
		def := indicatorTable[id]
		v, err := computeStatistic(daily, w.days(def.window), def.stat)
		if err != nil {
			return nil, fmt.Errorf("indicator %d: %w", id, err)
		}
		table[id] = v
	}
	return table, nil
}

// days returns the index set for a window kind.
func (w Windows) days(kind windowKind) []int {
	switch kind {
	case windowPlanting:
		return w.Planting
	case windowBefore:
		return w.Before
	case windowDuring:
		return w.During
	case windowAfter:
		return w.After
	default:
		return w.Season
	}
}

func computeStatistic(daily DailySeries, days []int, kind statKind) (float64, error) {
	if len(days) == 0 {
		return 0, fmt.Errorf("%w: empty window", ErrInvalidInput)
	}

	switch kind {
	case statMeanTemp:
		return stat.Mean(gather(days, daily.MeanTemp), nil), nil
	case statMeanPrecip:
		return stat.Mean(gather(days, daily.Precip), nil), nil
	case statHotDays:
		return countDays(days, daily.MaxTemp, func(v float64) bool { return v > hotDayThreshold }), nil
	case statExtremeHeatDays:
		return countDays(days, daily.MaxTemp, func(v float64) bool { return v > extremeHeatThreshold }), nil
	case statFrostDays:
		return countDays(days, daily.MinTemp, func(v float64) bool { return v < frostThreshold }), nil
	case statHeavyRainDays:
		return countDays(days, daily.Precip, func(v float64) bool { return v > heavyRainThreshold }), nil
	case statDryDays:
		return countDays(days, daily.Precip, func(v float64) bool { return v < dryDayThreshold }), nil
	case statDrySpell:
		run, err := LongestRun(gather(days, daily.Precip), func(v float64) bool { return v < dryDayThreshold })
		if err != nil {
			return 0, err
		}
		return float64(run), nil
	default:
		return 0, fmt.Errorf("%w: unknown statistic %d", ErrInvalidInput, kind)
	}
}

// gather extracts the per-day values of a window, preserving season order.
func gather(days []int, at func(day int) float64) []float64 {
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = at(d)
	}
	return values
}

func countDays(days []int, at func(day int) float64, pred func(float64) bool) float64 {
	n := 0
	for _, d := range days {
		if pred(at(d)) {
			n++
		}
	}
	return float64(n)
}
