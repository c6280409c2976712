package domain

import "math"

// Windows holds the five day-of-year index sets derived from a pixel's
// growing-season calendar. Each set lists 1-based days, in season order;
// sets that cross the year boundary wrap past day 365 back to day 1.
type Windows struct {
	Season   []int // planting through harvest
	Planting []int // 11 days centered on the planting day
	Before   []int // planting day until 5 days before anthesis
	During   []int // 11 days centered on anthesis
	After    []int // 5 days after anthesis until harvest
}

// ComputeWindows derives the five index windows from a season calendar.
// Anthesis is approximated as the season midpoint.
//
// Days past 365 wrap by subtracting 365; days below 1 are never wrapped
// upward. The asymmetry is deliberate: planting days in the trained
// calendars never sit close enough to day 1 for an under-wrap to occur.
func ComputeWindows(cal SeasonCalendar) Windows {
	p := cal.PlantingDay
	h := cal.HarvestDay()
	mid := int(math.Round(float64(p) + float64(cal.SeasonLength)/2))

	var season []int
	if h >= p {
		season = daySpan(p, h)
	} else {
		season = append(daySpan(p, DaysPerYear), daySpan(1, h)...)
	}

	return Windows{
		Season:   season,
		Planting: daySpan(p-5, p+5),
		Before:   daySpan(p, mid-5),
		During:   daySpan(mid-5, mid+5),
		After:    daySpan(mid+5, p+cal.SeasonLength),
	}
}

// daySpan enumerates the inclusive range [start,end] in unwrapped day
// space, wrapping each element into [1,365] by subtracting 365 when it
// exceeds 365.
func daySpan(start, end int) []int {
	if end < start {
		return nil
	}
	days := make([]int, 0, end-start+1)
	for d := start; d <= end; d++ {
		w := d
		if w > DaysPerYear {
			w -= DaysPerYear
		}
		days = append(days, w)
	}
	return days
}
