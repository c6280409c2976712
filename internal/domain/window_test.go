package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonCalendar_HarvestDay(t *testing.T) {
	tests := []struct {
		name     string
		calendar SeasonCalendar
		expected int
		wraps    bool
	}{
		{"mid-year season", SeasonCalendar{PlantingDay: 100, SeasonLength: 120}, 220, false},
		{"ends exactly on day 365", SeasonCalendar{PlantingDay: 300, SeasonLength: 65}, 365, false},
		{"wraps by one day", SeasonCalendar{PlantingDay: 300, SeasonLength: 66}, 1, true},
		{"wraps into new year", SeasonCalendar{PlantingDay: 360, SeasonLength: 10}, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.calendar.HarvestDay())
			assert.Equal(t, tt.wraps, tt.calendar.Wraps())
		})
	}
}

func TestComputeWindows_Season(t *testing.T) {
	t.Run("contiguous season spans planting to harvest", func(t *testing.T) {
		w := ComputeWindows(SeasonCalendar{PlantingDay: 100, SeasonLength: 120})

		require.Len(t, w.Season, 121)
		assert.Equal(t, 100, w.Season[0])
		assert.Equal(t, 220, w.Season[len(w.Season)-1])
	})

	t.Run("wrapped season concatenates across the year boundary", func(t *testing.T) {
		w := ComputeWindows(SeasonCalendar{PlantingDay: 360, SeasonLength: 10})

		expected := []int{360, 361, 362, 363, 364, 365, 1, 2, 3, 4, 5}
		assert.Equal(t, expected, w.Season)
	})
}

func TestComputeWindows_Planting(t *testing.T) {
	t.Run("centered on planting day", func(t *testing.T) {
		w := ComputeWindows(SeasonCalendar{PlantingDay: 100, SeasonLength: 120})

		expected := []int{95, 96, 97, 98, 99, 100, 101, 102, 103, 104, 105}
		assert.Equal(t, expected, w.Planting)
	})

	t.Run("wraps past day 365", func(t *testing.T) {
		w := ComputeWindows(SeasonCalendar{PlantingDay: 362, SeasonLength: 100})

		expected := []int{357, 358, 359, 360, 361, 362, 363, 364, 365, 1, 2}
		assert.Equal(t, expected, w.Planting)
	})
}

func TestComputeWindows_AnthesisWindows(t *testing.T) {
	// Planting day 100, length 120: anthesis midpoint at day 160.
	w := ComputeWindows(SeasonCalendar{PlantingDay: 100, SeasonLength: 120})

	t.Run("before runs from planting to five days short of anthesis", func(t *testing.T) {
		require.NotEmpty(t, w.Before)
		assert.Equal(t, 100, w.Before[0])
		assert.Equal(t, 155, w.Before[len(w.Before)-1])
		assert.Len(t, w.Before, 56)
	})

	t.Run("during is eleven days centered on anthesis", func(t *testing.T) {
		expected := []int{155, 156, 157, 158, 159, 160, 161, 162, 163, 164, 165}
		assert.Equal(t, expected, w.During)
	})

	t.Run("after runs from five days past anthesis to harvest", func(t *testing.T) {
		require.NotEmpty(t, w.After)
		assert.Equal(t, 165, w.After[0])
		assert.Equal(t, 220, w.After[len(w.After)-1])
	})

	t.Run("odd season length rounds the midpoint", func(t *testing.T) {
		// 100 + 121/2 = 160.5, rounds to 161.
		odd := ComputeWindows(SeasonCalendar{PlantingDay: 100, SeasonLength: 121})
		assert.Equal(t, 156, odd.During[0])
		assert.Equal(t, 166, odd.During[len(odd.During)-1])
	})
}

func TestComputeWindows_NoWrapBelowDayOne(t *testing.T) {
	// Days below 1 are left as-is: the wrap rule only subtracts 365 from
	// values above 365. Validated calendars never produce this case.
	w := ComputeWindows(SeasonCalendar{PlantingDay: 3, SeasonLength: 120})

	assert.Equal(t, -2, w.Planting[0])
	assert.Equal(t, 8, w.Planting[len(w.Planting)-1])
}
