package domain

import "fmt"

// LongestRun returns the length of the longest streak of consecutive values
// satisfying pred.
//
// The streak bookkeeping reproduces the trained emulator exactly: as a run
// extends, the count moves forward and the previous day's entry is zeroed,
// so only the final day of each streak holds its full length. The maximum
// over the streak sequence is therefore the longest run.
func LongestRun(values []float64, pred func(float64) bool) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: empty series for run-length count", ErrInvalidInput)
	}

	streak := make([]int, len(values))
	for i, v := range values {
		if !pred(v) {
			streak[i] = 0
			continue
		}
		if i == 0 {
			streak[i] = 1
			continue
		}
		streak[i] = streak[i-1] + 1
		streak[i-1] = 0
	}

	longest := 0
	for _, s := range streak {
		if s > longest {
			longest = s
		}
	}
	return longest, nil
}
