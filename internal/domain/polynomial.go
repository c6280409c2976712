package domain

import "fmt"

// CoefficientCount is the number of terms in the yield polynomial:
// 1 intercept + 5 linear + 10 pairwise + 5 squared.
const CoefficientCount = 21

// EvaluatePolynomial combines the five selected indicator values with the
// pixel's trained coefficients and returns the emulated yield anomaly.
//
// The coefficient order is fixed by the training procedure and must not
// change: intercept; v1..v5; the ten unordered pairs v1v2, v1v3, v1v4,
// v1v5, v2v3, v2v4, v2v5, v3v4, v3v5, v4v5; then v1^2..v5^2. The order of
// active determines which indicator is v1, v2, and so on.
func EvaluatePolynomial(indices IndexTable, active []int, coefficients []float64) (float64, error) {
	if len(active) != ActiveIndicatorCount {
		return 0, fmt.Errorf("%w: %d active indicators, want %d", ErrInvalidInput, len(active), ActiveIndicatorCount)
	}
	if len(coefficients) != CoefficientCount {
		return 0, fmt.Errorf("%w: %d coefficients, want %d", ErrInvalidInput, len(coefficients), CoefficientCount)
	}

	var v [ActiveIndicatorCount]float64
	for i, id := range active {
		value, ok := indices[id]
		if !ok {
			return 0, fmt.Errorf("%w: indicator %d not computed", ErrInvalidInput, id)
		}
		v[i] = value
	}

	y := coefficients[0]
	for i := 0; i < ActiveIndicatorCount; i++ {
		y += coefficients[1+i] * v[i]
	}
	k := 1 + ActiveIndicatorCount
	for i := 0; i < ActiveIndicatorCount; i++ {
		for j := i + 1; j < ActiveIndicatorCount; j++ {
			y += coefficients[k] * v[i] * v[j]
			k++
		}
	}
	for i := 0; i < ActiveIndicatorCount; i++ {
		y += coefficients[k+i] * v[i] * v[i]
	}
	return y, nil
}
