// Package desc provides the small set of descriptive statistics the slope
// selection methods rely on.
package desc

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean using Kahan summation for stability.
// Returns 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	var sum, c float64
	for _, v := range data {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(data))
}

// Quantile returns the p-quantile (0 <= p <= 1) of the data using linear
// interpolation between order statistics (R's default, type 7):
//
//	h = (n-1)*p
//	Q = x[floor(h)] + (h - floor(h)) * (x[floor(h)+1] - x[floor(h)])
//
// Returns NaN for an empty slice. The input is not modified.
func Quantile(data []float64, p float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}

	if n == 1 {
		return data[0]
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}

	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	frac := h - float64(lo)

	if lo+1 >= n {
		return sorted[n-1]
	}

	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Percentile is Quantile with p expressed in percent (0..100).
func Percentile(data []float64, percent float64) float64 {
	return Quantile(data, percent/100)
}
