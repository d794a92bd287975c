// Package ols provides ordinary least squares fitting for the slope
// estimation used throughout the respirometry pipeline.
package ols

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by fitting functions.
var (
	ErrLengthMismatch     = errors.New("ols: x and y must have the same length")
	ErrInsufficientData   = errors.New("ols: need at least two samples")
	ErrDegenerateAbscissa = errors.New("ols: x values are all identical")
)

// Fit holds the result of a simple linear regression y = Intercept + Slope*x.
type Fit struct {
	Slope     float64
	Intercept float64
	SE        float64 // standard error of the slope
	R2        float64 // coefficient of determination
	N         int     // number of samples used
}

// kahanSum returns the compensated sum of the slice.
func kahanSum(data []float64) float64 {
	var sum, c float64
	for _, v := range data {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum
}

// Regress fits y = a + b*x by ordinary least squares and returns the slope,
// intercept, slope standard error, and R-squared.
//
// The cross products are computed blockwise via vecmath and summed with
// Kahan compensation, so long second-by-second series do not lose precision
// to naive accumulation.
func Regress(x, y []float64) (Fit, error) {
	if len(x) != len(y) {
		return Fit{}, ErrLengthMismatch
	}

	n := len(x)
	if n < 2 {
		return Fit{}, ErrInsufficientData
	}

	nf := float64(n)
	meanX := kahanSum(x) / nf
	meanY := kahanSum(y) / nf

	// Center both series, then form the cross products with the shared
	// elementwise kernel.
	cx := make([]float64, n)
	cy := make([]float64, n)

	for i := range x {
		cx[i] = x[i] - meanX
		cy[i] = y[i] - meanY
	}

	prod := make([]float64, n)

	vecmath.MulBlock(prod, cx, cy)
	sxy := kahanSum(prod)

	vecmath.MulBlock(prod, cx, cx)
	sxx := kahanSum(prod)

	vecmath.MulBlock(prod, cy, cy)
	syy := kahanSum(prod)

	if sxx == 0 {
		return Fit{}, ErrDegenerateAbscissa
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	// Residual sum of squares via the analytic identity RSS = Syy - b*Sxy,
	// clamped at zero against rounding on exact fits.
	rss := syy - slope*sxy
	if rss < 0 {
		rss = 0
	}

	var r2 float64
	if syy > 0 {
		r2 = 1 - rss/syy
	}

	var se float64
	if n > 2 {
		se = math.Sqrt(rss / float64(n-2) / sxx)
	}

	return Fit{Slope: slope, Intercept: intercept, SE: se, R2: r2, N: n}, nil
}

// RegressOrigin fits y = b*x through the origin and returns the single
// coefficient b = sum(x*y) / sum(x*x). The background reference regressions
// use this form: a reference test starts at delta DO = 0 by construction.
func RegressOrigin(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrLengthMismatch
	}

	if len(x) < 1 {
		return 0, ErrInsufficientData
	}

	prod := make([]float64, len(x))

	vecmath.MulBlock(prod, x, y)
	sxy := kahanSum(prod)

	vecmath.MulBlock(prod, x, x)
	sxx := kahanSum(prod)

	if sxx == 0 {
		return 0, ErrDegenerateAbscissa
	}

	return sxy / sxx, nil
}
