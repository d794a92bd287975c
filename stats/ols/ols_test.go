package ols

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRegress_ExactLine(t *testing.T) {
	x := make([]float64, 10)
	y := make([]float64, 10)

	for i := range x {
		x[i] = float64(i + 1)
		y[i] = 2*x[i] + 1
	}

	fit, err := Regress(x, y)
	if err != nil {
		t.Fatalf("Regress: %v", err)
	}

	if !almostEqual(fit.Slope, 2, tolerance) {
		t.Errorf("Slope: got %g, want 2", fit.Slope)
	}

	if !almostEqual(fit.Intercept, 1, tolerance) {
		t.Errorf("Intercept: got %g, want 1", fit.Intercept)
	}

	if !almostEqual(fit.R2, 1, tolerance) {
		t.Errorf("R2: got %g, want 1", fit.R2)
	}

	if !almostEqual(fit.SE, 0, tolerance) {
		t.Errorf("SE: got %g, want 0", fit.SE)
	}

	if fit.N != 10 {
		t.Errorf("N: got %d, want 10", fit.N)
	}
}

func TestRegress_KnownValues(t *testing.T) {
	// Hand-computed: slope 1.1, intercept 0, RSS 2.7, TSS 8.75.
	x := []float64{1, 2, 3, 4}
	y := []float64{1, 3, 2, 5}

	fit, err := Regress(x, y)
	if err != nil {
		t.Fatalf("Regress: %v", err)
	}

	if !almostEqual(fit.Slope, 1.1, 1e-12) {
		t.Errorf("Slope: got %g, want 1.1", fit.Slope)
	}

	if !almostEqual(fit.Intercept, 0, 1e-12) {
		t.Errorf("Intercept: got %g, want 0", fit.Intercept)
	}

	wantR2 := 1 - 2.7/8.75
	if !almostEqual(fit.R2, wantR2, 1e-12) {
		t.Errorf("R2: got %g, want %g", fit.R2, wantR2)
	}

	wantSE := math.Sqrt(2.7 / 2 / 5)
	if !almostEqual(fit.SE, wantSE, 1e-12) {
		t.Errorf("SE: got %g, want %g", fit.SE, wantSE)
	}
}

func TestRegress_NegativeSlope(t *testing.T) {
	// A typical DO depletion trace: 8.0 - 0.001*t.
	n := 300
	x := make([]float64, n)
	y := make([]float64, n)

	for i := range x {
		x[i] = float64(i + 1)
		y[i] = 8.0 - 0.001*x[i]
	}

	fit, err := Regress(x, y)
	if err != nil {
		t.Fatalf("Regress: %v", err)
	}

	if !almostEqual(fit.Slope, -0.001, 1e-12) {
		t.Errorf("Slope: got %g, want -0.001", fit.Slope)
	}

	if !almostEqual(fit.R2, 1, 1e-9) {
		t.Errorf("R2: got %g, want 1", fit.R2)
	}
}

func TestRegress_Errors(t *testing.T) {
	if _, err := Regress([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("length mismatch: got %v", err)
	}

	if _, err := Regress([]float64{1}, []float64{1}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("single sample: got %v", err)
	}

	if _, err := Regress([]float64{3, 3, 3}, []float64{1, 2, 3}); !errors.Is(err, ErrDegenerateAbscissa) {
		t.Errorf("constant x: got %v", err)
	}
}

func TestRegressOrigin_Exact(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := make([]float64, len(x))

	for i := range x {
		y[i] = -0.002 * x[i]
	}

	coef, err := RegressOrigin(x, y)
	if err != nil {
		t.Fatalf("RegressOrigin: %v", err)
	}

	if !almostEqual(coef, -0.002, tolerance) {
		t.Errorf("coef: got %g, want -0.002", coef)
	}
}

func TestRegressOrigin_KnownValues(t *testing.T) {
	// coef = sum(x*y)/sum(x*x) = 33/14.
	x := []float64{1, 2, 3}
	y := []float64{2, 5, 7}

	coef, err := RegressOrigin(x, y)
	if err != nil {
		t.Fatalf("RegressOrigin: %v", err)
	}

	if !almostEqual(coef, 33.0/14.0, 1e-12) {
		t.Errorf("coef: got %g, want %g", coef, 33.0/14.0)
	}
}

func TestRegressOrigin_Errors(t *testing.T) {
	if _, err := RegressOrigin(nil, nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty: got %v", err)
	}

	if _, err := RegressOrigin([]float64{0, 0}, []float64{1, 2}); !errors.Is(err, ErrDegenerateAbscissa) {
		t.Errorf("zero x: got %v", err)
	}
}
