package desc

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5, 1e-15) {
		t.Errorf("Mean: got %g, want 2.5", got)
	}

	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil): got %g, want 0", got)
	}
}

func TestQuantile_Type7(t *testing.T) {
	// Expected values match R's quantile(x, p, type = 7).
	data := []float64{1, 2, 3, 4, 5}

	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.1, 1.4},
		{0.25, 2},
		{0.5, 3},
		{0.75, 4},
		{0.9, 4.6},
		{1, 5},
	}

	for _, tc := range cases {
		if got := Quantile(data, tc.p); !almostEqual(got, tc.want, 1e-12) {
			t.Errorf("Quantile(p=%g): got %g, want %g", tc.p, got, tc.want)
		}
	}
}

func TestQuantile_Unsorted(t *testing.T) {
	data := []float64{0.3, -0.5, 0.1, -0.3, -0.1}

	// Sorted: -0.5 -0.3 -0.1 0.1 0.3; h = 4*0.2 = 0.8.
	want := -0.5 + 0.8*0.2
	if got := Quantile(data, 0.2); !almostEqual(got, want, 1e-12) {
		t.Errorf("Quantile: got %g, want %g", got, want)
	}

	// Input order must be preserved.
	if data[0] != 0.3 || data[4] != -0.1 {
		t.Errorf("Quantile mutated its input: %v", data)
	}
}

func TestQuantile_Edge(t *testing.T) {
	if got := Quantile(nil, 0.5); !math.IsNaN(got) {
		t.Errorf("Quantile(nil): got %g, want NaN", got)
	}

	if got := Quantile([]float64{7}, 0.3); got != 7 {
		t.Errorf("Quantile(single): got %g, want 7", got)
	}
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	if got, want := Percentile(data, 25), 2.0; !almostEqual(got, want, 1e-12) {
		t.Errorf("Percentile(25): got %g, want %g", got, want)
	}
}
