package testutil

import (
	"math"
	"testing"
)

// AlmostEqual reports whether a and b differ by at most eps, treating
// matching infinities and NaNs as equal.
func AlmostEqual(a, b, eps float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}

	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return true
	}

	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}

	return math.Abs(a-b) <= eps
}

// RequireNear fails t unless got is within eps of want.
func RequireNear(t *testing.T, name string, got, want, eps float64) {
	t.Helper()

	if !AlmostEqual(got, want, eps) {
		t.Fatalf("%s: got %v, want %v (eps %v)", name, got, want, eps)
	}
}

// RequireSliceNear fails t if got and want differ in length or any element
// pair exceeds eps.
func RequireSliceNear(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if !AlmostEqual(got[i], want[i], eps) {
			t.Fatalf("index %d: got %v, want %v (eps %v)", i, got[i], want[i], eps)
		}
	}
}
