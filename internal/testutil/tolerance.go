package testutil

import (
	"math"
	"testing"
)

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireNear fails t if got differs from want by more than eps.
func RequireNear(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if diff := math.Abs(got - want); diff > eps || math.IsNaN(got) {
		t.Fatalf("%s = %v, want %v (diff %v > eps %v)", name, got, want, diff, eps)
	}
}

// RequireLagNear fails t if lag is more than tol samples away from want.
func RequireLagNear(t *testing.T, lag, want, tol int) {
	t.Helper()
	d := lag - want
	if d < 0 {
		d = -d
	}
	if d > tol {
		t.Fatalf("lag = %d, want %d±%d", lag, want, tol)
	}
}
