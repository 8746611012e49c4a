package bianchi

import (
	"context"
	"math"
	"testing"
)

func syntheticCurve(lambda, alpha, beta float64, ns ...int) []ScalingPoint {
	pts := make([]ScalingPoint, 0, len(ns))
	for _, n := range ns {
		pts = append(pts, ScalingPoint{N: n, Throughput: uslModel(float64(n), lambda, alpha, beta)})
	}
	return pts
}

// TestFitContention_RecoversCoefficients fits exact USL data.
func TestFitContention_RecoversCoefficients(t *testing.T) {
	pts := syntheticCurve(1000, 0.1, 0.001, 1, 2, 4, 8, 16, 32)

	c, err := FitContention(pts)
	if err != nil {
		t.Fatalf("FitContention: %v", err)
	}

	if math.Abs(c.Lambda-1000)/1000 > 1e-6 {
		t.Errorf("λ = %.6f, want 1000", c.Lambda)
	}
	if math.Abs(c.Alpha-0.1) > 1e-6 {
		t.Errorf("α = %.8f, want 0.1", c.Alpha)
	}
	if math.Abs(c.Beta-0.001) > 1e-6 {
		t.Errorf("β = %.8f, want 0.001", c.Beta)
	}
	if c.RSquared < 0.999999 {
		t.Errorf("R² = %.8f for exact data", c.RSquared)
	}

	// N* = sqrt(0.9/0.001) ≈ 30
	if peak := c.PeakStations(); math.Abs(peak-math.Sqrt(900)) > 1e-2 {
		t.Errorf("PeakStations = %.4f, want 30", peak)
	}

	t.Logf("✓ λ=%.2f α=%.6f β=%.6f R²=%.6f", c.Lambda, c.Alpha, c.Beta, c.RSquared)
}

// TestFitContention_ContentionOnly verifies the β ≥ 0 constraint.
func TestFitContention_ContentionOnly(t *testing.T) {
	pts := syntheticCurve(500, 0.2, 0, 1, 2, 4, 8, 16)

	c, err := FitContention(pts)
	if err != nil {
		t.Fatalf("FitContention: %v", err)
	}
	if c.Beta < 0 || c.Beta > 1e-9 {
		t.Errorf("β = %g, want ≈ 0", c.Beta)
	}
	if math.Abs(c.Alpha-0.2) > 1e-6 {
		t.Errorf("α = %.8f, want 0.2", c.Alpha)
	}
	if !math.IsInf(c.PeakStations(), 1) && c.Beta == 0 {
		t.Errorf("PeakStations = %g, want +Inf without retrograde term", c.PeakStations())
	}
}

func TestFitContention_TooFewPoints(t *testing.T) {
	pts := []ScalingPoint{
		{N: 1, Throughput: 100},
		{N: 2, Throughput: 180},
		{N: 4, Throughput: 0},
		{N: 0, Throughput: 50},
	}
	if _, err := FitContention(pts); err == nil {
		t.Error("two usable points should fail")
	}
}

// TestFitContention_SaturationSweep summarizes a real sweep: a shared medium
// does not scale, so α is close to 1.
func TestFitContention_SaturationSweep(t *testing.T) {
	results, err := Run(context.Background(), DefaultParams(), DefaultSweepConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	c, err := FitContention(Points(results))
	if err != nil {
		t.Fatalf("FitContention: %v", err)
	}
	if math.IsNaN(c.RSquared) || c.Lambda <= 0 {
		t.Errorf("degenerate fit: %+v", c)
	}
	if c.Alpha < 0.5 {
		t.Errorf("α = %.4f, a shared channel should show strong contention", c.Alpha)
	}

	t.Logf("✓ λ=%.3f Mbit/s α=%.4f β=%.2e R²=%.4f", c.Lambda/1e6, c.Alpha, c.Beta, c.RSquared)
	for _, n := range []int{1, 8, 64} {
		t.Logf("  N=%d: predicted %.3f Mbit/s", n, c.PredictThroughput(n)/1e6)
	}
}

func TestPeakStations(t *testing.T) {
	tests := []struct {
		name string
		c    USLCoefficients
		want float64
	}{
		{"serialized", USLCoefficients{Alpha: 1, Beta: 0.01}, 1},
		{"no retrograde", USLCoefficients{Alpha: 0.3}, math.Inf(1)},
		{"retrograde", USLCoefficients{Alpha: 0.5, Beta: 0.005}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.PeakStations(); got != tt.want && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PeakStations = %g, want %g", got, tt.want)
			}
		})
	}
}
