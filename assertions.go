package bianchi

import (
	"fmt"
	"math"
	"testing"
)

// AssertionConfig contains thresholds for the model's correctness properties.
type AssertionConfig struct {
	// Maximum |τ_scan - τ_bisection| accepted when cross-validating
	MaxTauDelta float64

	// Maximum |eqf| at a bisection root
	MaxResidual float64

	// Maximum relative deviation between simulated and analytical throughput
	MaxSimDeviation float64
}

// DefaultAssertionConfig returns thresholds matched to the default tolerances.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MaxTauDelta:     1e-4, // O(scan step)
		MaxResidual:     1e-6,
		MaxSimDeviation: 0.15, // 15% of the analytical value
	}
}

// AssertStrategiesAgree verifies that linear scan and bisection find the same
// τ* for every station count. With no closed form available, agreement
// between the two strategies is the primary correctness check.
func AssertStrategiesAgree(t *testing.T, m *Model, stations []int, cfg AssertionConfig) {
	t.Helper()

	var failures []string
	for _, n := range stations {
		scan, err := m.LinearScan(n, DefaultScanStep)
		if err != nil {
			t.Fatalf("LinearScan(n=%d): %v", n, err)
		}
		bis, err := m.Bisection(n, DefaultBisectionTolerance)
		if err != nil {
			t.Fatalf("Bisection(n=%d): %v", n, err)
		}

		if r := math.Abs(bis.Residual); r > cfg.MaxResidual {
			failures = append(failures, fmt.Sprintf(
				"  n=%d: |eqf| at bisection root %.2e", n, r))
		}

		delta := math.Abs(scan.Tau - bis.Tau)
		if delta > cfg.MaxTauDelta {
			failures = append(failures, fmt.Sprintf(
				"  n=%d: τ_scan=%.8f τ_bisect=%.8f Δ=%.2e", n, scan.Tau, bis.Tau, delta))
		}
	}

	if len(failures) > 0 {
		t.Errorf("Strategies disagree (max Δτ %.1e):\n%v", cfg.MaxTauDelta, failures)
		return
	}
	t.Logf("✓ Scan and bisection agree within %.1e for n=%v", cfg.MaxTauDelta, stations)
}

// AssertTauNonIncreasing verifies that τ* does not grow as stations are
// added: more contenders means each station backs off more.
func AssertTauNonIncreasing(t *testing.T, m *Model, stations []int) {
	t.Helper()

	prevN, prevTau := 0, math.Inf(1)
	for _, n := range stations {
		eq, err := m.Bisection(n, DefaultBisectionTolerance)
		if err != nil {
			t.Fatalf("Bisection(n=%d): %v", n, err)
		}
		if n > prevN && eq.Tau > prevTau {
			t.Errorf("τ* increased from n=%d (%.8f) to n=%d (%.8f)", prevN, prevTau, n, eq.Tau)
		}
		prevN, prevTau = n, eq.Tau
	}
	t.Logf("✓ τ* non-increasing over n=%v", stations)
}

// AssertThroughputBounded verifies 0 < S < FrameBytes/TSuccess for every
// station count.
func AssertThroughputBounded(t *testing.T, m *Model, stations []int) {
	t.Helper()

	limit := m.Params().MaxBitRate()
	for _, n := range stations {
		_, tp, err := m.Saturation(m.Bisection, n, DefaultBisectionTolerance)
		if err != nil {
			t.Fatalf("Saturation(n=%d): %v", n, err)
		}
		if !(tp.BitsPerSecond > 0) {
			t.Errorf("n=%d: throughput %.2f bit/s not positive", n, tp.BitsPerSecond)
		}
		if tp.BitsPerSecond >= limit {
			t.Errorf("n=%d: throughput %.2f bit/s reaches PHY limit %.2f", n, tp.BitsPerSecond, limit)
		}
	}
	t.Logf("✓ Throughput in (0, %.3f Mbit/s) for n=%v", limit/1e6, stations)
}

// AssertSimulationMatches verifies that the slot simulator reproduces the
// analytical throughput within cfg.MaxSimDeviation.
func AssertSimulationMatches(t *testing.T, analytical Throughput, sim SimResult, cfg AssertionConfig) {
	t.Helper()

	dev := math.Abs(sim.BitsPerSecond-analytical.BitsPerSecond) / analytical.BitsPerSecond
	if dev > cfg.MaxSimDeviation {
		t.Errorf("n=%d: simulated %.3f Mbit/s vs analytical %.3f Mbit/s (deviation %.1f%%, max %.1f%%)",
			sim.Stations, sim.Mbps(), analytical.Mbps(), dev*100, cfg.MaxSimDeviation*100)
		return
	}
	t.Logf("✓ n=%d: simulated %.3f Mbit/s (±%.3f) vs analytical %.3f Mbit/s (%.1f%%)",
		sim.Stations, sim.Mbps(), sim.StdDev/1e6, analytical.Mbps(), dev*100)
}

// PrintSweep writes a sweep table to the test log.
func PrintSweep(t *testing.T, results []Result) {
	t.Helper()

	t.Logf("\n=== Saturation Throughput ===")
	t.Logf("  n     τ*          p*          Mbit/s")
	t.Logf("  ----  ----------  ----------  --------")
	for _, r := range results {
		t.Logf("  %-4d  %.8f  %.8f  %8.4f",
			r.Stations(), r.Equilibrium.Tau, r.Equilibrium.P, r.Throughput.Mbps())
	}
}
