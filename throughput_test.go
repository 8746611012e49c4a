package bianchi

import (
	"errors"
	"math"
	"testing"
)

// TestThroughput_Bounded verifies 0 < S < L/Ts across the reference stations.
func TestThroughput_Bounded(t *testing.T) {
	m := newTestModel(t, DefaultParams())
	AssertThroughputBounded(t, m, DefaultStations())
}

func TestThroughput_SingleStationFormula(t *testing.T) {
	m := newTestModel(t, DefaultParams())

	tp, err := m.Throughput(m.Tau(0), 1)
	if err != nil {
		t.Fatalf("Throughput: %v", err)
	}

	// 16000 bits / (2870µs + 7.5·9µs) = 16000 / 2937.5µs
	want := 16000 / 2937.5e-6
	if math.Abs(tp.BitsPerSecond-want)/want > 1e-9 {
		t.Errorf("S(n=1) = %.3f bit/s, want %.3f", tp.BitsPerSecond, want)
	}
	if tp.PCollision != 0 || tp.PSuccess != 1 {
		t.Errorf("single station: Ps=%g Pc=%g, want 1 and 0", tp.PSuccess, tp.PCollision)
	}
	t.Logf("✓ n=1: %.4f Mbit/s", tp.Mbps())
}

// TestThroughput_SlotProbabilities verifies Pe + Ps + Pc = 1 with each in [0, 1].
func TestThroughput_SlotProbabilities(t *testing.T) {
	m := newTestModel(t, DefaultParams())

	for _, n := range []int{2, 8, 64, 200} {
		eq, tp, err := m.Saturation(m.Bisection, n, DefaultBisectionTolerance)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		for name, v := range map[string]float64{"Pe": tp.PEmpty, "Ps": tp.PSuccess, "Pc": tp.PCollision} {
			if v < 0 || v > 1 {
				t.Errorf("n=%d: %s = %g outside [0, 1]", n, name, v)
			}
		}
		if sum := tp.PEmpty + tp.PSuccess + tp.PCollision; math.Abs(sum-1) > 1e-12 {
			t.Errorf("n=%d: Pe+Ps+Pc = %.15f", n, sum)
		}

		wantPs := float64(n) * eq.Tau * math.Pow(1-eq.Tau, float64(n-1))
		if math.Abs(tp.PSuccess-wantPs) > 1e-12 {
			t.Errorf("n=%d: Ps = %g, want %g", n, tp.PSuccess, wantPs)
		}
		if tp.SlotTime <= 0 {
			t.Errorf("n=%d: slot time %v", n, tp.SlotTime)
		}
	}
}

// TestThroughput_ExplicitPoint checks the formula at a hand-computed point.
func TestThroughput_ExplicitPoint(t *testing.T) {
	m := newTestModel(t, DefaultParams())

	// n=2, τ=0.1: Pe=0.81, Ps=0.18, Pc=0.01
	tp, err := m.Throughput(0.1, 2)
	if err != nil {
		t.Fatalf("Throughput: %v", err)
	}
	slot := 9e-6*0.81 + 2870e-6*0.18 + 2870e-6*0.01
	want := 16000 * 0.18 / slot
	if math.Abs(tp.BitsPerSecond-want)/want > 1e-9 {
		t.Errorf("S = %.3f, want %.3f", tp.BitsPerSecond, want)
	}
}

func TestThroughput_InvalidInput(t *testing.T) {
	m := newTestModel(t, DefaultParams())

	if _, err := m.Throughput(0.1, 0); !errors.Is(err, ErrInvalidStationCount) {
		t.Errorf("n=0 error = %v, want ErrInvalidStationCount", err)
	}
	for _, tau := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := m.Throughput(tau, 4); err == nil {
			t.Errorf("τ=%g should be rejected", tau)
		}
	}
}

// TestThroughput_StrategiesAgree verifies both root finders give the same
// throughput, not only the same τ*.
func TestThroughput_StrategiesAgree(t *testing.T) {
	m := newTestModel(t, DefaultParams())

	for _, n := range crossValidationStations {
		_, scan, err := m.Saturation(m.LinearScan, n, DefaultScanStep)
		if err != nil {
			t.Fatalf("scan n=%d: %v", n, err)
		}
		_, bis, err := m.Saturation(m.Bisection, n, DefaultBisectionTolerance)
		if err != nil {
			t.Fatalf("bisection n=%d: %v", n, err)
		}
		if rel := math.Abs(scan.BitsPerSecond-bis.BitsPerSecond) / bis.BitsPerSecond; rel > 1e-3 {
			t.Errorf("n=%d: scan %.4f vs bisection %.4f Mbit/s", n, scan.Mbps(), bis.Mbps())
		}
	}
}
