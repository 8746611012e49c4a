package bianchi

import (
	"context"
	"errors"
	"math"
	"testing"
)

// TestSimulate_SingleStation compares the simulator against the closed form
// S = 8L / (Ts + CWMin/2·Te), which holds exactly for one station.
func TestSimulate_SingleStation(t *testing.T) {
	p := DefaultParams()

	sim, err := Simulate(context.Background(), p, DefaultSimConfig(1))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	want := float64(8*p.FrameBytes) / (p.TSuccess.Seconds() + float64(p.CWMin)/2*p.TEmpty.Seconds())
	if dev := math.Abs(sim.BitsPerSecond-want) / want; dev > 0.01 {
		t.Errorf("simulated %.4f Mbit/s, closed form %.4f Mbit/s (%.2f%%)", sim.Mbps(), want/1e6, dev*100)
	}
	if sim.Collisions != 0 || sim.Drops != 0 {
		t.Errorf("single station: %d collisions, %d drops", sim.Collisions, sim.Drops)
	}
	t.Logf("✓ n=1: %.4f Mbit/s over %d slots", sim.Mbps(), sim.Slots)
}

// TestSimulate_MatchesModel runs the simulator beside the analytical solution.
func TestSimulate_MatchesModel(t *testing.T) {
	m := newTestModel(t, DefaultParams())

	for _, n := range []int{2, 8, 16} {
		_, tp, err := m.Saturation(m.Bisection, n, DefaultBisectionTolerance)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		sim, err := Simulate(context.Background(), m.Params(), DefaultSimConfig(n))
		if err != nil {
			t.Fatalf("Simulate(n=%d): %v", n, err)
		}
		if sim.Collisions == 0 {
			t.Errorf("n=%d: no collisions in %d slots", n, sim.Slots)
		}
		AssertSimulationMatches(t, tp, sim, DefaultAssertionConfig())
	}
}

func TestSimulate_InvalidInput(t *testing.T) {
	ctx := context.Background()

	if _, err := Simulate(ctx, DefaultParams(), DefaultSimConfig(0)); !errors.Is(err, ErrInvalidStationCount) {
		t.Errorf("n=0 error = %v, want ErrInvalidStationCount", err)
	}

	cfg := DefaultSimConfig(4)
	cfg.Duration = 0
	if _, err := Simulate(ctx, DefaultParams(), cfg); err == nil {
		t.Error("zero duration should fail")
	}

	p := DefaultParams()
	p.CWMax = 0
	if _, err := Simulate(ctx, p, DefaultSimConfig(4)); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("bad params error = %v, want ErrInvalidParams", err)
	}
}

func TestSimulate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Simulate(ctx, DefaultParams(), DefaultSimConfig(8)); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
