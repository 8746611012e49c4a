package bianchi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// SweepConfig controls a throughput sweep over station counts.
type SweepConfig struct {
	Stations   []int       // Station counts, reported in this order
	Strategy   string      // "bisection" (default) or "scan"
	Tolerance  float64     // Root finder tolerance (0 = strategy default)
	Workers    int         // Concurrent station counts (<= 1 = sequential)
	CrossCheck bool        // Also solve with the other strategy and compare
	Simulate   bool        // Also run the slot simulator
	Sim        SimConfig   // Simulator settings; Stations is filled per count
	Logger     *slog.Logger
}

// DefaultStations is the station-count list of the reference run.
func DefaultStations() []int {
	return []int{1, 2, 4, 8, 16, 32, 64, 128, 200, 21, 47, 72, 27, 10}
}

// DefaultSweepConfig returns a sequential bisection sweep over DefaultStations.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Stations: DefaultStations(),
		Strategy: StrategyBisection,
		Workers:  1,
		Sim:      DefaultSimConfig(0),
	}
}

// Result is the outcome for a single station count.
type Result struct {
	Equilibrium Equilibrium
	Throughput  Throughput
	Check       *Equilibrium // Cross-check solve with the other strategy
	TauDelta    float64      // |τ*(primary) - τ*(check)|
	Sim         *SimResult
	Elapsed     time.Duration
}

// Stations returns the station count of the result.
func (r Result) Stations() int {
	return r.Equilibrium.Stations
}

// Run evaluates the saturation throughput for every station count in cfg.
// Results keep the order of cfg.Stations. Station counts are independent, so
// with Workers > 1 they are solved concurrently.
func Run(ctx context.Context, params Params, cfg SweepConfig) ([]Result, error) {
	m, err := NewModel(params)
	if err != nil {
		return nil, err
	}
	if len(cfg.Stations) == 0 {
		return nil, fmt.Errorf("no station counts to evaluate")
	}
	for _, n := range cfg.Stations {
		if err := validateStations(n); err != nil {
			return nil, err
		}
	}

	find, eps, err := m.Strategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if cfg.Tolerance != 0 {
		eps = cfg.Tolerance
	}
	if err := validateTolerance(eps); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	results := make([]Result, len(cfg.Stations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for i, n := range cfg.Stations {
		i, n := i, n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runAtCount(ctx, m, find, eps, n, cfg)
			if err != nil {
				return fmt.Errorf("failed at n=%d: %w", n, err)
			}
			results[i] = r
			logger.Debug("station count solved",
				"n", n,
				"strategy", r.Equilibrium.Strategy,
				"tau", r.Equilibrium.Tau,
				"p", r.Equilibrium.P,
				"evals", r.Equilibrium.Evaluations,
				"mbps", r.Throughput.Mbps(),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runAtCount solves and evaluates one station count.
func runAtCount(ctx context.Context, m *Model, find RootFinder, eps float64, n int, cfg SweepConfig) (Result, error) {
	start := time.Now()

	eq, tp, err := m.Saturation(find, n, eps)
	if err != nil {
		return Result{}, err
	}
	r := Result{Equilibrium: eq, Throughput: tp}

	if cfg.CrossCheck {
		check, err := crossCheck(m, eq.Strategy, n)
		if err != nil {
			return Result{}, fmt.Errorf("cross-check: %w", err)
		}
		r.Check = &check
		r.TauDelta = math.Abs(eq.Tau - check.Tau)
	}

	if cfg.Simulate {
		sc := cfg.Sim
		sc.Stations = n
		if sc.Duration == 0 {
			sc = DefaultSimConfig(n)
		}
		sim, err := Simulate(ctx, m.params, sc)
		if err != nil {
			return Result{}, fmt.Errorf("simulate: %w", err)
		}
		r.Sim = &sim
	}

	r.Elapsed = time.Since(start)
	return r, nil
}

// crossCheck solves with the strategy other than primary at its default
// tolerance.
func crossCheck(m *Model, primary string, n int) (Equilibrium, error) {
	other := StrategyScan
	if primary == StrategyScan {
		other = StrategyBisection
	}
	find, eps, err := m.Strategy(other)
	if err != nil {
		return Equilibrium{}, err
	}
	return find(n, eps)
}
