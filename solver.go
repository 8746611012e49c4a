package bianchi

import (
	"fmt"
	"math"
)

// Default tolerances for the two root finders.
const (
	DefaultScanStep           = 1e-5
	DefaultBisectionTolerance = 1e-9
)

// Strategy names accepted by Model.Strategy.
const (
	StrategyBisection = "bisection"
	StrategyScan      = "scan"
)

// Equilibrium is the self-consistent (p*, τ*) pair for one station count.
type Equilibrium struct {
	Stations    int
	P           float64 // Collision probability p*
	Tau         float64 // Transmission probability τ* = τ(p*)
	Residual    float64 // eqf(p*, n) at the reported point
	Evaluations int     // Residual evaluations spent
	Strategy    string
	Bracketed   bool // False when the bisection precondition failed
}

// RootFinder locates the equilibrium for n stations with tolerance eps.
// Model.LinearScan and Model.Bisection are interchangeable RootFinders.
type RootFinder func(n int, eps float64) (Equilibrium, error)

// Strategy returns the named root finder and its default tolerance.
func (m *Model) Strategy(name string) (RootFinder, float64, error) {
	switch name {
	case StrategyBisection, "":
		return m.Bisection, DefaultBisectionTolerance, nil
	case StrategyScan, "linear":
		return m.LinearScan, DefaultScanStep, nil
	default:
		return nil, 0, fmt.Errorf("unknown strategy %q (want %q or %q)",
			name, StrategyBisection, StrategyScan)
	}
}

// LinearScan samples eqf at p = 0, eps, 2·eps, … below 1 and keeps the
// sample with the smallest |eqf|. It always returns a point, even when no
// true root lies nearby; accuracy is bounded by eps.
func (m *Model) LinearScan(n int, eps float64) (Equilibrium, error) {
	if err := validateStations(n); err != nil {
		return Equilibrium{}, err
	}
	if err := validateTolerance(eps); err != nil {
		return Equilibrium{}, err
	}

	pBest := 0.0
	best := math.Abs(m.Residual(0, n))
	evals := 1

	// p is derived from the step index so rounding does not accumulate.
	for i := 1; ; i++ {
		p := float64(i) * eps
		if p >= 1 {
			break
		}
		r := math.Abs(m.Residual(p, n))
		evals++
		if r < best {
			best = r
			pBest = p
		}
	}

	return m.equilibrium(n, pBest, evals, StrategyScan, true)
}

// Bisection halves the bracket [0, 1] until its width is at most eps and
// returns τ at the left end. Before iterating it checks that eqf changes
// sign over the bracket; if it does not, the partially filled Equilibrium is
// returned together with ErrNoSignChange.
func (m *Model) Bisection(n int, eps float64) (Equilibrium, error) {
	if err := validateStations(n); err != nil {
		return Equilibrium{}, err
	}
	if err := validateTolerance(eps); err != nil {
		return Equilibrium{}, err
	}

	f := func(p float64) float64 { return m.Residual(p, n) }
	p, evals, bracketed := bisect(f, 0, 1, eps)

	eq, err := m.equilibrium(n, p, evals, StrategyBisection, bracketed)
	if err != nil {
		return eq, err
	}
	if !bracketed {
		return eq, fmt.Errorf("%w: n=%d, eqf(0)=%g, eqf(1)=%g",
			ErrNoSignChange, n, f(0), f(1))
	}
	return eq, nil
}

// bisect finds a root of f in [lo, hi]. A root sitting exactly on an
// endpoint is returned immediately. The bool reports whether f(lo) and
// f(hi) bracket a root.
func bisect(f func(float64) float64, lo, hi, eps float64) (float64, int, bool) {
	fl, fh := f(lo), f(hi)
	evals := 2

	switch {
	case fl == 0:
		return lo, evals, true
	case fh == 0:
		return hi, evals, true
	case math.Signbit(fl) == math.Signbit(fh):
		return lo, evals, false
	}

	for hi-lo > eps {
		mid := (lo + hi) / 2
		fm := f(mid)
		evals++
		if fm == 0 {
			return mid, evals, true
		}
		if fl*fm < 0 {
			hi = mid
		} else {
			lo, fl = mid, fm
		}
	}
	return lo, evals, true
}

func (m *Model) equilibrium(n int, p float64, evals int, strategy string, bracketed bool) (Equilibrium, error) {
	eq := Equilibrium{
		Stations:    n,
		P:           p,
		Residual:    m.Residual(p, n),
		Evaluations: evals,
		Strategy:    strategy,
		Bracketed:   bracketed,
	}
	tau, err := m.CheckedTau(p)
	if err != nil {
		return eq, fmt.Errorf("n=%d: %w", n, err)
	}
	eq.Tau = tau
	return eq, nil
}
