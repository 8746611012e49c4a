package bianchi

import (
	"fmt"
	"math"
)

// Model is the Bianchi DCF Markov-chain model bound to one parameter set.
// It is immutable and safe for concurrent use.
type Model struct {
	params    Params
	avgWindow []float64 // (W_i+1)/2 per backoff stage
}

// NewModel validates params and precomputes the per-stage backoff means.
func NewModel(params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	avg := make([]float64, params.MaxRetries)
	for i := range avg {
		// Mean backoff for window w, counting the transmit slot.
		avg[i] = (float64(params.Window(i)) + 1.0) / 2.0
	}

	return &Model{params: params, avgWindow: avg}, nil
}

// Params returns the parameter set the model was built with.
func (m *Model) Params() Params {
	return m.params
}

// Tau returns the stationary per-slot transmission probability implied by
// the backoff chain for collision probability p:
//
//	τ(p) = Σ p^i / Σ p^i·(W_i+1)/2,   i = 0 … MaxRetries-1
//
// At p = 0 only stage 0 contributes and τ = 2/(CWMin+2).
func (m *Model) Tau(p float64) float64 {
	var num, den float64
	reach := 1.0 // p^i
	for _, avg := range m.avgWindow {
		num += reach
		den += reach * avg
		reach *= p
	}
	return num / den
}

// CollisionProbability returns the probability that a transmitting station
// collides when each of the other n-1 stations transmits with probability tau:
//
//	p(τ, n) = 1 - (1-τ)^(n-1)
func CollisionProbability(tau float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	k := float64(n - 1)
	switch {
	case tau == 1:
		return 1
	case tau >= 0 && tau < 1:
		// expm1/log1p keep precision for tau near 0 and for large n.
		return -math.Expm1(k * math.Log1p(-tau))
	default:
		return 1 - math.Pow(1-tau, k)
	}
}

// Residual is the equilibrium residual whose root is the fixed point:
//
//	eqf(p, n) = p - p(τ(p), n)
func (m *Model) Residual(p float64, n int) float64 {
	return p - CollisionProbability(m.Tau(p), n)
}

// CheckedTau is Tau with input validation and a finiteness check.
func (m *Model) CheckedTau(p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("collision probability %g outside [0, 1]", p)
	}
	tau := m.Tau(p)
	if math.IsNaN(tau) || math.IsInf(tau, 0) {
		return 0, fmt.Errorf("%w: tau(%g) = %g", ErrNumeric, p, tau)
	}
	return tau, nil
}
