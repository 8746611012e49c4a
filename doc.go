// Package bianchi computes the saturation throughput of an IEEE 802.11 DCF
// network with Bianchi's Markov-chain model.
//
// # Overview
//
// Every station is assumed saturated (always has a frame queued) and shares a
// single broadcast domain using basic access. Two coupled quantities describe
// the steady state:
//
//	τ = Σ p^i / Σ p^i·(W_i+1)/2       transmission probability per slot
//	p = 1 - (1-τ)^(n-1)               collision probability
//
// where W_i = min((CWMin+1)·2^i, CWMax+1) is the contention window at backoff
// stage i. The equilibrium is the root of the residual
//
//	eqf(p, n) = p - p(τ(p), n)
//
// which has no closed form and is found numerically.
//
// # Quick Start
//
//	m, err := bianchi.NewModel(bianchi.DefaultParams())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eq, tp, err := m.Saturation(m.Bisection, 8, bianchi.DefaultBisectionTolerance)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("τ*=%.6f  S=%.2f Mbit/s\n", eq.Tau, tp.Mbps())
//
// # Root Finders
//
// Two interchangeable RootFinder strategies are provided:
//
//   - Bisection: O(log(1/ε)) evaluations, the default. Checks that eqf
//     changes sign over [0, 1] and reports ErrNoSignChange otherwise.
//   - LinearScan: O(1/ε) evaluations. Always returns the best sample; used to
//     cross-validate bisection.
//
// # Throughput
//
// With Pe, Ps and Pc the probabilities of an empty, successful and colliding
// slot:
//
//	S = L·Ps / (Te·Pe + Ts·Ps + Tc·Pc)
//
// A single station never collides, so n = 1 uses S = L / (Ts + CWMin/2·Te).
//
// # Sweeps and Simulation
//
// Run evaluates a list of station counts, optionally in parallel, with an
// optional cross-check between strategies and a slot-level Monte Carlo
// simulation (Simulate) for empirical comparison. FitContention summarizes
// the resulting throughput curve with the Universal Scalability Law.
//
// # Testing
//
// The Assert* helpers check the model's properties from tests:
//
//	func TestMyParams(t *testing.T) {
//	    m, _ := bianchi.NewModel(params)
//	    bianchi.AssertStrategiesAgree(t, m, []int{1, 2, 4, 8}, bianchi.DefaultAssertionConfig())
//	    bianchi.AssertTauNonIncreasing(t, m, []int{1, 2, 4, 8})
//	}
package bianchi
