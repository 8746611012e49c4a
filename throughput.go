package bianchi

import (
	"fmt"
	"math"
	"time"
)

// Throughput is the saturation throughput of n stations at equilibrium τ.
type Throughput struct {
	Stations      int
	Tau           float64
	PEmpty        float64       // No station transmits
	PSuccess      float64       // Exactly one station transmits
	PCollision    float64       // Two or more stations transmit
	SlotTime      time.Duration // Expected virtual slot duration
	BitsPerSecond float64
}

// Mbps returns the throughput in Mbit/s.
func (t Throughput) Mbps() float64 {
	return t.BitsPerSecond / 1e6
}

// Throughput evaluates the normalized saturation throughput:
//
//	Pe = (1-τ)^n
//	Ps = n·τ·(1-τ)^(n-1)
//	Pc = 1 - Pe - Ps
//	S  = L·Ps / (Te·Pe + Ts·Ps + Tc·Pc)
//
// A single station never collides; its throughput is L / (Ts + CWMin/2·Te).
func (m *Model) Throughput(tau float64, n int) (Throughput, error) {
	if err := validateStations(n); err != nil {
		return Throughput{}, err
	}
	if math.IsNaN(tau) || tau < 0 || tau > 1 {
		return Throughput{}, fmt.Errorf("transmission probability %g outside [0, 1]", tau)
	}

	prm := m.params
	bits := float64(8 * prm.FrameBytes)
	te := prm.TEmpty.Seconds()
	ts := prm.TSuccess.Seconds()
	tc := prm.TCollision.Seconds()

	if n == 1 {
		slot := ts + float64(prm.CWMin)/2.0*te
		return Throughput{
			Stations:      1,
			Tau:           tau,
			PSuccess:      1,
			SlotTime:      seconds(slot),
			BitsPerSecond: bits / slot,
		}, nil
	}

	idle := math.Pow(1-tau, float64(n-1))
	pe := idle * (1 - tau)
	ps := float64(n) * tau * idle
	pc := 1 - pe - ps

	slot := te*pe + ts*ps + tc*pc
	s := bits * ps / slot
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return Throughput{}, fmt.Errorf("%w: throughput for n=%d, tau=%g", ErrNumeric, n, tau)
	}

	return Throughput{
		Stations:      n,
		Tau:           tau,
		PEmpty:        pe,
		PSuccess:      ps,
		PCollision:    pc,
		SlotTime:      seconds(slot),
		BitsPerSecond: s,
	}, nil
}

// Saturation solves for the equilibrium with the given root finder and
// evaluates the throughput at it.
func (m *Model) Saturation(find RootFinder, n int, eps float64) (Equilibrium, Throughput, error) {
	eq, err := find(n, eps)
	if err != nil {
		return eq, Throughput{}, err
	}
	tp, err := m.Throughput(eq.Tau, n)
	if err != nil {
		return eq, Throughput{}, err
	}
	return eq, tp, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
