// Package report renders sweep results as text, workbooks and metrics.
package report

import (
	"fmt"
	"io"

	"github.com/alexshd/bianchi"
)

// WriteText writes one line per station count in the reference layout:
//
//	numST: 8        Bandwidth: 5.2341 Mbit/s
func WriteText(w io.Writer, results []bianchi.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "numST: %-8d Bandwidth: %.4f Mbit/s\n",
			r.Stations(), r.Throughput.Mbps()); err != nil {
			return err
		}
	}
	return nil
}

// WriteSimulation writes "stationCount<TAB>throughputBitsPerSecond" lines for
// every result that carries a simulation.
func WriteSimulation(w io.Writer, results []bianchi.Result) error {
	for _, r := range results {
		if r.Sim == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d\t%.0f\n", r.Stations(), r.Sim.BitsPerSecond); err != nil {
			return err
		}
	}
	return nil
}

// WriteCrossCheck writes the strategy comparison for results that carry one.
func WriteCrossCheck(w io.Writer, results []bianchi.Result) error {
	for _, r := range results {
		if r.Check == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "numST: %-8d tau(%s)=%.9f tau(%s)=%.9f delta=%.2e\n",
			r.Stations(),
			r.Equilibrium.Strategy, r.Equilibrium.Tau,
			r.Check.Strategy, r.Check.Tau,
			r.TauDelta); err != nil {
			return err
		}
	}
	return nil
}
