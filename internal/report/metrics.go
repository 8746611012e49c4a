package report

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexshd/bianchi"
)

// Collector bundles the Prometheus gauges describing a sweep.
type Collector struct {
	registry *prometheus.Registry

	Throughput    *prometheus.GaugeVec
	Tau           *prometheus.GaugeVec
	Collision     *prometheus.GaugeVec
	Evaluations   *prometheus.GaugeVec
	SimThroughput *prometheus.GaugeVec
}

// NewCollector registers the sweep gauges on a private registry.
func NewCollector() (*Collector, error) {
	reg := prometheus.NewRegistry()
	labels := []string{"stations", "strategy"}

	c := &Collector{
		registry: reg,
		Throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dcf_saturation_throughput_bits_per_second",
			Help: "Analytical saturation throughput of the DCF network.",
		}, labels),
		Tau: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dcf_equilibrium_tau",
			Help: "Per-slot transmission probability at equilibrium.",
		}, labels),
		Collision: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dcf_equilibrium_collision_probability",
			Help: "Conditional collision probability at equilibrium.",
		}, labels),
		Evaluations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dcf_solver_residual_evaluations",
			Help: "Residual evaluations spent by the root finder.",
		}, labels),
		SimThroughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dcf_simulated_throughput_bits_per_second",
			Help: "Mean throughput measured by the slot simulator.",
		}, []string{"stations"}),
	}

	for _, col := range []prometheus.Collector{c.Throughput, c.Tau, c.Collision, c.Evaluations, c.SimThroughput} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return c, nil
}

// Observe records the sweep results.
func (c *Collector) Observe(results []bianchi.Result) {
	for _, r := range results {
		n := strconv.Itoa(r.Stations())
		s := r.Equilibrium.Strategy
		c.Throughput.WithLabelValues(n, s).Set(r.Throughput.BitsPerSecond)
		c.Tau.WithLabelValues(n, s).Set(r.Equilibrium.Tau)
		c.Collision.WithLabelValues(n, s).Set(r.Equilibrium.P)
		c.Evaluations.WithLabelValues(n, s).Set(float64(r.Equilibrium.Evaluations))
		if r.Sim != nil {
			c.SimThroughput.WithLabelValues(n).Set(r.Sim.BitsPerSecond)
		}
	}
}

// Gatherer exposes the private registry.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
