package bianchi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iti/rngstream"
	"gonum.org/v1/gonum/stat"
)

// SimConfig controls the slot-level Monte Carlo simulation.
type SimConfig struct {
	Stations     int
	Duration     time.Duration // Simulated channel time per replication
	Replications int           // Independent runs, each on its own random stream
	Seed         string        // Stream name prefix
}

// DefaultSimConfig simulates 20 seconds of channel time three times.
func DefaultSimConfig(n int) SimConfig {
	return SimConfig{
		Stations:     n,
		Duration:     20 * time.Second,
		Replications: 3,
		Seed:         "dcf",
	}
}

// SimResult is the empirically measured aggregate throughput.
type SimResult struct {
	Stations      int
	BitsPerSecond float64 // Mean over replications
	StdDev        float64 // Standard deviation over replications
	Slots         int64
	Successes     int64
	Collisions    int64
	Drops         int64 // Frames discarded after MaxRetries attempts
}

// Mbps returns the mean throughput in Mbit/s.
func (r SimResult) Mbps() float64 {
	return r.BitsPerSecond / 1e6
}

// Simulate runs n saturated stations through binary exponential backoff one
// virtual slot at a time. A slot in which nobody transmits lasts TEmpty, a
// single transmitter succeeds in TSuccess and two or more collide for
// TCollision. Backoff counters are drawn uniformly from [0, W_i-1] and every
// station decrements once per virtual slot, as in the analytical model.
func Simulate(ctx context.Context, params Params, cfg SimConfig) (SimResult, error) {
	if err := params.Validate(); err != nil {
		return SimResult{}, err
	}
	if err := validateStations(cfg.Stations); err != nil {
		return SimResult{}, err
	}
	if cfg.Duration <= 0 {
		return SimResult{}, fmt.Errorf("simulation duration %v must be positive", cfg.Duration)
	}
	if cfg.Replications < 1 {
		cfg.Replications = 1
	}
	if cfg.Seed == "" {
		cfg.Seed = "dcf"
	}

	res := SimResult{Stations: cfg.Stations}
	samples := make([]float64, 0, cfg.Replications)

	for rep := 0; rep < cfg.Replications; rep++ {
		rng := newStream(fmt.Sprintf("%s-n%d-r%d", cfg.Seed, cfg.Stations, rep))
		run, err := simulateOnce(ctx, params, cfg.Stations, cfg.Duration, rng)
		if err != nil {
			return SimResult{}, err
		}
		samples = append(samples, run.BitsPerSecond)
		res.Slots += run.Slots
		res.Successes += run.Successes
		res.Collisions += run.Collisions
		res.Drops += run.Drops
	}

	if len(samples) > 1 {
		res.BitsPerSecond, res.StdDev = stat.MeanStdDev(samples, nil)
	} else {
		res.BitsPerSecond = samples[0]
	}
	return res, nil
}

// rngstream.New advances a package-level seed; parallel sweeps share it.
var streamMu sync.Mutex

func newStream(name string) *rngstream.RngStream {
	streamMu.Lock()
	defer streamMu.Unlock()
	return rngstream.New(name)
}

type station struct {
	stage   int
	counter uint64
}

func simulateOnce(ctx context.Context, params Params, n int, limit time.Duration, rng *rngstream.RngStream) (SimResult, error) {
	draw := func(stage int) uint64 {
		w := params.Window(stage)
		c := uint64(rng.RandU01() * float64(w))
		if c >= w {
			c = w - 1
		}
		return c
	}

	stations := make([]station, n)
	for i := range stations {
		stations[i].counter = draw(0)
	}

	var (
		now          time.Duration
		res          = SimResult{Stations: n}
		transmitters = make([]int, 0, n)
	)

	for now < limit {
		// Cancellation is polled rather than checked on every slot.
		if res.Slots&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return SimResult{}, err
			}
		}

		transmitters = transmitters[:0]
		for i := range stations {
			if stations[i].counter == 0 {
				transmitters = append(transmitters, i)
			} else {
				stations[i].counter--
			}
		}
		res.Slots++

		switch len(transmitters) {
		case 0:
			now += params.TEmpty
		case 1:
			now += params.TSuccess
			res.Successes++
			s := &stations[transmitters[0]]
			s.stage = 0
			s.counter = draw(0)
		default:
			now += params.TCollision
			res.Collisions++
			for _, i := range transmitters {
				s := &stations[i]
				s.stage++
				if s.stage >= params.MaxRetries {
					s.stage = 0
					res.Drops++
				}
				s.counter = draw(s.stage)
			}
		}
	}

	res.BitsPerSecond = float64(res.Successes) * float64(8*params.FrameBytes) / now.Seconds()
	return res, nil
}
