package bianchi

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidParams is returned when a Params value violates its invariants.
	ErrInvalidParams = errors.New("invalid model parameters")

	// ErrInvalidStationCount is returned for station counts below 1.
	ErrInvalidStationCount = errors.New("station count must be at least 1")

	// ErrInvalidTolerance is returned for non-positive root finder tolerances.
	ErrInvalidTolerance = errors.New("tolerance must be in (0, 1)")

	// ErrNoSignChange is returned by Bisection when the residual has the same
	// sign at both ends of the bracket.
	ErrNoSignChange = errors.New("no sign change detected in [0, 1]")

	// ErrNumeric is returned when a computation produces NaN or Inf.
	ErrNumeric = errors.New("numeric overflow")
)

// Params describes the MAC/PHY configuration of the DCF model.
// A Params value is never mutated after construction; pass it by value.
type Params struct {
	CWMin      uint32        // Minimum contention window
	CWMax      uint32        // Maximum contention window
	MaxRetries int           // Number of backoff stages (transmission attempts)
	TSuccess   time.Duration // Channel busy time of a successful transmission
	TCollision time.Duration // Channel busy time of a collision
	TEmpty     time.Duration // Idle slot duration
	FrameBytes int           // Payload length per frame
}

// DefaultParams returns the 802.11a/g OFDM 6 Mbit/s configuration with
// 2000-byte frames.
func DefaultParams() Params {
	return Params{
		CWMin:      15,
		CWMax:      1023,
		MaxRetries: 7,
		TSuccess:   2870 * time.Microsecond,
		TCollision: 2870 * time.Microsecond,
		TEmpty:     9 * time.Microsecond,
		FrameBytes: 2000,
	}
}

// Validate checks the parameter invariants.
func (p Params) Validate() error {
	switch {
	case p.CWMax < p.CWMin:
		return fmt.Errorf("%w: cwMax %d below cwMin %d", ErrInvalidParams, p.CWMax, p.CWMin)
	case p.MaxRetries < 1:
		return fmt.Errorf("%w: maxRetries %d (need >= 1)", ErrInvalidParams, p.MaxRetries)
	case p.TSuccess <= 0:
		return fmt.Errorf("%w: tSuccess %v must be positive", ErrInvalidParams, p.TSuccess)
	case p.TCollision <= 0:
		return fmt.Errorf("%w: tCollision %v must be positive", ErrInvalidParams, p.TCollision)
	case p.TEmpty <= 0:
		return fmt.Errorf("%w: tEmpty %v must be positive", ErrInvalidParams, p.TEmpty)
	case p.FrameBytes <= 0:
		return fmt.Errorf("%w: frameBytes %d must be positive", ErrInvalidParams, p.FrameBytes)
	}
	return nil
}

// Window returns the contention window size at backoff stage i:
//
//	W_i = min((CWMin+1)·2^i, CWMax+1)
//
// The doubling stops as soon as the cap is reached, so large stages never
// overflow.
func (p Params) Window(stage int) uint64 {
	limit := uint64(p.CWMax) + 1
	w := uint64(p.CWMin) + 1
	for i := 0; i < stage && w < limit; i++ {
		w <<= 1
	}
	if w > limit {
		w = limit
	}
	return w
}

// MaxBitRate returns FrameBytes/TSuccess in bits per second, the upper bound
// no saturation throughput can reach.
func (p Params) MaxBitRate() float64 {
	return float64(8*p.FrameBytes) / p.TSuccess.Seconds()
}

func validateStations(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidStationCount, n)
	}
	return nil
}

func validateTolerance(eps float64) error {
	if !(eps > 0 && eps < 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidTolerance, eps)
	}
	return nil
}
