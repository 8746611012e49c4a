package bianchi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// USLCoefficients summarizes how aggregate throughput scales with the number
// of contending stations, using the Universal Scalability Law:
//
//	C(N) = λN / (1 + α(N-1) + βN(N-1))
//
// For a shared medium α is close to 1 (throughput does not grow with N) and
// β > 0 measures the collision-driven retrograde decline.
type USLCoefficients struct {
	Lambda   float64 // λ: Throughput of a single station (bits/s)
	Alpha    float64 // α: Contention coefficient
	Beta     float64 // β: Coordination (collision) coefficient
	RSquared float64 // R²: Goodness of fit (1.0 = perfect)
}

// ScalingPoint is one (station count, aggregate throughput) sample.
type ScalingPoint struct {
	N          int
	Throughput float64
}

// Points extracts the analytical throughput curve from sweep results.
func Points(results []Result) []ScalingPoint {
	pts := make([]ScalingPoint, 0, len(results))
	for _, r := range results {
		pts = append(pts, ScalingPoint{N: r.Stations(), Throughput: r.Throughput.BitsPerSecond})
	}
	return pts
}

// FitContention fits the USL to a throughput curve by linear least squares on
//
//	N/C(N) = 1/λ + (α/λ)(N-1) + (β/λ)N(N-1)
//
// When the unconstrained fit yields β < 0 the model is refitted with β = 0.
func FitContention(points []ScalingPoint) (USLCoefficients, error) {
	pts := make([]ScalingPoint, 0, len(points))
	for _, p := range points {
		if p.Throughput > 0 && p.N > 0 {
			pts = append(pts, p)
		}
	}
	if len(pts) < 3 {
		return USLCoefficients{}, fmt.Errorf("need at least 3 data points, got %d", len(pts))
	}

	b, err := solveUSL(pts, 3)
	if err != nil {
		return USLCoefficients{}, err
	}
	lambda, alpha, beta := 1/b[0], b[1]/b[0], b[2]/b[0]

	if beta < 0 {
		b, err = solveUSL(pts, 2)
		if err != nil {
			return USLCoefficients{}, err
		}
		lambda, alpha, beta = 1/b[0], b[1]/b[0], 0
	}

	var mean float64
	for _, p := range pts {
		mean += p.Throughput
	}
	mean /= float64(len(pts))

	var ssRes, ssTot float64
	for _, p := range pts {
		predicted := uslModel(float64(p.N), lambda, alpha, beta)
		ssRes += (p.Throughput - predicted) * (p.Throughput - predicted)
		ssTot += (p.Throughput - mean) * (p.Throughput - mean)
	}

	rSquared := 1.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	return USLCoefficients{
		Lambda:   lambda,
		Alpha:    alpha,
		Beta:     beta,
		RSquared: rSquared,
	}, nil
}

// solveUSL solves Y = b0 + b1·(N-1) [+ b2·N(N-1)] in the least squares sense.
func solveUSL(pts []ScalingPoint, terms int) ([]float64, error) {
	a := mat.NewDense(len(pts), terms, nil)
	y := mat.NewVecDense(len(pts), nil)
	for i, p := range pts {
		n := float64(p.N)
		a.Set(i, 0, 1)
		a.Set(i, 1, n-1)
		if terms > 2 {
			a.Set(i, 2, n*(n-1))
		}
		y.SetVec(i, n/p.Throughput)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, y); err != nil {
		return nil, fmt.Errorf("usl least squares: %w", err)
	}

	b := make([]float64, terms)
	for i := range b {
		b[i] = x.AtVec(i)
	}
	if b[0] == 0 || math.IsNaN(b[0]) {
		return nil, fmt.Errorf("%w: degenerate usl intercept", ErrNumeric)
	}
	return b, nil
}

func uslModel(n, lambda, alpha, beta float64) float64 {
	return (lambda * n) / (1 + alpha*(n-1) + beta*n*(n-1))
}

// PredictThroughput estimates aggregate throughput for n stations.
func (c USLCoefficients) PredictThroughput(n int) float64 {
	return uslModel(float64(n), c.Lambda, c.Alpha, c.Beta)
}

// PeakStations returns the station count maximizing predicted throughput,
// N* = sqrt((1-α)/β). It returns 1 when throughput never grows with N and
// +Inf when it never declines.
func (c USLCoefficients) PeakStations() float64 {
	if c.Alpha >= 1 {
		return 1
	}
	if c.Beta <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt((1 - c.Alpha) / c.Beta)
}
