package optimization

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// SamplerOptions controls a frontier sampling run. Zero values fall back
// to defaults; a nil Seed draws a fresh seed from the wall clock so two
// seedless runs differ.
type SamplerOptions struct {
	Trials       int
	RiskFreeRate float64
	Seed         *int64
	Workers      int
}

// SampleFrontier draws Trials random long-only portfolios over the
// estimate's universe and evaluates each against the annualized moments.
//
// Trial i always uses its own generator seeded with base+i, so a fixed
// base seed reproduces the exact same sample set regardless of worker
// count or scheduling. Cancellation stops the run early and returns the
// points completed so far with Partial set; it is not an error.
func SampleFrontier(ctx context.Context, m *MomentEstimate, opts SamplerOptions) (*FrontierSample, error) {
	if m == nil || len(m.Tickers) == 0 {
		return nil, fmt.Errorf("%w: moment estimate has no assets", ErrEmptyUniverse)
	}
	n := len(m.Tickers)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets to sample a frontier, got %d",
			ErrInvalidInput, n)
	}
	if len(m.Mean) != n || len(m.Cov) != n {
		return nil, fmt.Errorf("%w: moments do not match universe size %d",
			ErrDimensionMismatch, n)
	}

	trials := opts.Trials
	if trials == 0 {
		trials = DefaultTrials
	}
	if trials < 1 {
		return nil, fmt.Errorf("%w: trial count %d must be positive", ErrInvalidInput, trials)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > trials {
		workers = trials
	}

	var baseSeed int64
	if opts.Seed != nil {
		baseSeed = *opts.Seed
	} else {
		baseSeed = time.Now().UnixNano()
	}

	points := make([]FrontierPoint, trials)
	done := make([]bool, trials)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w
		g.Go(func() error {
			for i := start; i < trials; i += workers {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				rng := rand.New(rand.NewSource(baseSeed + int64(i)))
				weights := drawWeights(rng, n)
				points[i] = pointFromWeights(weights, m, opts.RiskFreeRate)
				done[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := points[:0:0]
	partial := false
	for i := range points {
		if done[i] {
			completed = append(completed, points[i])
		} else {
			partial = true
		}
	}
	if len(completed) == 0 {
		return nil, fmt.Errorf("sampling cancelled before any trial completed: %w", ctx.Err())
	}

	sample := &FrontierSample{
		Points:  completed,
		Trials:  len(completed),
		Partial: partial,
	}
	sample.MaxSharpe = completed[0]
	sample.MinVolatility = completed[0]
	for _, p := range completed[1:] {
		if p.SharpeRatio > sample.MaxSharpe.SharpeRatio {
			sample.MaxSharpe = p
		}
		if p.Volatility < sample.MinVolatility.Volatility {
			sample.MinVolatility = p
		}
	}
	return sample, nil
}

// drawWeights samples a point on the simplex by normalizing uniform draws.
// If every draw is zero (vanishing probability) it falls back to equal weights.
func drawWeights(rng *rand.Rand, n int) []float64 {
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		weights[i] = rng.Float64()
		sum += weights[i]
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// pointFromWeights evaluates one weight vector against the moments:
// expected return is the weighted mean, volatility the square root of
// the quadratic form (floored at zero against rounding), and the Sharpe
// ratio the excess return over volatility, defined as 0 when volatility
// is 0.
func pointFromWeights(weights []float64, m *MomentEstimate, riskFree float64) FrontierPoint {
	ret := 0.0
	for i, w := range weights {
		ret += w * m.Mean[i]
	}

	variance := 0.0
	for i, wi := range weights {
		for j, wj := range weights {
			variance += wi * wj * m.Cov[i][j]
		}
	}
	vol := math.Sqrt(math.Max(0, variance))

	sharpe := 0.0
	if vol > 0 {
		sharpe = (ret - riskFree) / vol
	}

	return FrontierPoint{
		Weights:        weights,
		ExpectedReturn: ret,
		Volatility:     vol,
		SharpeRatio:    sharpe,
	}
}
