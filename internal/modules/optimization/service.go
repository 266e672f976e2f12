package optimization

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PriceProvider supplies aligned adjusted-close history for a set of
// tickers. Implementations align on the intersection of trading dates
// so every ticker has a price for every returned date.
type PriceProvider interface {
	FetchHistory(ctx context.Context, tickers []string, period string) (*PriceHistory, error)
}

// MomentCache stores moment estimates between runs so repeated
// optimizations over the same universe and period skip the estimation
// pass. A nil cache disables caching.
type MomentCache interface {
	GetMoments(key string) (*MomentEstimate, bool)
	SetMoments(key string, m *MomentEstimate)
}

// OptimizeOptions are the per-run knobs of the optimization service.
// Zero values fall back to the service defaults.
type OptimizeOptions struct {
	Period         string
	Trials         int
	RiskFreeRate   *float64
	Seed           *int64
	CurrentWeights []float64
}

// BacktestOptions configure a backtest run.
type BacktestOptions struct {
	Period       string
	RiskFreeRate *float64
}

// Service orchestrates the optimization pipeline: fetch history, build
// returns, estimate moments, sample the frontier, and assemble the
// result.
type Service struct {
	provider     PriceProvider
	cache        MomentCache
	riskFreeRate float64
	factor       float64
	trials       int
	log          zerolog.Logger
}

// NewService creates an optimization service. cache may be nil. trials
// is the sample count used when a request does not set its own.
func NewService(provider PriceProvider, cache MomentCache, riskFreeRate, factor float64, trials int, log zerolog.Logger) *Service {
	if riskFreeRate == 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	if factor <= 0 {
		factor = DefaultAnnualizationFactor
	}
	if trials <= 0 {
		trials = DefaultTrials
	}
	return &Service{
		provider:     provider,
		cache:        cache,
		riskFreeRate: riskFreeRate,
		factor:       factor,
		trials:       trials,
		log:          log.With().Str("service", "optimization").Logger(),
	}
}

// Optimize runs the full pipeline for a ticker universe and returns the
// aggregate result. When CurrentWeights is nil an equal-weight portfolio
// stands in as the current one.
func (s *Service) Optimize(ctx context.Context, tickers []string, opts OptimizeOptions) (*PortfolioResult, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", ErrEmptyUniverse)
	}

	riskFree := s.riskFreeRate
	if opts.RiskFreeRate != nil {
		riskFree = *opts.RiskFreeRate
	}

	m, err := s.moments(ctx, tickers, opts.Period)
	if err != nil {
		return nil, err
	}

	trials := opts.Trials
	if trials <= 0 {
		trials = s.trials
	}

	started := time.Now()
	sample, err := SampleFrontier(ctx, m, SamplerOptions{
		Trials:       trials,
		RiskFreeRate: riskFree,
		Seed:         opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sample frontier: %w", err)
	}
	s.log.Debug().
		Int("trials", sample.Trials).
		Bool("partial", sample.Partial).
		Dur("elapsed", time.Since(started)).
		Msg("Frontier sampling complete")

	current := opts.CurrentWeights
	if current == nil {
		current = equalWeights(len(m.Tickers))
	}
	currentPoint, err := EvaluateWeights(current, m, riskFree)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate current portfolio: %w", err)
	}

	// The headline diversification ratio describes the recommended
	// (max-Sharpe) portfolio, not the incoming one.
	diversification := diversificationRatio(sample.MaxSharpe.Volatility, m)

	return &PortfolioResult{
		RunID:                uuid.New().String(),
		Tickers:              m.Tickers,
		Current:              *currentPoint,
		MaxSharpe:            sample.MaxSharpe,
		MinVolatility:        sample.MinVolatility,
		StockMetrics:         AssetMetricsFor(m, sample, riskFree),
		DiversificationRatio: diversification,
		Frontier:             FrontierSeriesFrom(sample),
		Trials:               sample.Trials,
		Partial:              sample.Partial,
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// Backtest evaluates a fixed weight vector over the requested history.
func (s *Service) Backtest(ctx context.Context, tickers []string, weights []float64, opts BacktestOptions) (*BacktestResult, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", ErrEmptyUniverse)
	}

	riskFree := s.riskFreeRate
	if opts.RiskFreeRate != nil {
		riskFree = *opts.RiskFreeRate
	}

	history, err := s.provider.FetchHistory(ctx, tickers, opts.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	rs, err := BuildReturnSeries(history)
	if err != nil {
		return nil, err
	}
	return Backtest(weights, rs, s.factor, riskFree)
}

// moments builds (or retrieves from cache) the moment estimate for a
// universe and period. The cache key is order-independent: the same set
// of tickers hits the same entry regardless of request order.
func (s *Service) moments(ctx context.Context, tickers []string, period string) (*MomentEstimate, error) {
	key := momentKey(tickers, period)
	if s.cache != nil {
		if m, ok := s.cache.GetMoments(key); ok {
			s.log.Debug().Str("key", key).Msg("Moment estimate cache hit")
			return m, nil
		}
	}

	history, err := s.provider.FetchHistory(ctx, tickers, period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	rs, err := BuildReturnSeries(history)
	if err != nil {
		return nil, err
	}
	m, err := EstimateMoments(rs, s.factor)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetMoments(key, m)
	}
	return m, nil
}

func momentKey(tickers []string, period string) string {
	sorted := make([]string, len(tickers))
	copy(sorted, tickers)
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + "|" + period
}

func equalWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}
