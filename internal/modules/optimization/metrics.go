package optimization

import (
	"fmt"
	"math"
)

// ValidateWeights checks that a weight vector matches the universe size,
// has no negative entries, and sums to 1 within WeightSumTolerance.
func ValidateWeights(weights []float64, n int) error {
	if len(weights) != n {
		return fmt.Errorf("%w: %d weights for %d assets", ErrDimensionMismatch, len(weights), n)
	}
	sum := 0.0
	for i, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: negative weight %g at index %d", ErrInvalidWeights, w, i)
		}
		sum += w
	}
	if math.Abs(sum-1) > WeightSumTolerance {
		return fmt.Errorf("%w: weights sum to %g, expected 1", ErrInvalidWeights, sum)
	}
	return nil
}

// EvaluateWeights reports the annualized performance of a fixed weight
// vector against a moment estimate, including its diversification ratio.
func EvaluateWeights(weights []float64, m *MomentEstimate, riskFree float64) (*PortfolioPoint, error) {
	if m == nil || len(m.Tickers) == 0 {
		return nil, fmt.Errorf("%w: moment estimate has no assets", ErrEmptyUniverse)
	}
	if err := ValidateWeights(weights, len(m.Tickers)); err != nil {
		return nil, err
	}

	p := pointFromWeights(weights, m, riskFree)
	return &PortfolioPoint{
		Weights:              p.Weights,
		ExpectedReturn:       p.ExpectedReturn,
		Volatility:           p.Volatility,
		SharpeRatio:          p.SharpeRatio,
		DiversificationRatio: diversificationRatio(p.Volatility, m),
	}, nil
}

// diversificationRatio compares the average standalone volatility of the
// universe's assets to the portfolio's volatility. A single-asset
// portfolio scores exactly 1; the further above 1, the more the
// correlation structure is dampening risk. Defined as 1 when the
// portfolio volatility is 0.
func diversificationRatio(portfolioVol float64, m *MomentEstimate) float64 {
	if portfolioVol <= 0 {
		return 1
	}
	sumVar := 0.0
	for i := range m.Cov {
		sumVar += m.Cov[i][i]
	}
	avgVol := math.Sqrt(sumVar / float64(len(m.Cov)))
	return avgVol / portfolioVol
}

// AssetMetricsFor builds the per-asset descriptive table shown alongside
// an optimization result: each asset's standalone annualized return,
// volatility and Sharpe ratio plus its weight in the two optimized
// portfolios.
func AssetMetricsFor(m *MomentEstimate, sample *FrontierSample, riskFree float64) map[string]AssetMetrics {
	metrics := make(map[string]AssetMetrics, len(m.Tickers))
	for i, ticker := range m.Tickers {
		vol := math.Sqrt(math.Max(0, m.Cov[i][i]))
		sharpe := 0.0
		if vol > 0 {
			sharpe = (m.Mean[i] - riskFree) / vol
		}
		metrics[ticker] = AssetMetrics{
			WeightMaxSharpe:  sample.MaxSharpe.Weights[i],
			WeightMinVol:     sample.MinVolatility.Weights[i],
			AnnualReturn:     m.Mean[i],
			AnnualVolatility: vol,
			SharpeRatio:      sharpe,
		}
	}
	return metrics
}

// FrontierSeriesFrom flattens a sample into parallel slices for charting.
func FrontierSeriesFrom(sample *FrontierSample) FrontierSeries {
	series := FrontierSeries{
		Returns:      make([]float64, len(sample.Points)),
		Volatilities: make([]float64, len(sample.Points)),
		SharpeRatios: make([]float64, len(sample.Points)),
	}
	for i, p := range sample.Points {
		series.Returns[i] = p.ExpectedReturn
		series.Volatilities[i] = p.Volatility
		series.SharpeRatios[i] = p.SharpeRatio
	}
	return series
}
