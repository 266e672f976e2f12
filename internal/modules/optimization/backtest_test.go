package optimization

import (
	"math"
	"testing"

	"github.com/aristath/compass/pkg/formulas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backtestSeries() *ReturnSeries {
	return &ReturnSeries{
		Tickers: []string{"AAPL", "MSFT"},
		Periods: [][]float64{
			{0.02, 0.00},
			{-0.01, -0.03},
			{0.04, 0.02},
		},
	}
}

func TestBacktest(t *testing.T) {
	result, err := Backtest([]float64{0.5, 0.5}, backtestSeries(), 252, 0.0)
	require.NoError(t, err)

	// Portfolio returns are 0.01, -0.02, 0.03 per period.
	portfolio := []float64{0.01, -0.02, 0.03}

	wantTotal := 1.01*0.98*1.03 - 1
	assert.InDelta(t, wantTotal, result.TotalReturn, 1e-12)
	assert.InDelta(t, wantTotal*252/3, result.AnnualReturn, 1e-9)

	wantVol := formulas.StdDev(portfolio) * math.Sqrt(252)
	assert.InDelta(t, wantVol, result.AnnualVolatility, 1e-9)
	assert.InDelta(t, result.AnnualReturn/wantVol, result.SharpeRatio, 1e-9)

	wantDownside := formulas.DownsideDeviation(portfolio) * math.Sqrt(252)
	assert.InDelta(t, result.AnnualReturn/wantDownside, result.SortinoRatio, 1e-9)

	assert.InDelta(t, -0.02, result.MaxDrawdown, 1e-9)

	// Worst 5% of three periods is just the single worst return.
	assert.InDelta(t, -0.02, result.CVaR95, 1e-12)
	assert.InDelta(t, result.AnnualReturn/0.02, result.CalmarRatio, 1e-6)

	assert.InDelta(t, 2.0/3.0, result.WinRate, 1e-12)
	assert.InDelta(t, 0.02, result.AvgWin, 1e-12)
	assert.InDelta(t, -0.02, result.AvgLoss, 1e-12)
	assert.InDelta(t, 2.0, result.ProfitFactor, 1e-9)
	assert.Equal(t, 3, result.Periods)
}

func TestBacktestAllPositivePeriods(t *testing.T) {
	rs := &ReturnSeries{
		Tickers: []string{"AAPL"},
		Periods: [][]float64{{0.01}, {0.02}, {0.01}},
	}
	result, err := Backtest([]float64{1.0}, rs, 252, 0.0)
	require.NoError(t, err)

	// No losing periods: downside-based and loss-based ratios fall back to 0.
	assert.Equal(t, 0.0, result.SortinoRatio)
	assert.Equal(t, 0.0, result.CalmarRatio)
	assert.Equal(t, 0.0, result.MaxDrawdown)
	assert.Equal(t, 0.0, result.ProfitFactor)
	assert.Equal(t, 0.0, result.AvgLoss)
	assert.Equal(t, 1.0, result.WinRate)
}

func TestBacktestErrors(t *testing.T) {
	_, err := Backtest([]float64{1.0}, nil, 252, 0.0)
	assert.ErrorIs(t, err, ErrEmptyReturnSeries)

	_, err = Backtest([]float64{1.0}, &ReturnSeries{Tickers: []string{"AAPL"}}, 252, 0.0)
	assert.ErrorIs(t, err, ErrEmptyReturnSeries)

	_, err = Backtest([]float64{0.5, 0.5}, &ReturnSeries{
		Tickers: []string{"AAPL"},
		Periods: [][]float64{{0.01}},
	}, 252, 0.0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Backtest([]float64{0.9, 0.3}, backtestSeries(), 252, 0.0)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}
