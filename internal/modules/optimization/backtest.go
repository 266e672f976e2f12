package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/compass/pkg/formulas"
)

// Backtest applies a fixed weight vector (no rebalancing drift modeling:
// the weights are re-applied every period) to a historical return series
// and reports realized performance.
//
// Annualization is linear: annual return is the total return scaled by
// factor/periods. Ratios with a zero denominator are reported as 0.
func Backtest(weights []float64, rs *ReturnSeries, factor, riskFree float64) (*BacktestResult, error) {
	if rs == nil || len(rs.Periods) == 0 {
		return nil, fmt.Errorf("%w: nothing to backtest", ErrEmptyReturnSeries)
	}
	if err := ValidateWeights(weights, len(rs.Tickers)); err != nil {
		return nil, err
	}
	if factor <= 0 {
		factor = DefaultAnnualizationFactor
	}

	portfolio := make([]float64, len(rs.Periods))
	for t, row := range rs.Periods {
		if len(row) != len(weights) {
			return nil, fmt.Errorf("%w: period %d has %d entries, expected %d",
				ErrDimensionMismatch, t, len(row), len(weights))
		}
		r := 0.0
		for a, w := range weights {
			r += w * row[a]
		}
		portfolio[t] = r
	}

	periods := len(portfolio)
	total := formulas.CumulativeReturn(portfolio)
	annual := total * factor / float64(periods)
	vol := formulas.StdDev(portfolio) * math.Sqrt(factor)

	sharpe := 0.0
	if vol > 0 {
		sharpe = (annual - riskFree) / vol
	}

	sortino := 0.0
	if downside := formulas.DownsideDeviation(portfolio) * math.Sqrt(factor); downside > 0 {
		sortino = (annual - riskFree) / downside
	}

	maxDD := formulas.MaxDrawdown(portfolio)
	calmar := 0.0
	if maxDD < 0 {
		calmar = annual / math.Abs(maxDD)
	}

	cvar := formulas.CalculateCVaR(portfolio, 0.95)

	wins, losses := 0, 0
	winSum, lossSum := 0.0, 0.0
	for _, r := range portfolio {
		switch {
		case r > 0:
			wins++
			winSum += r
		case r < 0:
			losses++
			lossSum += r
		}
	}

	winRate := float64(wins) / float64(periods)
	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 0.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	profitFactor := 0.0
	if lossSum < 0 {
		profitFactor = winSum / math.Abs(lossSum)
	}

	return &BacktestResult{
		TotalReturn:      total,
		AnnualReturn:     annual,
		AnnualVolatility: vol,
		SharpeRatio:      sharpe,
		SortinoRatio:     sortino,
		CalmarRatio:      calmar,
		MaxDrawdown:      maxDD,
		CVaR95:           cvar,
		WinRate:          winRate,
		AvgWin:           avgWin,
		AvgLoss:          avgLoss,
		ProfitFactor:     profitFactor,
		Periods:          periods,
	}, nil
}
