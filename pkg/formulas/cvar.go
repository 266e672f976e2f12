package formulas

import (
	"math"
	"sort"
)

// CalculateCVaR calculates Conditional Value at Risk (expected shortfall)
// from a series of historical returns.
//
// CVaR is the average of the returns in the worst (1-confidence) tail.
// Returns 0 for an empty series.
func CalculateCVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	if len(returns) == 1 {
		return returns[0]
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	// For 95% confidence we want the worst 5% of returns
	tailProbability := 1.0 - confidence
	tailCount := int(math.Ceil(float64(len(sorted)) * tailProbability))
	if tailCount == 0 {
		tailCount = 1
	}
	if tailCount > len(sorted) {
		tailCount = len(sorted)
	}

	sum := 0.0
	for _, r := range sorted[:tailCount] {
		sum += r
	}
	return sum / float64(tailCount)
}

// CalculatePortfolioCVaR calculates portfolio-level CVaR from per-period
// portfolio returns obtained by applying weights to per-asset series.
func CalculatePortfolioCVaR(weights []float64, returns [][]float64, confidence float64) float64 {
	if len(returns) == 0 || len(weights) == 0 {
		return 0.0
	}

	portfolio := make([]float64, len(returns))
	for t, row := range returns {
		if len(row) != len(weights) {
			return 0.0
		}
		for i, w := range weights {
			portfolio[t] += w * row[i]
		}
	}

	return CalculateCVaR(portfolio, confidence)
}
