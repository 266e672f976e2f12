package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// EstimateMoments computes the annualized mean vector and sample
// covariance matrix of a return series. Both are scaled linearly by the
// annualization factor; the covariance uses the N-1 divisor.
//
// The same series always yields the same estimate, so callers can cache
// results keyed by (universe, period).
func EstimateMoments(rs *ReturnSeries, factor float64) (*MomentEstimate, error) {
	if rs == nil || len(rs.Tickers) == 0 {
		return nil, fmt.Errorf("%w: return series has no tickers", ErrEmptyUniverse)
	}
	if len(rs.Periods) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 return periods for covariance, got %d",
			ErrInsufficientData, len(rs.Periods))
	}
	if factor <= 0 {
		factor = DefaultAnnualizationFactor
	}

	n := len(rs.Tickers)
	rows := len(rs.Periods)
	for t, row := range rs.Periods {
		if len(row) != n {
			return nil, fmt.Errorf("%w: period %d has %d entries, expected %d",
				ErrDimensionMismatch, t, len(row), n)
		}
	}

	// Column-major copies so gonum can consume each asset's series directly.
	columns := make([][]float64, n)
	for a := 0; a < n; a++ {
		columns[a] = make([]float64, rows)
		for t := 0; t < rows; t++ {
			columns[a][t] = rs.Periods[t][a]
		}
	}

	mean := make([]float64, n)
	for a := 0; a < n; a++ {
		mean[a] = stat.Mean(columns[a], nil) * factor
	}

	cov := make([][]float64, n)
	for i := 0; i < n; i++ {
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := stat.Covariance(columns[i], columns[j], nil) * factor
			cov[i][j] = c
			cov[j][i] = c
		}
	}

	tickers := make([]string, n)
	copy(tickers, rs.Tickers)

	return &MomentEstimate{
		Tickers: tickers,
		Mean:    mean,
		Cov:     cov,
		Factor:  factor,
		Periods: rows,
	}, nil
}
