package optimization

import "fmt"

// BuildReturnSeries converts an aligned table of adjusted daily closes
// into per-period fractional returns: return[t][a] = price[t][a] / price[t-1][a] - 1.
//
// Periods whose prior price is not strictly positive are dropped so no
// undefined (divide-by-zero) entry ever reaches the series. The first
// row of the history has no prior observation and produces no period.
func BuildReturnSeries(history *PriceHistory) (*ReturnSeries, error) {
	if history == nil || len(history.Tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers in price history", ErrEmptyUniverse)
	}
	if len(history.Dates) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 aligned observations, got %d",
			ErrInsufficientData, len(history.Dates))
	}

	rows := len(history.Dates)
	for _, ticker := range history.Tickers {
		prices, ok := history.Prices[ticker]
		if !ok {
			return nil, fmt.Errorf("%w: no price series for %s", ErrInsufficientData, ticker)
		}
		if len(prices) != rows {
			return nil, fmt.Errorf("%w: %s has %d prices, expected %d",
				ErrDimensionMismatch, ticker, len(prices), rows)
		}
	}

	n := len(history.Tickers)
	periods := make([][]float64, 0, rows-1)
	for t := 1; t < rows; t++ {
		row := make([]float64, n)
		valid := true
		for a, ticker := range history.Tickers {
			prev := history.Prices[ticker][t-1]
			if prev <= 0 {
				valid = false
				break
			}
			row[a] = history.Prices[ticker][t]/prev - 1
		}
		if valid {
			periods = append(periods, row)
		}
	}

	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no valid return periods after dropping zero-price rows",
			ErrInsufficientData)
	}

	tickers := make([]string, n)
	copy(tickers, history.Tickers)

	return &ReturnSeries{Tickers: tickers, Periods: periods}, nil
}
