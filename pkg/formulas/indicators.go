package formulas

import (
	"github.com/markcheno/go-talib"
)

// BollingerBands represents Bollinger Bands values
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MACDResult holds the final MACD line, signal line and histogram values
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// CalculateSMA calculates the Simple Moving Average over the last
// 'length' closes. Returns nil if there is not enough data.
func CalculateSMA(closes []float64, length int) *float64 {
	if len(closes) < length || length < 1 {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}
	return nil
}

// CalculateEMA calculates the Exponential Moving Average. Falls back to
// the SMA of the available closes when the series is shorter than length.
func CalculateEMA(closes []float64, length int) *float64 {
	if len(closes) == 0 || length < 1 {
		return nil
	}

	if len(closes) < length {
		sma := Mean(closes)
		return &sma
	}

	ema := talib.Ema(closes, length)
	if len(ema) > 0 && !isNaN(ema[len(ema)-1]) {
		result := ema[len(ema)-1]
		return &result
	}

	sma := Mean(closes[len(closes)-length:])
	return &sma
}

// CalculateRSI calculates the Relative Strength Index.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
//
// Returns the current RSI value (0-100) or nil if insufficient data.
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}
	return nil
}

// CalculateMACD calculates MACD(fast, slow, signal) and returns the
// latest line values. Returns nil if insufficient data.
func CalculateMACD(closes []float64, fast, slow, signal int) *MACDResult {
	if len(closes) < slow+signal {
		return nil
	}

	macd, signalLine, hist := talib.Macd(closes, fast, slow, signal)
	last := len(macd) - 1
	if last < 0 || isNaN(macd[last]) || isNaN(signalLine[last]) {
		return nil
	}
	return &MACDResult{
		MACD:      macd[last],
		Signal:    signalLine[last],
		Histogram: hist[last],
	}
}

// CalculateBollingerBands calculates Bollinger Bands.
//
// Formula:
//
//	Middle Band = N-day SMA
//	Upper Band = Middle + (k x std deviation)
//	Lower Band = Middle - (k x std deviation)
//
// Returns the latest band values or nil if insufficient data.
func CalculateBollingerBands(closes []float64, length int, stdDevMultiplier float64) *BollingerBands {
	if len(closes) < length {
		return nil
	}

	// MAType 0 = SMA
	upper, middle, lower := talib.BBands(closes, length, stdDevMultiplier, stdDevMultiplier, 0)
	last := len(upper) - 1
	if last < 0 || isNaN(upper[last]) {
		return nil
	}
	return &BollingerBands{
		Upper:  upper[last],
		Middle: middle[last],
		Lower:  lower[last],
	}
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
