package analysis

import (
	"fmt"
	"strings"

	"github.com/aristath/compass/internal/modules/universe"
	"github.com/aristath/compass/pkg/formulas"
)

// Indicator parameters. Standard settings, same as every charting tool.
const (
	rsiPeriod       = 14
	macdFast        = 12
	macdSlow        = 26
	macdSignal      = 9
	bollingerPeriod = 20
	bollingerStdDev = 2.0
	rangeWindow     = 20 // support/resistance lookback
)

// minBarsForTechnical is the smallest history that still yields a
// meaningful snapshot (enough for the 20-day indicators).
const minBarsForTechnical = bollingerPeriod + 2

// AnalyzeTechnical builds the technical section from daily bars in
// ascending date order. Long-window indicators are omitted rather than
// estimated when the history is too short.
func AnalyzeTechnical(ticker string, bars []universe.DailyPrice) (*TechnicalAnalysis, error) {
	if len(bars) < minBarsForTechnical {
		return nil, fmt.Errorf("need at least %d bars for technical analysis of %s, got %d",
			minBarsForTechnical, ticker, len(bars))
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	currentPrice := closes[len(closes)-1]

	ta := &TechnicalAnalysis{
		Ticker:       ticker,
		CurrentPrice: currentPrice,
		MovingAverages: MovingAverages{
			SMA20:  formulas.CalculateSMA(closes, 20),
			SMA50:  formulas.CalculateSMA(closes, 50),
			SMA200: formulas.CalculateSMA(closes, 200),
		},
	}

	ta.Indicators.RSI = formulas.CalculateRSI(closes, rsiPeriod)
	if macd := formulas.CalculateMACD(closes, macdFast, macdSlow, macdSignal); macd != nil {
		ta.Indicators.MACD = &macd.MACD
		ta.Indicators.MACDSignal = &macd.Signal
		ta.Indicators.MACDHistogram = &macd.Histogram
	}
	if bands := formulas.CalculateBollingerBands(closes, bollingerPeriod, bollingerStdDev); bands != nil {
		ta.Indicators.BollingerUpper = &bands.Upper
		ta.Indicators.BollingerLower = &bands.Lower
	}

	ta.Indicators.PriceChange1D = percentChange(closes, 1)
	ta.Indicators.PriceChange5D = percentChange(closes, 5)
	ta.Indicators.PriceChange1Mo = percentChange(closes, 21)

	support, resistance := supportResistance(bars, rangeWindow)
	ta.Indicators.Support = &support
	ta.Indicators.Resistance = &resistance

	ta.Indicators.VolumeRatio = volumeRatio(bars, rangeWindow)

	ta.Signals, ta.Bias = generateSignals(ta)
	return ta, nil
}

func percentChange(closes []float64, lookback int) *float64 {
	if len(closes) <= lookback {
		return nil
	}
	prev := closes[len(closes)-1-lookback]
	if prev == 0 {
		return nil
	}
	change := (closes[len(closes)-1] - prev) / prev * 100
	return &change
}

// supportResistance takes the low/high extremes of the trailing window.
func supportResistance(bars []universe.DailyPrice, window int) (float64, float64) {
	start := len(bars) - window
	if start < 0 {
		start = 0
	}
	support := bars[start].Low
	resistance := bars[start].High
	for _, bar := range bars[start:] {
		if bar.Low < support {
			support = bar.Low
		}
		if bar.High > resistance {
			resistance = bar.High
		}
	}
	return support, resistance
}

// volumeRatio compares the last bar's volume against the trailing
// average. Nil when the feed carries no volume data.
func volumeRatio(bars []universe.DailyPrice, window int) *float64 {
	last := bars[len(bars)-1]
	if last.Volume == nil {
		return nil
	}

	start := len(bars) - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	count := 0
	for _, bar := range bars[start:] {
		if bar.Volume != nil {
			sum += float64(*bar.Volume)
			count++
		}
	}
	if count == 0 || sum == 0 {
		return nil
	}
	ratio := float64(*last.Volume) / (sum / float64(count))
	return &ratio
}

// generateSignals turns the indicator snapshot into human-readable
// signals plus an overall bias derived from the bullish/bearish counts.
func generateSignals(ta *TechnicalAnalysis) ([]string, string) {
	var signals []string
	price := ta.CurrentPrice

	if sma20 := ta.MovingAverages.SMA20; sma20 != nil {
		if price > *sma20 {
			signals = append(signals, "Price above 20-day MA (bullish)")
		} else {
			signals = append(signals, "Price below 20-day MA (bearish)")
		}
	}
	if sma20, sma50, sma200 := ta.MovingAverages.SMA20, ta.MovingAverages.SMA50, ta.MovingAverages.SMA200; sma20 != nil && sma50 != nil && sma200 != nil {
		if *sma20 > *sma50 && *sma50 > *sma200 {
			signals = append(signals, "All MAs in bullish alignment")
		}
	}

	if rsi := ta.Indicators.RSI; rsi != nil {
		switch {
		case *rsi > 70:
			signals = append(signals, "RSI > 70 (overbought)")
		case *rsi < 30:
			signals = append(signals, "RSI < 30 (oversold)")
		default:
			signals = append(signals, "RSI neutral")
		}
	}

	if macd, signal := ta.Indicators.MACD, ta.Indicators.MACDSignal; macd != nil && signal != nil {
		if *macd > *signal {
			signals = append(signals, "MACD bullish")
		} else {
			signals = append(signals, "MACD bearish")
		}
	}

	if ratio := ta.Indicators.VolumeRatio; ratio != nil && *ratio > 1.5 {
		signals = append(signals, "High volume (significant move)")
	}

	if resistance := ta.Indicators.Resistance; resistance != nil && price > *resistance*0.98 {
		signals = append(signals, "Near resistance level")
	} else if support := ta.Indicators.Support; support != nil && price < *support*1.02 {
		signals = append(signals, "Near support level")
	}

	bullish, bearish := 0, 0
	for _, s := range signals {
		lower := strings.ToLower(s)
		if strings.Contains(lower, "bullish") {
			bullish++
		}
		if strings.Contains(lower, "bearish") {
			bearish++
		}
	}

	bias := "Neutral"
	if bullish > bearish {
		bias = "Bullish"
	} else if bearish > bullish {
		bias = "Bearish"
	}
	signals = append(signals, "Overall bias: "+bias)

	return signals, bias
}
