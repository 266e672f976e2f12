package analysis

import (
	"math"

	"github.com/aristath/compass/internal/modules/universe"
)

// DCF assumptions. Deliberately conservative single-scenario inputs;
// this is a screening estimate, not a research-grade model.
const (
	dcfGrowthRate     = 0.05
	dcfTerminalGrowth = 0.025
	dcfDiscountRate   = 0.08
	dcfYears          = 5
)

// Graham formula caps assumed growth so a single hot year cannot
// inflate the intrinsic value.
const grahamMaxGrowth = 0.15

// DCFValuation projects free cash flow over five years plus a terminal
// value and discounts everything back to a per-share fair value.
// Returns nil when FCF, share count or price make the model undefined.
func DCFValuation(fcf, sharesOutstanding, currentPrice float64) *DCFResult {
	if fcf <= 0 || sharesOutstanding <= 0 || currentPrice <= 0 {
		return nil
	}

	pvSum := 0.0
	projected := fcf
	for year := 1; year <= dcfYears; year++ {
		projected *= 1 + dcfGrowthRate
		pvSum += projected / math.Pow(1+dcfDiscountRate, float64(year))
	}

	terminalFCF := projected * (1 + dcfTerminalGrowth)
	terminalValue := terminalFCF / (dcfDiscountRate - dcfTerminalGrowth)
	pvTerminal := terminalValue / math.Pow(1+dcfDiscountRate, dcfYears)

	enterpriseValue := pvSum + pvTerminal
	fairValue := enterpriseValue / sharesOutstanding

	return &DCFResult{
		FairValue:    fairValue,
		CurrentPrice: currentPrice,
		UpsidePct:    (fairValue - currentPrice) / currentPrice * 100,
		FCF:          fcf,
		GrowthRate:   dcfGrowthRate,
		DiscountRate: dcfDiscountRate,
		Undervalued:  fairValue > currentPrice,
	}
}

// GrahamValuation computes the Graham number sqrt(22.5 x EPS x BVPS)
// and the Graham formula V = EPS x (8.5 + 2g). Returns nil when EPS or
// book value are non-positive.
func GrahamValuation(eps, bookValuePerShare, earningsGrowth, currentPrice float64) *GrahamResult {
	if eps <= 0 || bookValuePerShare <= 0 || currentPrice <= 0 {
		return nil
	}

	growth := earningsGrowth
	if growth > grahamMaxGrowth {
		growth = grahamMaxGrowth
	}
	if growth < 0 {
		growth = 0
	}

	grahamNumber := math.Sqrt(22.5 * eps * bookValuePerShare)
	intrinsic := eps * (8.5 + 2*growth)
	safetyPrice := intrinsic * 0.75

	return &GrahamResult{
		GrahamNumber:         grahamNumber,
		IntrinsicValue:       intrinsic,
		MarginOfSafetyPrice:  safetyPrice,
		CurrentPrice:         currentPrice,
		GrowthAssumption:     growth,
		UndervaluedGraham:    currentPrice < grahamNumber,
		UndervaluedIntrinsic: currentPrice < safetyPrice,
	}
}

// SummarizeValuation runs every valuation method the company's data
// supports and averages the fair values. Nil when no method could run.
func SummarizeValuation(company *universe.Company) *ValuationSummary {
	if company == nil || company.CurrentPrice == nil || *company.CurrentPrice <= 0 {
		return nil
	}
	price := *company.CurrentPrice

	summary := &ValuationSummary{CurrentPrice: price}
	var fairValues, upsides []float64

	if company.FreeCashFlow != nil && company.SharesOutstanding != nil {
		if dcf := DCFValuation(*company.FreeCashFlow, *company.SharesOutstanding, price); dcf != nil {
			summary.DCF = dcf
			fairValues = append(fairValues, dcf.FairValue)
			upsides = append(upsides, dcf.UpsidePct)
		}
	}

	if company.EPS != nil && company.BookValue != nil {
		growth := 0.05
		if company.EarningsGrowth != nil {
			growth = *company.EarningsGrowth
		}
		if graham := GrahamValuation(*company.EPS, *company.BookValue, growth, price); graham != nil {
			summary.Graham = graham
			fairValues = append(fairValues, graham.IntrinsicValue)
			upsides = append(upsides, (graham.MarginOfSafetyPrice-price)/price*100)
		}
	}

	if len(fairValues) == 0 {
		return nil
	}

	for _, v := range fairValues {
		summary.AverageFairValue += v
	}
	summary.AverageFairValue /= float64(len(fairValues))
	for _, u := range upsides {
		summary.AverageUpsidePct += u
	}
	summary.AverageUpsidePct /= float64(len(upsides))
	summary.Undervalued = summary.AverageFairValue > price

	return summary
}
