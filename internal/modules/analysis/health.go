package analysis

import (
	"github.com/aristath/compass/internal/modules/universe"
)

// ratioBenchmark scores one ratio: full credit at the good threshold,
// half credit at the acceptable one.
type ratioBenchmark struct {
	min, max   *float64 // one of the two is set
	acceptable float64
	good       float64
}

func minBench(acceptable, good float64) ratioBenchmark {
	return ratioBenchmark{min: &acceptable, acceptable: acceptable, good: good}
}

func maxBench(acceptable, good float64) ratioBenchmark {
	return ratioBenchmark{max: &acceptable, acceptable: acceptable, good: good}
}

func (b ratioBenchmark) score(value float64) float64 {
	if b.min != nil {
		if value >= b.good {
			return 1
		}
		if value >= b.acceptable {
			return 0.5
		}
		return 0
	}
	if value <= b.good {
		return 1
	}
	if value <= b.acceptable {
		return 0.5
	}
	return 0
}

// AssessHealth scores a company's financial health on [0, 1] from the
// fundamental ratios the snapshot carries. Only present ratios count,
// so a sparse snapshot is judged on what it has rather than penalized
// for provider gaps. Nil when no scored ratio is available.
func AssessHealth(company *universe.Company) *HealthAssessment {
	if company == nil {
		return nil
	}

	score := 0.0
	maxScore := 0.0
	addRatio := func(value *float64, bench ratioBenchmark) {
		if value == nil {
			return
		}
		score += bench.score(*value)
		maxScore++
	}

	addRatio(company.CurrentRatio, minBench(1.5, 2.0))
	addRatio(company.DebtToEquity, maxBench(0.5, 0.3))
	addRatio(company.ReturnOnEquity, minBench(0.15, 0.20))
	addRatio(company.ProfitMargin, minBench(0.10, 0.15))
	addRatio(company.RevenueGrowth, minBench(0.0, 0.10))

	if maxScore == 0 {
		return nil
	}

	final := score / maxScore
	status := "Poor"
	switch {
	case final >= 0.8:
		status = "Excellent"
	case final >= 0.6:
		status = "Good"
	case final >= 0.4:
		status = "Fair"
	}

	return &HealthAssessment{
		Score:  final,
		Status: status,
		Risks:  identifyRisks(company),
	}
}

func identifyRisks(company *universe.Company) []string {
	var risks []string

	if cr := company.CurrentRatio; cr != nil {
		if *cr < 1.0 {
			risks = append(risks, "High liquidity risk (current ratio < 1.0)")
		} else if *cr < 1.5 {
			risks = append(risks, "Moderate liquidity risk (current ratio < 1.5)")
		}
	}
	if dte := company.DebtToEquity; dte != nil {
		if *dte > 1.0 {
			risks = append(risks, "High leverage risk (debt/equity > 1.0)")
		} else if *dte > 0.5 {
			risks = append(risks, "Moderate leverage risk (debt/equity > 0.5)")
		}
	}
	if pm := company.ProfitMargin; pm != nil && *pm < 0.05 {
		risks = append(risks, "Low profitability (net margin < 5%)")
	}
	if fcf := company.FreeCashFlow; fcf != nil && *fcf < 0 {
		risks = append(risks, "Negative free cash flow")
	}
	if rg := company.RevenueGrowth; rg != nil && *rg < 0 {
		risks = append(risks, "Declining revenue")
	}

	return risks
}
