package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/compass/internal/modules/analysis"
	"github.com/aristath/compass/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Scoring weights: valuation and health carry the report, technicals
// only tilt it.
const (
	valuationWeight = 40.0
	healthWeight    = 40.0
	technicalWeight = 20.0
)

// Generator produces stock reports from the market database and
// archives the headline numbers.
type Generator struct {
	companyRepo *universe.CompanyRepository
	priceRepo   *universe.PriceRepository
	resultRepo  *ResultRepository
	log         zerolog.Logger
}

// NewGenerator creates a report generator. resultRepo may be nil to
// skip archiving.
func NewGenerator(
	companyRepo *universe.CompanyRepository,
	priceRepo *universe.PriceRepository,
	resultRepo *ResultRepository,
	log zerolog.Logger,
) *Generator {
	return &Generator{
		companyRepo: companyRepo,
		priceRepo:   priceRepo,
		resultRepo:  resultRepo,
		log:         log.With().Str("service", "report_generator").Logger(),
	}
}

// GenerateStockReport builds the full report for one ticker. Sections
// without enough data are omitted and the composite score renormalizes
// over the sections that ran.
func (g *Generator) GenerateStockReport(ctx context.Context, ticker string) (*StockReport, error) {
	company, err := g.companyRepo.GetByTicker(ticker)
	if err != nil {
		return nil, err
	}

	report := &StockReport{
		Ticker:      company.Ticker,
		GeneratedAt: time.Now().UTC(),
		Valuation:   analysis.SummarizeValuation(company),
		Health:      analysis.AssessHealth(company),
	}

	bars, err := g.priceRepo.GetDailyPrices(ticker, 252)
	if err != nil {
		return nil, err
	}
	if technical, err := analysis.AnalyzeTechnical(ticker, bars); err != nil {
		g.log.Debug().Err(err).Str("ticker", ticker).Msg("Skipping technical section")
	} else {
		report.Technical = technical
	}

	if report.Valuation == nil && report.Health == nil && report.Technical == nil {
		return nil, fmt.Errorf("no report section has enough data for %s", ticker)
	}

	report.Recommendation = scoreReport(report)
	report.Risks = assessRisks(report)

	if g.resultRepo != nil {
		if err := g.resultRepo.SaveAnalysis(ctx, report); err != nil {
			g.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to archive analysis result")
		}
	}

	g.log.Info().
		Str("ticker", ticker).
		Str("recommendation", report.Recommendation.Recommendation).
		Float64("score", report.Recommendation.Score).
		Msg("Generated stock report")

	return report, nil
}

// scoreReport combines the section scores into a 0-100 composite and
// maps it onto a recommendation.
func scoreReport(report *StockReport) Recommendation {
	score := 0.0
	maxScore := 0.0

	if v := report.Valuation; v != nil {
		switch {
		case v.Undervalued:
			score += valuationWeight
		case v.AverageUpsidePct > 10:
			score += valuationWeight * 0.75
		case v.AverageUpsidePct > 0:
			score += valuationWeight * 0.5
		default:
			score += valuationWeight * 0.25
		}
		maxScore += valuationWeight
	}

	if h := report.Health; h != nil {
		score += h.Score * healthWeight
		maxScore += healthWeight
	}

	if t := report.Technical; t != nil {
		switch t.Bias {
		case "Bullish":
			score += technicalWeight
		case "Bearish":
			score += technicalWeight * 0.25
		default:
			score += technicalWeight * 0.6
		}
		maxScore += technicalWeight
	}

	final := 0.0
	if maxScore > 0 {
		final = score / maxScore * 100
	}

	rec := RecStrongSell
	confidence := "High"
	switch {
	case final >= 80:
		rec = RecStrongBuy
		confidence = "High"
	case final >= 65:
		rec = RecBuy
		confidence = "Medium"
	case final >= 50:
		rec = RecHold
		confidence = "Low"
	case final >= 35:
		rec = RecSell
		confidence = "Medium"
	}

	return Recommendation{
		Score:          final,
		Recommendation: rec,
		Confidence:     confidence,
		Rationale:      buildRationale(report),
	}
}

func buildRationale(report *StockReport) string {
	var parts []string

	if v := report.Valuation; v != nil {
		if v.Undervalued {
			parts = append(parts, "Stock appears undervalued based on multiple valuation methods.")
		} else {
			parts = append(parts, "Stock appears fairly valued or overvalued.")
		}
	}

	if h := report.Health; h != nil {
		switch h.Status {
		case "Excellent":
			parts = append(parts, "Excellent financial health with strong fundamentals.")
		case "Good":
			parts = append(parts, "Good financial health with solid fundamentals.")
		case "Fair":
			parts = append(parts, "Fair financial health, monitor closely.")
		default:
			parts = append(parts, "Poor financial health, significant risks present.")
		}
	}

	if t := report.Technical; t != nil {
		switch t.Bias {
		case "Bullish":
			parts = append(parts, "Technical indicators show bullish momentum.")
		case "Bearish":
			parts = append(parts, "Technical indicators show bearish momentum.")
		}
	}

	return strings.Join(parts, " ")
}

// assessRisks buckets risk flags by severity across all sections.
func assessRisks(report *StockReport) RiskAssessment {
	risks := RiskAssessment{
		High:   []string{},
		Medium: []string{},
		Low:    []string{},
	}

	if h := report.Health; h != nil {
		for _, risk := range h.Risks {
			switch {
			case strings.Contains(risk, "High") || strings.Contains(risk, "Negative"):
				risks.High = append(risks.High, risk)
			case strings.Contains(risk, "Moderate"):
				risks.Medium = append(risks.Medium, risk)
			default:
				risks.Low = append(risks.Low, risk)
			}
		}
	}

	if v := report.Valuation; v != nil && v.DCF == nil {
		risks.Medium = append(risks.Medium, "Free cash flow unavailable for DCF valuation")
	}

	if t := report.Technical; t != nil && t.Indicators.RSI != nil {
		rsi := *t.Indicators.RSI
		if rsi > 80 {
			risks.High = append(risks.High, "Extremely overbought (RSI > 80)")
		} else if rsi > 70 {
			risks.Medium = append(risks.Medium, "Overbought (RSI > 70)")
		}
	}

	risks.TotalRisks = len(risks.High) + len(risks.Medium) + len(risks.Low)
	switch {
	case len(risks.High) > 2:
		risks.OverallRisk = "High"
	case risks.TotalRisks > 3:
		risks.OverallRisk = "Medium"
	default:
		risks.OverallRisk = "Low"
	}

	return risks
}
