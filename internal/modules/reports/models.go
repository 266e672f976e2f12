// Package reports assembles per-ticker research reports from the
// analysis sections and archives them alongside optimization runs.
package reports

import (
	"time"

	"github.com/aristath/compass/internal/modules/analysis"
)

// Recommendation labels in descending order of conviction.
const (
	RecStrongBuy  = "STRONG BUY"
	RecBuy        = "BUY"
	RecHold       = "HOLD"
	RecSell       = "SELL"
	RecStrongSell = "STRONG SELL"
)

// Recommendation is the scored verdict of a stock report.
type Recommendation struct {
	Score          float64 `json:"score"` // 0-100
	Recommendation string  `json:"recommendation"`
	Confidence     string  `json:"confidence"` // High / Medium / Low
	Rationale      string  `json:"rationale"`
}

// RiskAssessment buckets the report's risk flags by severity.
type RiskAssessment struct {
	High        []string `json:"high"`
	Medium      []string `json:"medium"`
	Low         []string `json:"low"`
	TotalRisks  int      `json:"total_risks"`
	OverallRisk string   `json:"overall_risk"` // High / Medium / Low
}

// StockReport is the full research report for one ticker.
type StockReport struct {
	Ticker         string                      `json:"ticker"`
	GeneratedAt    time.Time                   `json:"generated_at"`
	Valuation      *analysis.ValuationSummary  `json:"valuation,omitempty"`
	Health         *analysis.HealthAssessment  `json:"financial_health,omitempty"`
	Technical      *analysis.TechnicalAnalysis `json:"technical,omitempty"`
	Recommendation Recommendation              `json:"recommendation"`
	Risks          RiskAssessment              `json:"risk_assessment"`
}

// StoredResult is one archived analysis_results row.
type StoredResult struct {
	ID             int64    `json:"id"`
	Ticker         string   `json:"ticker"`
	AnalyzedAt     string   `json:"analyzed_at"` // RFC3339
	Recommendation string   `json:"recommendation"`
	CompositeScore float64  `json:"composite_score"`
	ValuationScore *float64 `json:"valuation_score,omitempty"`
	HealthScore    *float64 `json:"health_score,omitempty"`
	TechnicalScore *float64 `json:"technical_score,omitempty"`
	FairValue      *float64 `json:"fair_value,omitempty"`
	CurrentPrice   *float64 `json:"current_price,omitempty"`
}

// StoredRun is one archived optimization run header (result payload
// loaded separately).
type StoredRun struct {
	RunID     string `json:"run_id"`
	CreatedAt string `json:"created_at"` // RFC3339
	Tickers   string `json:"tickers"`
	Period    string `json:"period"`
	Trials    int    `json:"trials"`
	Partial   bool   `json:"partial"`
}
