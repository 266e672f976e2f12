// Package analysis produces per-company research: technical indicator
// snapshots, intrinsic value estimates and a financial health
// assessment. All calculations work off the market database; nothing
// here talks to external providers.
package analysis

// MovingAverages holds the standard trend snapshot.
type MovingAverages struct {
	SMA20  *float64 `json:"sma_20,omitempty"`
	SMA50  *float64 `json:"sma_50,omitempty"`
	SMA200 *float64 `json:"sma_200,omitempty"`
}

// TechnicalIndicators is the indicator snapshot backing the signal list.
type TechnicalIndicators struct {
	RSI            *float64 `json:"rsi,omitempty"`
	MACD           *float64 `json:"macd,omitempty"`
	MACDSignal     *float64 `json:"macd_signal,omitempty"`
	MACDHistogram  *float64 `json:"macd_histogram,omitempty"`
	BollingerUpper *float64 `json:"bb_upper,omitempty"`
	BollingerLower *float64 `json:"bb_lower,omitempty"`
	PriceChange1D  *float64 `json:"price_change_1d,omitempty"`  // percent
	PriceChange5D  *float64 `json:"price_change_5d,omitempty"`  // percent
	PriceChange1Mo *float64 `json:"price_change_1mo,omitempty"` // percent
	Support        *float64 `json:"support,omitempty"`
	Resistance     *float64 `json:"resistance,omitempty"`
	VolumeRatio    *float64 `json:"volume_ratio,omitempty"`
}

// TechnicalAnalysis is the full technical section for one ticker.
type TechnicalAnalysis struct {
	Ticker         string              `json:"ticker"`
	CurrentPrice   float64             `json:"current_price"`
	Indicators     TechnicalIndicators `json:"indicators"`
	MovingAverages MovingAverages      `json:"moving_averages"`
	Signals        []string            `json:"signals"`
	Bias           string              `json:"bias"` // Bullish / Bearish / Neutral
}

// DCFResult is a simplified discounted cash flow estimate.
type DCFResult struct {
	FairValue    float64 `json:"fair_value"`
	CurrentPrice float64 `json:"current_price"`
	UpsidePct    float64 `json:"upside_pct"`
	FCF          float64 `json:"fcf"`
	GrowthRate   float64 `json:"growth_rate"`
	DiscountRate float64 `json:"discount_rate"`
	Undervalued  bool    `json:"is_undervalued"`
}

// GrahamResult is the Benjamin Graham intrinsic value estimate.
type GrahamResult struct {
	GrahamNumber         float64 `json:"graham_number"`
	IntrinsicValue       float64 `json:"intrinsic_value"`
	MarginOfSafetyPrice  float64 `json:"margin_of_safety_price"`
	CurrentPrice         float64 `json:"current_price"`
	GrowthAssumption     float64 `json:"growth_assumption"`
	UndervaluedGraham    bool    `json:"is_undervalued_graham"`
	UndervaluedIntrinsic bool    `json:"is_undervalued_intrinsic"`
}

// ValuationSummary aggregates whichever valuation methods had enough
// data to run.
type ValuationSummary struct {
	DCF              *DCFResult    `json:"dcf,omitempty"`
	Graham           *GrahamResult `json:"graham,omitempty"`
	CurrentPrice     float64       `json:"current_price"`
	AverageFairValue float64       `json:"average_fair_value"`
	AverageUpsidePct float64       `json:"average_upside_pct"`
	Undervalued      bool          `json:"is_undervalued"`
}

// HealthAssessment scores financial health on [0, 1] from ratio
// benchmarks and lists concrete risk flags.
type HealthAssessment struct {
	Score  float64  `json:"score"`
	Status string   `json:"status"` // Excellent / Good / Fair / Poor
	Risks  []string `json:"risks"`
}
