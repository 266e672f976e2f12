// Package universe manages the tracked company universe and its daily
// price history in the market database.
package universe

// Company represents a tracked company with the fundamental snapshot
// used by the analysis module. Ratio fields are nullable because data
// providers routinely omit them (ETFs, recent IPOs, foreign listings).
type Company struct {
	Ticker            string   `json:"ticker"`
	Name              string   `json:"name"`
	Sector            string   `json:"sector,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	PERatio           *float64 `json:"pe_ratio,omitempty"`
	ForwardPE         *float64 `json:"forward_pe,omitempty"`
	PriceToBook       *float64 `json:"price_to_book,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`
	RevenueGrowth     *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth    *float64 `json:"earnings_growth,omitempty"`
	DebtToEquity      *float64 `json:"debt_to_equity,omitempty"`
	ReturnOnEquity    *float64 `json:"return_on_equity,omitempty"`
	CurrentRatio      *float64 `json:"current_ratio,omitempty"`
	FreeCashFlow      *float64 `json:"free_cash_flow,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	BookValue         *float64 `json:"book_value,omitempty"` // per share
	CurrentPrice      *float64 `json:"current_price,omitempty"`
	LastUpdated       string   `json:"last_updated,omitempty"` // RFC3339
}

// DailyPrice represents a daily OHLCV price point. AdjClose is the
// dividend/split adjusted close and is what return calculations use;
// Close is kept for display.
type DailyPrice struct {
	Ticker   string  `json:"ticker"`
	Date     string  `json:"date"` // YYYY-MM-DD
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adj_close"`
	Volume   *int64  `json:"volume,omitempty"`
}
