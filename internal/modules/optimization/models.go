package optimization

import "time"

// Defaults for the sampler and moment estimator.
const (
	// DefaultAnnualizationFactor is trading days per year for daily series.
	DefaultAnnualizationFactor = 252.0

	// DefaultTrials is the number of random portfolios sampled per run.
	DefaultTrials = 10000

	// DefaultRiskFreeRate is the annual risk-free rate used for Sharpe ratios.
	DefaultRiskFreeRate = 0.04

	// WeightSumTolerance is the allowed deviation of a weight vector's sum from 1.
	WeightSumTolerance = 1e-6
)

// PriceHistory is an aligned table of adjusted daily closes: every ticker
// has one price per date. Alignment (dropping or filling missing dates)
// is the provider's responsibility; this core assumes it already happened.
type PriceHistory struct {
	Tickers []string             `json:"tickers"`
	Dates   []string             `json:"dates"` // YYYY-MM-DD, ascending
	Prices  map[string][]float64 `json:"prices"`
}

// ReturnSeries holds per-period fractional return vectors, one scalar per
// asset, in universe order. Length is PriceHistory length - 1.
type ReturnSeries struct {
	Tickers []string    `json:"tickers"`
	Periods [][]float64 `json:"periods"` // Periods[t][a]
}

// MomentEstimate holds the annualized mean-return vector and sample
// covariance matrix over the asset universe. The covariance uses the
// N-1 divisor (sample covariance), matching gonum stat.Covariance.
type MomentEstimate struct {
	Tickers []string    `json:"tickers"`
	Mean    []float64   `json:"mean"`       // annualized
	Cov     [][]float64 `json:"covariance"` // annualized, symmetric PSD
	Factor  float64     `json:"annualization_factor"`
	Periods int         `json:"periods"` // observations the estimate was built from
}

// FrontierPoint is one sampled portfolio: a weight vector plus its
// annualized performance. Weights are in universe order, non-negative,
// and sum to 1 within tolerance. Never mutated after creation.
type FrontierPoint struct {
	Weights        []float64 `json:"weights"`
	ExpectedReturn float64   `json:"expected_return"`
	Volatility     float64   `json:"volatility"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
}

// FrontierSample is the output of one sampling run: the full sample set
// plus the two distinguished points selected by arg-max Sharpe and
// arg-min volatility over the set. The sample approximates the true
// efficient frontier; accuracy improves with the trial count.
type FrontierSample struct {
	Points        []FrontierPoint `json:"points"`
	MaxSharpe     FrontierPoint   `json:"max_sharpe"`
	MinVolatility FrontierPoint   `json:"min_volatility"`
	Trials        int             `json:"trials"`
	Partial       bool            `json:"partial"`
}

// PortfolioPoint is the evaluation of a single weight vector against a
// moment estimate, including the diversification ratio.
type PortfolioPoint struct {
	Weights              []float64 `json:"weights"`
	ExpectedReturn       float64   `json:"expected_return"`
	Volatility           float64   `json:"volatility"`
	SharpeRatio          float64   `json:"sharpe_ratio"`
	DiversificationRatio float64   `json:"diversification_ratio"`
}

// AssetMetrics is descriptive per-asset information: the asset's own
// annualized return and volatility plus its weight in the two optimized
// portfolios. It is not an attribution decomposition.
type AssetMetrics struct {
	WeightMaxSharpe  float64 `json:"weight_max_sharpe"`
	WeightMinVol     float64 `json:"weight_min_vol"`
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
}

// FrontierSeries is the flattened sample set kept for visualization.
type FrontierSeries struct {
	Returns      []float64 `json:"returns"`
	Volatilities []float64 `json:"volatilities"`
	SharpeRatios []float64 `json:"sharpe_ratios"`
}

// PortfolioResult is the aggregate output of an optimization run. All
// fields are flat primitive/list values so the result serializes to JSON
// without cycles and round-trips numerically identical.
type PortfolioResult struct {
	RunID                string                  `json:"run_id"`
	Tickers              []string                `json:"tickers"`
	Current              PortfolioPoint          `json:"current_portfolio"`
	MaxSharpe            FrontierPoint           `json:"max_sharpe"`
	MinVolatility        FrontierPoint           `json:"min_volatility"`
	StockMetrics         map[string]AssetMetrics `json:"stock_metrics"`
	DiversificationRatio float64                 `json:"diversification_ratio"`
	Frontier             FrontierSeries          `json:"efficient_frontier"`
	Trials               int                     `json:"trials"`
	Partial              bool                    `json:"partial"`
	GeneratedAt          time.Time               `json:"generated_at"`
}

// BacktestResult holds realized performance of a fixed weight vector
// over a historical return series.
type BacktestResult struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	CVaR95           float64 `json:"cvar_95"`
	WinRate          float64 `json:"win_rate"`
	AvgWin           float64 `json:"avg_win"`
	AvgLoss          float64 `json:"avg_loss"`
	ProfitFactor     float64 `json:"profit_factor"`
	Periods          int     `json:"periods"`
}
