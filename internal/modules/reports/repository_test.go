package reports

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/compass/internal/modules/analysis"
	"github.com/aristath/compass/internal/modules/optimization"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupResultsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE analysis_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT NOT NULL,
			analyzed_at TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			composite_score REAL NOT NULL,
			valuation_score REAL,
			health_score REAL,
			technical_score REAL,
			fair_value REAL,
			current_price REAL,
			details TEXT
		);
		CREATE TABLE optimization_runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			tickers TEXT NOT NULL,
			period TEXT,
			trials INTEGER NOT NULL,
			partial INTEGER NOT NULL DEFAULT 0,
			result TEXT NOT NULL
		);
	`)
	require.NoError(t, err)
	return db
}

func sampleReport(ticker string, score float64) *StockReport {
	return &StockReport{
		Ticker:      ticker,
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Valuation: &analysis.ValuationSummary{
			CurrentPrice:     100,
			AverageFairValue: 120,
			AverageUpsidePct: 20,
			Undervalued:      true,
		},
		Health: &analysis.HealthAssessment{Score: 0.8, Status: "Excellent"},
		Recommendation: Recommendation{
			Score:          score,
			Recommendation: RecBuy,
			Confidence:     "Medium",
		},
	}
}

func TestResultRepositorySaveAndLatest(t *testing.T) {
	repo := NewResultRepository(setupResultsDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.SaveAnalysis(ctx, sampleReport("AAPL", 60)))
	require.NoError(t, repo.SaveAnalysis(ctx, sampleReport("AAPL", 72)))
	require.NoError(t, repo.SaveAnalysis(ctx, sampleReport("MSFT", 55)))

	latest, err := repo.LatestAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	// One row per ticker, ordered by ticker, newest row wins.
	assert.Equal(t, "AAPL", latest[0].Ticker)
	assert.Equal(t, 72.0, latest[0].CompositeScore)
	assert.Equal(t, "MSFT", latest[1].Ticker)

	require.NotNil(t, latest[0].ValuationScore)
	assert.Equal(t, 20.0, *latest[0].ValuationScore)
	require.NotNil(t, latest[0].HealthScore)
	assert.Equal(t, 0.8, *latest[0].HealthScore)
	require.NotNil(t, latest[0].FairValue)
	assert.Equal(t, 120.0, *latest[0].FairValue)
	assert.Nil(t, latest[0].TechnicalScore)
}

func TestResultRepositoryHistory(t *testing.T) {
	repo := NewResultRepository(setupResultsDB(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.SaveAnalysis(ctx, sampleReport("AAPL", 50)))
	require.NoError(t, repo.SaveAnalysis(ctx, sampleReport("AAPL", 65)))
	require.NoError(t, repo.SaveAnalysis(ctx, sampleReport("MSFT", 40)))

	history, err := repo.AnalysisHistory(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Most recent first.
	assert.Equal(t, 65.0, history[0].CompositeScore)
	assert.Equal(t, 50.0, history[1].CompositeScore)

	history, err = repo.AnalysisHistory(ctx, "AAPL", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 65.0, history[0].CompositeScore)
}

func TestResultRepositoryRunRoundTrip(t *testing.T) {
	repo := NewResultRepository(setupResultsDB(t), zerolog.Nop())
	ctx := context.Background()

	result := &optimization.PortfolioResult{
		RunID:   "run-123",
		Tickers: []string{"AAPL", "MSFT"},
		MaxSharpe: optimization.FrontierPoint{
			Weights:        []float64{0.6, 0.4},
			ExpectedReturn: 0.12,
			Volatility:     0.18,
			SharpeRatio:    0.44,
		},
		MinVolatility: optimization.FrontierPoint{
			Weights:        []float64{0.3, 0.7},
			ExpectedReturn: 0.08,
			Volatility:     0.11,
			SharpeRatio:    0.36,
		},
		DiversificationRatio: 1.25,
		Trials:               5000,
		Partial:              true,
		GeneratedAt:          time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveRun(ctx, result, "1y"))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-123", runs[0].RunID)
	assert.Equal(t, "AAPL,MSFT", runs[0].Tickers)
	assert.Equal(t, "1y", runs[0].Period)
	assert.Equal(t, 5000, runs[0].Trials)
	assert.True(t, runs[0].Partial)

	// The stored JSON round-trips the result numerically unchanged.
	got, err := repo.GetRun(ctx, "run-123")
	require.NoError(t, err)
	assert.Equal(t, result.Tickers, got.Tickers)
	assert.Equal(t, result.MaxSharpe.Weights, got.MaxSharpe.Weights)
	assert.Equal(t, result.MaxSharpe.ExpectedReturn, got.MaxSharpe.ExpectedReturn)
	assert.Equal(t, result.MinVolatility, got.MinVolatility)
	assert.Equal(t, result.DiversificationRatio, got.DiversificationRatio)
	assert.True(t, got.Partial)
}

func TestResultRepositoryRunNotFound(t *testing.T) {
	repo := NewResultRepository(setupResultsDB(t), zerolog.Nop())

	_, err := repo.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
