package reports

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/aristath/compass/internal/modules/universe"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupMarketDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE companies (
			ticker TEXT PRIMARY KEY,
			name TEXT, sector TEXT, industry TEXT,
			market_cap REAL, pe_ratio REAL, forward_pe REAL,
			price_to_book REAL, dividend_yield REAL, beta REAL,
			profit_margin REAL, revenue_growth REAL, earnings_growth REAL,
			debt_to_equity REAL, return_on_equity REAL, current_ratio REAL,
			free_cash_flow REAL, shares_outstanding REAL, eps REAL, book_value REAL,
			current_price REAL, last_updated TEXT
		);
		CREATE TABLE daily_prices (
			ticker TEXT NOT NULL,
			date TEXT NOT NULL,
			open REAL, high REAL, low REAL,
			close REAL NOT NULL,
			adj_close REAL,
			volume INTEGER,
			PRIMARY KEY (ticker, date)
		);
	`)
	require.NoError(t, err)
	return db
}

func fptr(v float64) *float64 { return &v }

func seedUptrend(t *testing.T, priceRepo *universe.PriceRepository, ticker string, bars int) {
	t.Helper()
	prices := make([]universe.DailyPrice, bars)
	volume := int64(1000)
	for i := range prices {
		close := 40 + float64(i)*0.2
		prices[i] = universe.DailyPrice{
			Ticker: ticker,
			Date:   fmt.Sprintf("2024-%02d-%02d", i/28+1, i%28+1),
			Open:   close, High: close * 1.01, Low: close * 0.99,
			Close: close, AdjClose: close,
			Volume: &volume,
		}
	}
	require.NoError(t, priceRepo.UpsertPrices(prices))
}

type generatorFixture struct {
	generator  *Generator
	companies  *universe.CompanyRepository
	prices     *universe.PriceRepository
	resultRepo *ResultRepository
}

func setupGenerator(t *testing.T) *generatorFixture {
	t.Helper()
	marketDB := setupMarketDB(t)
	companies := universe.NewCompanyRepository(marketDB, zerolog.Nop())
	prices := universe.NewPriceRepository(marketDB, zerolog.Nop())
	resultRepo := NewResultRepository(setupResultsDB(t), zerolog.Nop())

	return &generatorFixture{
		generator:  NewGenerator(companies, prices, resultRepo, zerolog.Nop()),
		companies:  companies,
		prices:     prices,
		resultRepo: resultRepo,
	}
}

func TestGenerateStockReportStrongCompany(t *testing.T) {
	f := setupGenerator(t)
	ctx := context.Background()

	require.NoError(t, f.companies.Upsert(&universe.Company{
		Ticker:            "AAPL",
		Name:              "Apple Inc.",
		CurrentPrice:      fptr(50),
		FreeCashFlow:      fptr(1000),
		SharesOutstanding: fptr(100),
		EPS:               fptr(5),
		BookValue:         fptr(40),
		EarningsGrowth:    fptr(0.20),
		CurrentRatio:      fptr(2.5),
		DebtToEquity:      fptr(0.2),
		ReturnOnEquity:    fptr(0.25),
		ProfitMargin:      fptr(0.20),
		RevenueGrowth:     fptr(0.12),
	}))
	seedUptrend(t, f.prices, "AAPL", 60)

	report, err := f.generator.GenerateStockReport(ctx, "AAPL")
	require.NoError(t, err)

	require.NotNil(t, report.Valuation)
	assert.True(t, report.Valuation.Undervalued)
	require.NotNil(t, report.Valuation.DCF)
	require.NotNil(t, report.Valuation.Graham)

	require.NotNil(t, report.Health)
	assert.Equal(t, 1.0, report.Health.Score)
	assert.Equal(t, "Excellent", report.Health.Status)

	require.NotNil(t, report.Technical)
	assert.Equal(t, "Bullish", report.Technical.Bias)

	// All three sections at full marks: 40 + 40 + 20.
	assert.Equal(t, 100.0, report.Recommendation.Score)
	assert.Equal(t, RecStrongBuy, report.Recommendation.Recommendation)
	assert.Equal(t, "High", report.Recommendation.Confidence)
	assert.Contains(t, report.Recommendation.Rationale, "undervalued")

	// A monotone uptrend pegs RSI at 100.
	assert.Contains(t, report.Risks.High, "Extremely overbought (RSI > 80)")
	assert.Equal(t, "Low", report.Risks.OverallRisk)

	// The headline numbers are archived.
	latest, err := f.resultRepo.LatestAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "AAPL", latest[0].Ticker)
	assert.Equal(t, RecStrongBuy, latest[0].Recommendation)
	assert.Equal(t, 100.0, latest[0].CompositeScore)
}

func TestGenerateStockReportWeakCompanyWithoutPrices(t *testing.T) {
	f := setupGenerator(t)

	// No valuation inputs and no price history: only health can run.
	require.NoError(t, f.companies.Upsert(&universe.Company{
		Ticker:        "WEAK",
		Name:          "Weak Corp",
		CurrentPrice:  fptr(50),
		CurrentRatio:  fptr(0.8),
		DebtToEquity:  fptr(1.5),
		ProfitMargin:  fptr(0.02),
		RevenueGrowth: fptr(-0.05),
	}))

	report, err := f.generator.GenerateStockReport(context.Background(), "WEAK")
	require.NoError(t, err)

	assert.Nil(t, report.Valuation)
	assert.Nil(t, report.Technical)
	require.NotNil(t, report.Health)
	assert.Equal(t, "Poor", report.Health.Status)

	// Renormalized over health alone: 0 out of 40.
	assert.Equal(t, 0.0, report.Recommendation.Score)
	assert.Equal(t, RecStrongSell, report.Recommendation.Recommendation)

	assert.Contains(t, report.Risks.High, "High liquidity risk (current ratio < 1.0)")
	assert.Contains(t, report.Risks.High, "High leverage risk (debt/equity > 1.0)")
	assert.Contains(t, report.Risks.Low, "Low profitability (net margin < 5%)")
	assert.Contains(t, report.Risks.Low, "Declining revenue")
	assert.Equal(t, 4, report.Risks.TotalRisks)
	assert.Equal(t, "Medium", report.Risks.OverallRisk)
}

func TestGenerateStockReportUnknownTicker(t *testing.T) {
	f := setupGenerator(t)

	_, err := f.generator.GenerateStockReport(context.Background(), "NOPE")
	assert.ErrorIs(t, err, universe.ErrCompanyNotFound)
}

func TestGenerateStockReportNoUsableData(t *testing.T) {
	f := setupGenerator(t)

	require.NoError(t, f.companies.Upsert(&universe.Company{
		Ticker: "BARE",
		Name:   "Bare Corp",
	}))

	_, err := f.generator.GenerateStockReport(context.Background(), "BARE")
	assert.Error(t, err)
}
