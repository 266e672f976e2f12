package analysis

import (
	"testing"

	"github.com/aristath/compass/internal/modules/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessHealthExcellent(t *testing.T) {
	company := &universe.Company{
		Ticker:         "GOOD",
		CurrentRatio:   float64Ptr(2.5),
		DebtToEquity:   float64Ptr(0.2),
		ReturnOnEquity: float64Ptr(0.25),
		ProfitMargin:   float64Ptr(0.20),
		RevenueGrowth:  float64Ptr(0.15),
	}

	health := AssessHealth(company)
	require.NotNil(t, health)
	assert.Equal(t, 1.0, health.Score)
	assert.Equal(t, "Excellent", health.Status)
	assert.Empty(t, health.Risks)
}

func TestAssessHealthPoor(t *testing.T) {
	company := &universe.Company{
		Ticker:         "BAD",
		CurrentRatio:   float64Ptr(0.8),
		DebtToEquity:   float64Ptr(1.5),
		ReturnOnEquity: float64Ptr(0.02),
		ProfitMargin:   float64Ptr(0.01),
		RevenueGrowth:  float64Ptr(-0.10),
		FreeCashFlow:   float64Ptr(-5e8),
	}

	health := AssessHealth(company)
	require.NotNil(t, health)
	assert.Equal(t, 0.0, health.Score)
	assert.Equal(t, "Poor", health.Status)

	assert.Contains(t, health.Risks, "High liquidity risk (current ratio < 1.0)")
	assert.Contains(t, health.Risks, "High leverage risk (debt/equity > 1.0)")
	assert.Contains(t, health.Risks, "Low profitability (net margin < 5%)")
	assert.Contains(t, health.Risks, "Negative free cash flow")
	assert.Contains(t, health.Risks, "Declining revenue")
}

func TestAssessHealthHalfCredit(t *testing.T) {
	// Every ratio lands between acceptable and good: score is 0.5.
	company := &universe.Company{
		Ticker:         "MID",
		CurrentRatio:   float64Ptr(1.7),
		DebtToEquity:   float64Ptr(0.4),
		ReturnOnEquity: float64Ptr(0.17),
		ProfitMargin:   float64Ptr(0.12),
		RevenueGrowth:  float64Ptr(0.05),
	}

	health := AssessHealth(company)
	require.NotNil(t, health)
	assert.InDelta(t, 0.5, health.Score, 1e-9)
	assert.Equal(t, "Fair", health.Status)
}

func TestAssessHealthSparseSnapshot(t *testing.T) {
	// Only one ratio known: scored on that alone.
	company := &universe.Company{
		Ticker:         "SPARSE",
		ReturnOnEquity: float64Ptr(0.30),
	}
	health := AssessHealth(company)
	require.NotNil(t, health)
	assert.Equal(t, 1.0, health.Score)

	// No ratios at all.
	assert.Nil(t, AssessHealth(&universe.Company{Ticker: "EMPTY"}))
	assert.Nil(t, AssessHealth(nil))
}
