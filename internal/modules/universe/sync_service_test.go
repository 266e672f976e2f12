package universe

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	companies map[string]*Company
	prices    map[string][]DailyPrice
	periods   []string
}

func (f *fakeClient) FetchCompany(_ context.Context, ticker string) (*Company, error) {
	c, ok := f.companies[ticker]
	if !ok {
		return nil, errors.New("unknown ticker")
	}
	return c, nil
}

func (f *fakeClient) FetchDailyPrices(_ context.Context, ticker, period string) ([]DailyPrice, error) {
	f.periods = append(f.periods, period)
	return f.prices[ticker], nil
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		companies: map[string]*Company{
			"AAPL": {Ticker: "AAPL", Name: "Apple Inc."},
		},
		prices: map[string][]DailyPrice{
			"AAPL": {
				{Ticker: "AAPL", Date: "2024-01-02", Close: 100, AdjClose: 100},
				{Ticker: "AAPL", Date: "2024-01-03", Close: 102, AdjClose: 102},
			},
		},
	}
}

func newSyncFixture(t *testing.T) (*SyncService, *CompanyRepository, *PriceRepository, *fakeClient) {
	t.Helper()
	db := setupMarketDB(t)
	companyRepo := NewCompanyRepository(db, zerolog.Nop())
	priceRepo := NewPriceRepository(db, zerolog.Nop())
	client := newFakeClient()
	svc := NewSyncService(companyRepo, priceRepo, client, zerolog.Nop())
	return svc, companyRepo, priceRepo, client
}

func TestSyncServiceAddTicker(t *testing.T) {
	svc, companyRepo, priceRepo, client := newSyncFixture(t)

	company, err := svc.AddTicker(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", company.Name)

	stored, err := companyRepo.GetByTicker("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", stored.Name)

	prices, err := priceRepo.GetDailyPrices("AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, prices, 2)

	// New tickers get a full backfill.
	assert.Equal(t, []string{"5y"}, client.periods)
}

func TestSyncServiceAddTickerUnknown(t *testing.T) {
	svc, _, _, _ := newSyncFixture(t)
	_, err := svc.AddTicker(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestSyncServiceIncrementalSync(t *testing.T) {
	svc, _, _, client := newSyncFixture(t)

	_, err := svc.AddTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	// Second sync sees stored history and only fetches the recent window.
	require.NoError(t, svc.SyncTicker(context.Background(), "AAPL"))
	assert.Equal(t, []string{"5y", "1mo"}, client.periods)
}

func TestSyncServiceSyncAllContinuesPastFailures(t *testing.T) {
	svc, companyRepo, _, client := newSyncFixture(t)

	_, err := svc.AddTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	// A ticker the provider no longer knows about must not stall the run.
	require.NoError(t, companyRepo.Upsert(&Company{Ticker: "GONE", Name: "Delisted Corp"}))

	synced, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	_ = client
}
