package universe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MarketDataClient fetches company metadata and daily bars from the
// upstream data provider.
type MarketDataClient interface {
	FetchCompany(ctx context.Context, ticker string) (*Company, error)
	FetchDailyPrices(ctx context.Context, ticker, period string) ([]DailyPrice, error)
}

// SyncService keeps the market database current: company fundamentals
// and daily price history per tracked ticker.
type SyncService struct {
	companyRepo *CompanyRepository
	priceRepo   *PriceRepository
	client      MarketDataClient
	log         zerolog.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(
	companyRepo *CompanyRepository,
	priceRepo *PriceRepository,
	client MarketDataClient,
	log zerolog.Logger,
) *SyncService {
	return &SyncService{
		companyRepo: companyRepo,
		priceRepo:   priceRepo,
		client:      client,
		log:         log.With().Str("service", "universe_sync").Logger(),
	}
}

// AddTicker fetches a company's metadata and full price history and
// stores both, adding the ticker to the tracked universe.
func (s *SyncService) AddTicker(ctx context.Context, ticker string) (*Company, error) {
	company, err := s.client.FetchCompany(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company %s: %w", ticker, err)
	}
	if err := s.companyRepo.Upsert(company); err != nil {
		return nil, err
	}

	if err := s.syncPrices(ctx, ticker, "5y"); err != nil {
		return nil, err
	}
	s.log.Info().Str("ticker", ticker).Msg("Added ticker to universe")
	return company, nil
}

// SyncTicker refreshes fundamentals and recent prices for one ticker.
// Tickers with no stored history get a full backfill.
func (s *SyncService) SyncTicker(ctx context.Context, ticker string) error {
	company, err := s.client.FetchCompany(ctx, ticker)
	if err != nil {
		return fmt.Errorf("failed to fetch company %s: %w", ticker, err)
	}
	if err := s.companyRepo.Upsert(company); err != nil {
		return err
	}

	latest, err := s.priceRepo.LatestDate(ticker)
	if err != nil {
		return err
	}
	period := "1mo"
	if latest == "" {
		period = "5y"
	}
	return s.syncPrices(ctx, ticker, period)
}

// SyncAll refreshes every tracked ticker, continuing past individual
// failures so one delisted symbol cannot stall the whole run. Returns
// the number of tickers that synced successfully.
func (s *SyncService) SyncAll(ctx context.Context) (int, error) {
	tickers, err := s.companyRepo.Tickers()
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := s.SyncTicker(ctx, ticker); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Ticker sync failed, continuing")
			continue
		}
		synced++
	}

	s.log.Info().Int("synced", synced).Int("total", len(tickers)).Msg("Universe sync complete")
	return synced, nil
}

func (s *SyncService) syncPrices(ctx context.Context, ticker, period string) error {
	prices, err := s.client.FetchDailyPrices(ctx, ticker, period)
	if err != nil {
		return fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}
	if err := s.priceRepo.UpsertPrices(prices); err != nil {
		return err
	}
	s.log.Debug().Str("ticker", ticker).Int("bars", len(prices)).Str("period", period).Msg("Stored price bars")
	return nil
}
