// Package yahoo fetches company metadata and daily price history from
// Yahoo Finance. It implements universe.MarketDataClient.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/compass/internal/modules/universe"
	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// ErrDataUnavailable is returned when Yahoo has no usable data for a
// symbol (delisted, typo, or an empty history window).
var ErrDataUnavailable = errors.New("no data available from provider")

const defaultMaxRetries = 3

// Client is a Yahoo Finance market data client with simple exponential
// backoff on transient failures.
type Client struct {
	maxRetries int
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		maxRetries: defaultMaxRetries,
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

// FetchCompany fetches the fundamental snapshot for a ticker.
func (c *Client) FetchCompany(ctx context.Context, symbol string) (*universe.Company, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var info *models.Info
	err := c.withRetry(ctx, symbol, func() error {
		t, err := ticker.New(symbol)
		if err != nil {
			return fmt.Errorf("failed to create ticker: %w", err)
		}
		defer t.Close()

		info, err = t.Info()
		if err != nil {
			return fmt.Errorf("failed to get info: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	return companyFromInfo(symbol, info)
}

// companyFromInfo maps a Yahoo info snapshot onto a Company. Zero-valued
// ratio fields mean the provider omitted them and stay nil.
func companyFromInfo(symbol string, info *models.Info) (*universe.Company, error) {
	company := &universe.Company{
		Ticker:   symbol,
		Industry: info.Industry,
	}

	if info.LongName != "" {
		company.Name = info.LongName
	} else {
		company.Name = info.ShortName
	}
	if company.Name == "" {
		return nil, fmt.Errorf("%w: %s has no quote name", ErrDataUnavailable, symbol)
	}

	// Copy values to locals before taking addresses. MarketCap is an
	// integer on the wire and widens to float64 here.
	if info.MarketCap > 0 {
		marketCap := float64(info.MarketCap)
		company.MarketCap = &marketCap
	}
	if info.TrailingPE > 0 {
		pe := info.TrailingPE
		company.PERatio = &pe
	}
	if info.ForwardPE > 0 {
		forwardPE := info.ForwardPE
		company.ForwardPE = &forwardPE
	}
	if info.PriceToBook > 0 {
		ptb := info.PriceToBook
		company.PriceToBook = &ptb
	}
	if info.DividendYield > 0 {
		dy := info.DividendYield
		company.DividendYield = &dy
	}
	if info.ProfitMargins != 0 {
		pm := info.ProfitMargins
		company.ProfitMargin = &pm
	}
	if info.RevenueGrowth != 0 {
		rg := info.RevenueGrowth
		company.RevenueGrowth = &rg
	}
	if info.EarningsGrowth != 0 {
		eg := info.EarningsGrowth
		company.EarningsGrowth = &eg
	}
	if info.DebtToEquity > 0 {
		dte := info.DebtToEquity
		company.DebtToEquity = &dte
	}
	if info.CurrentRatio > 0 {
		cr := info.CurrentRatio
		company.CurrentRatio = &cr
	}
	if info.ReturnOnEquity != 0 {
		roe := info.ReturnOnEquity
		company.ReturnOnEquity = &roe
	}
	if info.CurrentPrice > 0 {
		price := info.CurrentPrice
		company.CurrentPrice = &price
	} else if info.RegularMarketPreviousClose > 0 {
		price := info.RegularMarketPreviousClose
		company.CurrentPrice = &price
	}

	return company, nil
}

// FetchDailyPrices fetches daily OHLCV bars for a symbol. period uses
// Yahoo notation ("1mo", "1y", "5y", "max"); empty means "1y".
func (c *Client) FetchDailyPrices(ctx context.Context, symbol, period string) ([]universe.DailyPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" {
		period = "1y"
	}

	var bars []models.Bar
	err := c.withRetry(ctx, symbol, func() error {
		t, err := ticker.New(symbol)
		if err != nil {
			return fmt.Errorf("failed to create ticker: %w", err)
		}
		defer t.Close()

		bars, err = t.History(models.HistoryParams{
			Period:     period,
			Interval:   "1d",
			AutoAdjust: true,
		})
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s over %s", ErrDataUnavailable, symbol, period)
	}

	prices := make([]universe.DailyPrice, 0, len(bars))
	for _, bar := range bars {
		if bar.Close <= 0 {
			continue
		}
		adjClose := bar.AdjClose
		if adjClose <= 0 {
			adjClose = bar.Close
		}
		volume := int64(bar.Volume)
		prices = append(prices, universe.DailyPrice{
			Ticker:   symbol,
			Date:     bar.Date.Format("2006-01-02"),
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: adjClose,
			Volume:   &volume,
		})
	}

	c.log.Debug().Str("symbol", symbol).Str("period", period).Int("bars", len(prices)).Msg("Fetched price history")
	return prices, nil
}

// withRetry runs fn up to maxRetries times with exponential backoff,
// honoring context cancellation between attempts.
func (c *Client) withRetry(ctx context.Context, symbol string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt < c.maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn().Err(lastErr).Str("symbol", symbol).Int("attempt", attempt+1).Dur("wait", waitTime).Msg("Retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}
	return lastErr
}
