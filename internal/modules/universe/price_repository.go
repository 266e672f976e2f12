package universe

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/compass/internal/modules/optimization"
	"github.com/rs/zerolog"
)

// periodStarts maps request periods onto lookback durations. Anything
// unknown (including "max" and empty) means the full stored history.
var periodStarts = map[string]time.Duration{
	"1mo": 31 * 24 * time.Hour,
	"3mo": 92 * 24 * time.Hour,
	"6mo": 183 * 24 * time.Hour,
	"1y":  366 * 24 * time.Hour,
	"2y":  2 * 366 * 24 * time.Hour,
	"5y":  5 * 366 * 24 * time.Hour,
}

// PriceRepository provides access to the daily_prices table and serves
// aligned history to the optimizer.
type PriceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *sql.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("component", "price_repository").Logger(),
	}
}

// UpsertPrices writes a batch of daily bars inside one transaction.
func (r *PriceRepository) UpsertPrices(prices []DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin price upsert: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (ticker, date, open, high, low, close, adj_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			adj_close = excluded.adj_close,
			volume = excluded.volume`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(p.Ticker, p.Date, p.Open, p.High, p.Low, p.Close, p.AdjClose, p.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert price %s %s: %w", p.Ticker, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price upsert: %w", err)
	}
	return nil
}

// GetDailyPrices fetches up to limit most recent bars for a ticker,
// returned in ascending date order.
func (r *PriceRepository) GetDailyPrices(ticker string, limit int) ([]DailyPrice, error) {
	rows, err := r.db.Query(`
		SELECT ticker, date, open, high, low, close, adj_close, volume
		FROM (
			SELECT ticker, date, open, high, low, close, adj_close, volume
			FROM daily_prices
			WHERE ticker = ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// LatestDate returns the most recent stored date for a ticker, or ""
// when no history exists yet.
func (r *PriceRepository) LatestDate(ticker string) (string, error) {
	var date sql.NullString
	err := r.db.QueryRow(
		`SELECT MAX(date) FROM daily_prices WHERE ticker = ?`, ticker,
	).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to query latest date for %s: %w", ticker, err)
	}
	return date.String, nil
}

// FetchHistory implements optimization.PriceProvider from stored data.
// It aligns tickers on the intersection of their trading dates so the
// optimizer always sees a complete rectangular table. Adjusted closes
// are used, falling back to raw closes where adjustment is missing.
func (r *PriceRepository) FetchHistory(ctx context.Context, tickers []string, period string) (*optimization.PriceHistory, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", optimization.ErrEmptyUniverse)
	}

	since := ""
	if lookback, ok := periodStarts[period]; ok {
		since = time.Now().UTC().Add(-lookback).Format("2006-01-02")
	}

	perTicker := make(map[string]map[string]float64, len(tickers))
	for _, ticker := range tickers {
		series, err := r.closesSince(ctx, ticker, since)
		if err != nil {
			return nil, err
		}
		if len(series) == 0 {
			return nil, fmt.Errorf("%w: no stored history for %s", optimization.ErrInsufficientData, ticker)
		}
		perTicker[ticker] = series
	}

	// Intersect trading dates across the universe.
	first := perTicker[tickers[0]]
	var dates []string
	for date := range first {
		shared := true
		for _, ticker := range tickers[1:] {
			if _, ok := perTicker[ticker][date]; !ok {
				shared = false
				break
			}
		}
		if shared {
			dates = append(dates, date)
		}
	}
	if len(dates) < 2 {
		return nil, fmt.Errorf("%w: only %d dates shared across %d tickers",
			optimization.ErrInsufficientData, len(dates), len(tickers))
	}
	// YYYY-MM-DD dates sort correctly as strings.
	sort.Strings(dates)

	prices := make(map[string][]float64, len(tickers))
	for _, ticker := range tickers {
		series := make([]float64, len(dates))
		for i, date := range dates {
			series[i] = perTicker[ticker][date]
		}
		prices[ticker] = series
	}

	r.log.Debug().
		Int("tickers", len(tickers)).
		Int("dates", len(dates)).
		Str("period", period).
		Msg("Built aligned price history")

	return &optimization.PriceHistory{
		Tickers: append([]string(nil), tickers...),
		Dates:   dates,
		Prices:  prices,
	}, nil
}

func (r *PriceRepository) closesSince(ctx context.Context, ticker, since string) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, close, adj_close
		FROM daily_prices
		WHERE ticker = ? AND date >= ?
		ORDER BY date ASC`, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", ticker, err)
	}
	defer rows.Close()

	series := make(map[string]float64)
	for rows.Next() {
		var date string
		var closePrice float64
		var adjClose sql.NullFloat64
		if err := rows.Scan(&date, &closePrice, &adjClose); err != nil {
			return nil, fmt.Errorf("failed to scan history for %s: %w", ticker, err)
		}
		price := closePrice
		if adjClose.Valid && adjClose.Float64 > 0 {
			price = adjClose.Float64
		}
		series[date] = price
	}
	return series, rows.Err()
}

func scanPrices(rows *sql.Rows) ([]DailyPrice, error) {
	var prices []DailyPrice
	for rows.Next() {
		var p DailyPrice
		var volume sql.NullInt64
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		if volume.Valid {
			p.Volume = &volume.Int64
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}
	return prices, nil
}
