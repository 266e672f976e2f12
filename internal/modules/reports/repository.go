package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/compass/internal/modules/optimization"
	"github.com/rs/zerolog"
)

// ErrRunNotFound is returned when an optimization run id is unknown.
var ErrRunNotFound = errors.New("optimization run not found")

// ResultRepository archives analysis results and optimization runs in
// the results database. Rows are append-only.
type ResultRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sql.DB, log zerolog.Logger) *ResultRepository {
	return &ResultRepository{
		db:  db,
		log: log.With().Str("component", "result_repository").Logger(),
	}
}

// SaveAnalysis archives the headline numbers of a stock report plus the
// full section breakdown as JSON.
func (r *ResultRepository) SaveAnalysis(ctx context.Context, report *StockReport) error {
	details, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report details: %w", err)
	}

	var valuationScore, healthScore, technicalScore, fairValue, currentPrice *float64
	if v := report.Valuation; v != nil {
		fairValue = &v.AverageFairValue
		currentPrice = &v.CurrentPrice
		upside := v.AverageUpsidePct
		valuationScore = &upside
	}
	if h := report.Health; h != nil {
		score := h.Score
		healthScore = &score
	}
	if t := report.Technical; t != nil {
		bias := 0.5
		switch t.Bias {
		case "Bullish":
			bias = 1.0
		case "Bearish":
			bias = 0.0
		}
		technicalScore = &bias
		if currentPrice == nil {
			price := t.CurrentPrice
			currentPrice = &price
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_results
			(ticker, analyzed_at, recommendation, composite_score,
			 valuation_score, health_score, technical_score,
			 fair_value, current_price, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Ticker,
		report.GeneratedAt.Format(time.RFC3339),
		report.Recommendation.Recommendation,
		report.Recommendation.Score,
		valuationScore, healthScore, technicalScore,
		fairValue, currentPrice, string(details),
	)
	if err != nil {
		return fmt.Errorf("failed to archive analysis for %s: %w", report.Ticker, err)
	}
	return nil
}

// LatestAnalyses returns the most recent archived result per ticker.
func (r *ResultRepository) LatestAnalyses(ctx context.Context) ([]StoredResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, analyzed_at, recommendation, composite_score,
		       valuation_score, health_score, technical_score, fair_value, current_price
		FROM analysis_results
		WHERE id IN (SELECT MAX(id) FROM analysis_results GROUP BY ticker)
		ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var sr StoredResult
		if err := rows.Scan(&sr.ID, &sr.Ticker, &sr.AnalyzedAt, &sr.Recommendation,
			&sr.CompositeScore, &sr.ValuationScore, &sr.HealthScore, &sr.TechnicalScore,
			&sr.FairValue, &sr.CurrentPrice); err != nil {
			return nil, fmt.Errorf("failed to scan analysis result: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// AnalysisHistory returns the archived results for one ticker, most
// recent first.
func (r *ResultRepository) AnalysisHistory(ctx context.Context, ticker string, limit int) ([]StoredResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, analyzed_at, recommendation, composite_score,
		       valuation_score, health_score, technical_score, fair_value, current_price
		FROM analysis_results
		WHERE ticker = ?
		ORDER BY id DESC
		LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis history: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var sr StoredResult
		if err := rows.Scan(&sr.ID, &sr.Ticker, &sr.AnalyzedAt, &sr.Recommendation,
			&sr.CompositeScore, &sr.ValuationScore, &sr.HealthScore, &sr.TechnicalScore,
			&sr.FairValue, &sr.CurrentPrice); err != nil {
			return nil, fmt.Errorf("failed to scan analysis result: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// SaveRun archives a full optimization result keyed by its run id.
func (r *ResultRepository) SaveRun(ctx context.Context, result *optimization.PortfolioResult, period string) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal optimization result: %w", err)
	}

	partial := 0
	if result.Partial {
		partial = 1
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO optimization_runs (run_id, created_at, tickers, period, trials, partial, result)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.GeneratedAt.Format(time.RFC3339),
		strings.Join(result.Tickers, ","),
		period,
		result.Trials,
		partial,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to archive optimization run %s: %w", result.RunID, err)
	}
	return nil
}

// ListRuns returns run headers, most recent first.
func (r *ResultRepository) ListRuns(ctx context.Context, limit int) ([]StoredRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, created_at, tickers, period, trials, partial
		FROM optimization_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []StoredRun
	for rows.Next() {
		var run StoredRun
		var period sql.NullString
		var partial int
		if err := rows.Scan(&run.RunID, &run.CreatedAt, &run.Tickers, &period, &run.Trials, &partial); err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		run.Period = period.String
		run.Partial = partial != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads the archived result payload for a run id.
func (r *ResultRepository) GetRun(ctx context.Context, runID string) (*optimization.PortfolioResult, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT result FROM optimization_runs WHERE run_id = ?`, runID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load optimization run %s: %w", runID, err)
	}

	var result optimization.PortfolioResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode optimization run %s: %w", runID, err)
	}
	return &result, nil
}
