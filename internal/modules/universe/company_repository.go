package universe

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrCompanyNotFound is returned when a ticker is not in the universe.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepository provides access to the companies table.
type CompanyRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sql.DB, log zerolog.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:  db,
		log: log.With().Str("component", "company_repository").Logger(),
	}
}

const companyColumns = `ticker, name, sector, industry, market_cap, pe_ratio, forward_pe,
	price_to_book, dividend_yield, beta, profit_margin, revenue_growth, earnings_growth,
	debt_to_equity, return_on_equity, current_ratio, free_cash_flow, shares_outstanding,
	eps, book_value, current_price, last_updated`

// Upsert inserts or replaces a company row and stamps last_updated.
func (r *CompanyRepository) Upsert(c *Company) error {
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.Exec(`
		INSERT INTO companies (`+companyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			industry = excluded.industry,
			market_cap = excluded.market_cap,
			pe_ratio = excluded.pe_ratio,
			forward_pe = excluded.forward_pe,
			price_to_book = excluded.price_to_book,
			dividend_yield = excluded.dividend_yield,
			beta = excluded.beta,
			profit_margin = excluded.profit_margin,
			revenue_growth = excluded.revenue_growth,
			earnings_growth = excluded.earnings_growth,
			debt_to_equity = excluded.debt_to_equity,
			return_on_equity = excluded.return_on_equity,
			current_ratio = excluded.current_ratio,
			free_cash_flow = excluded.free_cash_flow,
			shares_outstanding = excluded.shares_outstanding,
			eps = excluded.eps,
			book_value = excluded.book_value,
			current_price = excluded.current_price,
			last_updated = excluded.last_updated`,
		c.Ticker, c.Name, c.Sector, c.Industry, c.MarketCap, c.PERatio, c.ForwardPE,
		c.PriceToBook, c.DividendYield, c.Beta, c.ProfitMargin, c.RevenueGrowth,
		c.EarningsGrowth, c.DebtToEquity, c.ReturnOnEquity, c.CurrentRatio,
		c.FreeCashFlow, c.SharesOutstanding, c.EPS, c.BookValue,
		c.CurrentPrice, c.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", c.Ticker, err)
	}
	return nil
}

// GetByTicker fetches a single company.
func (r *CompanyRepository) GetByTicker(ticker string) (*Company, error) {
	row := r.db.QueryRow(`SELECT `+companyColumns+` FROM companies WHERE ticker = ?`, ticker)
	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", ticker, err)
	}
	return c, nil
}

// GetAll returns every tracked company ordered by ticker.
func (r *CompanyRepository) GetAll() ([]Company, error) {
	rows, err := r.db.Query(`SELECT ` + companyColumns + ` FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}
	return companies, nil
}

// Tickers returns every tracked ticker ordered alphabetically.
func (r *CompanyRepository) Tickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT ticker FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// Delete removes a company. Price history rows are left in place so
// re-adding the ticker does not refetch everything.
func (r *CompanyRepository) Delete(ticker string) error {
	result, err := r.db.Exec(`DELETE FROM companies WHERE ticker = ?`, ticker)
	if err != nil {
		return fmt.Errorf("failed to delete company %s: %w", ticker, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrCompanyNotFound, ticker)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (*Company, error) {
	var c Company
	var name, sector, industry, lastUpdated sql.NullString
	err := row.Scan(
		&c.Ticker, &name, &sector, &industry, &c.MarketCap, &c.PERatio, &c.ForwardPE,
		&c.PriceToBook, &c.DividendYield, &c.Beta, &c.ProfitMargin, &c.RevenueGrowth,
		&c.EarningsGrowth, &c.DebtToEquity, &c.ReturnOnEquity, &c.CurrentRatio,
		&c.FreeCashFlow, &c.SharesOutstanding, &c.EPS, &c.BookValue,
		&c.CurrentPrice, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}
	c.Name = name.String
	c.Sector = sector.String
	c.Industry = industry.String
	c.LastUpdated = lastUpdated.String
	return &c, nil
}
