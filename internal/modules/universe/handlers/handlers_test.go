package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/compass/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type stubClient struct{}

func (stubClient) FetchCompany(_ context.Context, ticker string) (*universe.Company, error) {
	if ticker != "AAPL" {
		return nil, errors.New("unknown ticker")
	}
	return &universe.Company{Ticker: "AAPL", Name: "Apple Inc."}, nil
}

func (stubClient) FetchDailyPrices(_ context.Context, ticker, _ string) ([]universe.DailyPrice, error) {
	return []universe.DailyPrice{
		{Ticker: ticker, Date: "2024-01-02", Close: 100, AdjClose: 100},
		{Ticker: ticker, Date: "2024-01-03", Close: 102, AdjClose: 102},
	}, nil
}

func newTestRouter(t *testing.T) *chi.Mux {
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
			ticker TEXT NOT NULL, date TEXT NOT NULL,
			open REAL, high REAL, low REAL, close REAL NOT NULL,
			adj_close REAL, volume INTEGER,
			PRIMARY KEY (ticker, date)
		);
	`)
	require.NoError(t, err)

	companyRepo := universe.NewCompanyRepository(db, zerolog.Nop())
	priceRepo := universe.NewPriceRepository(db, zerolog.Nop())
	syncService := universe.NewSyncService(companyRepo, priceRepo, stubClient{}, zerolog.Nop())
	handler := NewHandler(companyRepo, priceRepo, syncService, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return r
}

func addCompany(t *testing.T, router *chi.Mux) {
	t.Helper()
	body := bytes.NewReader([]byte(`{"ticker": "aapl"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/universe/companies", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleAddAndGetCompany(t *testing.T) {
	router := newTestRouter(t)
	addCompany(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/universe/companies/AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data universe.Company `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Apple Inc.", response.Data.Name)
}

func TestHandleAddCompanyValidation(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/universe/companies",
		bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/universe/companies",
		bytes.NewReader([]byte(`{"ticker": "NOPE"}`)))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleGetCompanyNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/universe/companies/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetPrices(t *testing.T) {
	router := newTestRouter(t)
	addCompany(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/universe/companies/AAPL/prices?limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data []universe.DailyPrice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "2024-01-03", response.Data[0].Date)

	req = httptest.NewRequest(http.MethodGet, "/api/universe/companies/AAPL/prices?limit=bad", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteCompany(t *testing.T) {
	router := newTestRouter(t)
	addCompany(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/universe/companies/AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/universe/companies/AAPL", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSync(t *testing.T) {
	router := newTestRouter(t)
	addCompany(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/universe/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data struct {
			Synced int `json:"synced"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Synced)
}
