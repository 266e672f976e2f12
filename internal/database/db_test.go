package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateCreatesMarketSchema(t *testing.T) {
	db := openTestDB(t, "market", ProfileStandard)
	require.NoError(t, db.Migrate())

	// Schema applies the companies and daily_prices tables.
	_, err := db.Exec(`INSERT INTO companies (ticker, name) VALUES ('AAPL', 'Apple Inc.')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO daily_prices (ticker, date, close) VALUES ('AAPL', '2024-01-02', 100)`)
	require.NoError(t, err)

	// Running migrations again is a no-op.
	require.NoError(t, db.Migrate())
}

func TestMigrateResultsAndCacheSchemas(t *testing.T) {
	results := openTestDB(t, "results", ProfileArchive)
	require.NoError(t, results.Migrate())
	_, err := results.Exec(`
		INSERT INTO analysis_results (ticker, analyzed_at, recommendation, composite_score)
		VALUES ('AAPL', '2024-01-02T00:00:00Z', 'HOLD', 55)`)
	require.NoError(t, err)

	cache := openTestDB(t, "cache", ProfileCache)
	require.NoError(t, cache.Migrate())
	_, err = cache.Exec(`
		INSERT INTO calc_cache (kind, key, value, expires_at)
		VALUES ('moments', 'k', x'00', 0)`)
	require.NoError(t, err)
}

func TestMigrateUnknownNameSkips(t *testing.T) {
	db := openTestDB(t, "scratch", ProfileStandard)
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := openTestDB(t, "market", ProfileStandard)
	require.NoError(t, db.Migrate())

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO companies (ticker, name) VALUES ('AAPL', 'Apple Inc.')`)
		return err
	})
	require.NoError(t, err)

	// A returned error rolls the transaction back.
	boom := errors.New("boom")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO companies (ticker, name) VALUES ('MSFT', 'Microsoft')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM companies`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestHealthCheckAndStats(t *testing.T) {
	db := openTestDB(t, "market", ProfileStandard)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.HealthCheck(context.Background()))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}
