package scheduler

import (
	"path/filepath"
	"testing"

	"github.com/aristath/compass/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMaintenanceDB(t *testing.T, name string, profile database.DatabaseProfile) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestDatabaseMaintenanceJob(t *testing.T) {
	marketDB := openMaintenanceDB(t, "market", database.ProfileStandard)
	cacheDB := openMaintenanceDB(t, "cache", database.ProfileCache)

	// Leave WAL content behind so the checkpoint has work to do.
	_, err := marketDB.Exec(`INSERT INTO companies (ticker, name) VALUES ('AAPL', 'Apple Inc.')`)
	require.NoError(t, err)

	job := NewDatabaseMaintenanceJob(marketDB, nil, cacheDB, zerolog.Nop())
	assert.Equal(t, "db_maintenance", job.Name())

	// A nil results database is skipped, not an error.
	assert.NoError(t, job.Run())

	// The maintained databases stay usable.
	var count int
	require.NoError(t, marketDB.QueryRow(`SELECT COUNT(*) FROM companies`).Scan(&count))
	assert.Equal(t, 1, count)
}
