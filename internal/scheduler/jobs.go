package scheduler

import (
	"context"
	"time"

	"github.com/aristath/compass/internal/database"
	"github.com/aristath/compass/internal/modules/calculations"
	"github.com/aristath/compass/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Per-run ceilings so a hung provider or a long checkpoint cannot wedge
// the scheduler.
const (
	syncTimeout        = 30 * time.Minute
	maintenanceTimeout = 5 * time.Minute
)

// MarketSyncJob refreshes fundamentals and daily prices for the whole
// universe.
type MarketSyncJob struct {
	sync *universe.SyncService
	log  zerolog.Logger
}

// NewMarketSyncJob creates a market sync job
func NewMarketSyncJob(sync *universe.SyncService, log zerolog.Logger) *MarketSyncJob {
	return &MarketSyncJob{
		sync: sync,
		log:  log.With().Str("job", "market_sync").Logger(),
	}
}

// Name returns the job name
func (j *MarketSyncJob) Name() string { return "market_sync" }

// Run syncs every tracked ticker
func (j *MarketSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	synced, err := j.sync.SyncAll(ctx)
	if err != nil {
		return err
	}
	j.log.Info().Int("synced", synced).Msg("Market data sync finished")
	return nil
}

// CachePruneJob evicts expired calculation cache entries.
type CachePruneJob struct {
	cache *calculations.Cache
	log   zerolog.Logger
}

// NewCachePruneJob creates a cache prune job
func NewCachePruneJob(cache *calculations.Cache, log zerolog.Logger) *CachePruneJob {
	return &CachePruneJob{
		cache: cache,
		log:   log.With().Str("job", "cache_prune").Logger(),
	}
}

// Name returns the job name
func (j *CachePruneJob) Name() string { return "cache_prune" }

// Run removes expired cache rows
func (j *CachePruneJob) Run() error {
	pruned, err := j.cache.Prune()
	if err != nil {
		return err
	}
	if pruned > 0 {
		j.log.Info().Int64("pruned", pruned).Msg("Expired cache entries removed")
	}
	return nil
}

// DatabaseMaintenanceJob checkpoints WAL files and pings every database,
// and vacuums the cache database, whose rows churn with every prune.
type DatabaseMaintenanceJob struct {
	databases map[string]*database.DB
	cacheDB   *database.DB
	log       zerolog.Logger
}

// NewDatabaseMaintenanceJob creates a database maintenance job. Nil
// databases are skipped.
func NewDatabaseMaintenanceJob(marketDB, resultsDB, cacheDB *database.DB, log zerolog.Logger) *DatabaseMaintenanceJob {
	return &DatabaseMaintenanceJob{
		databases: map[string]*database.DB{
			"market":  marketDB,
			"results": resultsDB,
			"cache":   cacheDB,
		},
		cacheDB: cacheDB,
		log:     log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Name returns the job name
func (j *DatabaseMaintenanceJob) Name() string { return "db_maintenance" }

// Run checkpoints and pings each database. A failure on one database is
// logged and the rest are still maintained.
func (j *DatabaseMaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	var lastErr error
	for name, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Database ping failed")
			lastErr = err
			continue
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			lastErr = err
		}
	}

	if j.cacheDB != nil {
		if err := j.cacheDB.Vacuum(); err != nil {
			j.log.Error().Err(err).Msg("Cache vacuum failed")
			lastErr = err
		}
	}
	return lastErr
}
