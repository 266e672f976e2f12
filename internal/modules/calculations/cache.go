// Package calculations provides a persistent TTL cache for expensive
// computed values (moment estimates, indicator series). Entries are
// msgpack-encoded and stored in the cache database, so they survive
// restarts but can be deleted at any time without data loss.
package calculations

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/compass/internal/modules/optimization"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultTTL is how long a cached calculation stays valid. Moment
// estimates only change when new daily prices arrive, so one day is
// the natural horizon.
const DefaultTTL = 24 * time.Hour

const momentsKind = "moments"

// Cache is a kind/key-addressed TTL cache backed by the cache database.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	log zerolog.Logger
}

// NewCache creates a calculation cache. A non-positive ttl falls back
// to DefaultTTL.
func NewCache(db *sql.DB, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "calc_cache").Logger(),
	}
}

// Get unmarshals the cached value for (kind, key) into dest. Returns
// false on miss or expiry; decode failures are treated as misses since
// the cache is disposable.
func (c *Cache) Get(kind, key string, dest interface{}) bool {
	var value []byte
	err := c.db.QueryRow(
		`SELECT value FROM calc_cache WHERE kind = ? AND key = ? AND expires_at > ?`,
		kind, key, time.Now().Unix(),
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn().Err(err).Str("kind", kind).Msg("Cache read failed")
		}
		return false
	}

	if err := msgpack.Unmarshal(value, dest); err != nil {
		c.log.Warn().Err(err).Str("kind", kind).Str("key", key).Msg("Failed to decode cached value, discarding")
		_ = c.Delete(kind, key)
		return false
	}
	return true
}

// Set stores a value under (kind, key) with the cache's TTL.
func (c *Cache) Set(kind, key string, value interface{}) error {
	encoded, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	expiresAt := time.Now().Add(c.ttl).Unix()
	_, err = c.db.Exec(
		`INSERT INTO calc_cache (kind, key, value, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(kind, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		kind, key, encoded, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes a single cache entry.
func (c *Cache) Delete(kind, key string) error {
	_, err := c.db.Exec(`DELETE FROM calc_cache WHERE kind = ? AND key = ?`, kind, key)
	return err
}

// Prune deletes all expired entries and returns how many were removed.
// Wired to the maintenance schedule.
func (c *Cache) Prune() (int64, error) {
	result, err := c.db.Exec(`DELETE FROM calc_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	removed, _ := result.RowsAffected()
	if removed > 0 {
		c.log.Debug().Int64("removed", removed).Msg("Pruned expired cache entries")
	}
	return removed, nil
}

// GetMoments implements optimization.MomentCache.
func (c *Cache) GetMoments(key string) (*optimization.MomentEstimate, bool) {
	var m optimization.MomentEstimate
	if !c.Get(momentsKind, key, &m) {
		return nil, false
	}
	return &m, true
}

// SetMoments implements optimization.MomentCache.
func (c *Cache) SetMoments(key string, m *optimization.MomentEstimate) {
	if err := c.Set(momentsKind, key, m); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache moment estimate")
	}
}
