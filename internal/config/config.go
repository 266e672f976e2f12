// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for all databases (always absolute)
	Port                int
	LogLevel            string
	DevMode             bool
	RiskFreeRate        float64 // Annual risk-free rate used as the Sharpe baseline
	AnnualizationFactor float64 // Trading periods per year (252 for daily bars)
	Trials              int     // Default Monte Carlo trials per optimization run
	SyncSchedule        string  // Cron expression for the daily market data sync
	CacheTTLHours       int     // Calculation cache lifetime
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Resolve the data directory to an absolute path and make sure it
	// exists before any database opens under it.
	dataDir := getEnv("COMPASS_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8000),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:        getEnvAsFloat("RISK_FREE_RATE", 0.04),
		AnnualizationFactor: getEnvAsFloat("ANNUALIZATION_FACTOR", 252),
		Trials:              getEnvAsInt("OPTIMIZER_TRIALS", 10000),
		SyncSchedule:        getEnv("SYNC_SCHEDULE", "0 18 * * 1-5"),
		CacheTTLHours:       getEnvAsInt("CACHE_TTL_HOURS", 24),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.AnnualizationFactor <= 0 {
		return fmt.Errorf("annualization factor must be positive, got %v", c.AnnualizationFactor)
	}
	if c.Trials < 1 {
		return fmt.Errorf("optimizer trials must be positive, got %d", c.Trials)
	}
	if c.CacheTTLHours < 1 {
		return fmt.Errorf("cache TTL must be at least one hour, got %d", c.CacheTTLHours)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
