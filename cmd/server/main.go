// Package main is the entry point for the Compass portfolio research service.
// The service tracks an investment universe, syncs market data from Yahoo
// Finance, runs Monte Carlo portfolio optimization, and generates per-stock
// research reports over a REST API.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/compass/internal/clients/yahoo"
	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/database"
	"github.com/aristath/compass/internal/modules/calculations"
	"github.com/aristath/compass/internal/modules/optimization"
	optimizationhandlers "github.com/aristath/compass/internal/modules/optimization/handlers"
	"github.com/aristath/compass/internal/modules/reports"
	reportshandlers "github.com/aristath/compass/internal/modules/reports/handlers"
	"github.com/aristath/compass/internal/modules/universe"
	universehandlers "github.com/aristath/compass/internal/modules/universe/handlers"
	"github.com/aristath/compass/internal/scheduler"
	"github.com/aristath/compass/internal/server"
	"github.com/aristath/compass/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Compass")

	// Three-database layout: market data, append-only results, cache.
	marketDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "market.db"),
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market database")
	}
	defer marketDB.Close()

	resultsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "results.db"),
		Profile: database.ProfileArchive,
		Name:    "results",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{marketDB, resultsDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	// Repositories and clients
	companyRepo := universe.NewCompanyRepository(marketDB.Conn(), log)
	priceRepo := universe.NewPriceRepository(marketDB.Conn(), log)
	resultRepo := reports.NewResultRepository(resultsDB.Conn(), log)
	yahooClient := yahoo.NewClient(log)
	calcCache := calculations.NewCache(cacheDB.Conn(), time.Duration(cfg.CacheTTLHours)*time.Hour, log)

	// Services
	syncService := universe.NewSyncService(companyRepo, priceRepo, yahooClient, log)
	optimizerService := optimization.NewService(priceRepo, calcCache, cfg.RiskFreeRate, cfg.AnnualizationFactor, cfg.Trials, log)
	reportGenerator := reports.NewGenerator(companyRepo, priceRepo, resultRepo, log)

	// Handlers
	universeHandler := universehandlers.NewHandler(companyRepo, priceRepo, syncService, log)
	optimizationHandler := optimizationhandlers.NewHandler(optimizerService, resultRepo, log)
	reportsHandler := reportshandlers.NewHandler(reportGenerator, resultRepo, log)

	// Background jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.SyncSchedule, scheduler.NewMarketSyncJob(syncService, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register market sync job")
	}
	if err := sched.AddJob("@hourly", scheduler.NewCachePruneJob(calcCache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache prune job")
	}
	if err := sched.AddJob("0 3 * * *", scheduler.NewDatabaseMaintenanceJob(marketDB, resultsDB, cacheDB, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register database maintenance job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:                 log,
		Port:                cfg.Port,
		DevMode:             cfg.DevMode,
		MarketDB:            marketDB,
		ResultsDB:           resultsDB,
		CacheDB:             cacheDB,
		OptimizationHandler: optimizationHandler,
		UniverseHandler:     universeHandler,
		ReportsHandler:      reportsHandler,
	})

	// Start server in goroutine so shutdown signals can be handled below
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
