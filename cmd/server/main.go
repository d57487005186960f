package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/stock-tracker/internal/api"
	"github.com/ndewijer/stock-tracker/internal/config"
	"github.com/ndewijer/stock-tracker/internal/database"
	"github.com/ndewijer/stock-tracker/internal/pricefeed"
	"github.com/ndewijer/stock-tracker/internal/repository"
	"github.com/ndewijer/stock-tracker/internal/service"
	"github.com/ndewijer/stock-tracker/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.Log)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	log.Info().Str("path", cfg.Database.Path).Str("version", version.Version).Msg("Connected to database")

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	stockRepo := repository.NewStockRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Price feed, cached and optionally kept warm on a schedule
	feed, err := pricefeed.New(cfg.PriceFeed.Provider, cfg.PriceFeed.BaseURL, pricefeed.WithTimeout(cfg.PriceFeed.Timeout))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create price feed")
	}
	quoter := pricefeed.NewCachedQuoter(feed, cfg.PriceFeed.CacheTTL).WithFetchTimeout(cfg.PriceFeed.Timeout)

	var refresher *pricefeed.Refresher
	if cfg.PriceFeed.RefreshSchedule != "" {
		refresher, err = pricefeed.NewRefresher(cfg.PriceFeed.RefreshSchedule, quoter, stockRepo, cfg.PriceFeed.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule price refresh")
		}
		refresher.Start()
		log.Info().Str("schedule", cfg.PriceFeed.RefreshSchedule).Msg("Price refresher started")
	}

	sessions, err := service.NewSessionManager(cfg.Session.Key, cfg.Session.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session manager")
	}
	if cfg.Session.Key == "" {
		log.Warn().Msg("SESSION_KEY not set, sessions will not survive a restart")
	}

	// Create services
	locks := service.NewPositionLocks()
	systemService := service.NewSystemService(db, map[string]bool{
		"price_cache":   cfg.PriceFeed.CacheTTL > 0,
		"price_refresh": refresher != nil,
	})
	userService := service.NewUserService(db, userRepo, stockRepo, sessions)
	stockService := service.NewStockService(db, stockRepo, transactionRepo, quoter, locks, cfg.PriceFeed.Concurrency)
	transactionService := service.NewTransactionService(db, stockRepo, transactionRepo, locks)

	// Create router
	router := api.NewRouter(systemService, userService, stockService, transactionService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if refresher != nil {
		refresher.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited")
}

// setupLogging configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT.
func setupLogging(cfg config.LogConfig) {
	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
