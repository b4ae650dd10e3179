package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"job-connect-backend/config"
	"job-connect-backend/internal/api"
	"job-connect-backend/internal/db"
	"job-connect-backend/internal/importer"
	"job-connect-backend/internal/logging"
	"job-connect-backend/internal/mw"
	"job-connect-backend/internal/store"
)

const (
	serviceName       = "jobconnectd"
	defaultConfigPath = "./config/config.yaml"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to configuration file")
		dataFile   = flag.String("data", "", "Import this data file instead of the configured source")
		once       = flag.Bool("once", false, "Import once and exit")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *dataFile != "" {
		cfg.Import.DataFile = *dataFile
		cfg.Import.URL = ""
	}

	ctx, logger := logging.New(context.Background(), serviceName, cfg.Log.Level, cfg.Log.Pretty)
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gormDB, err := db.Init(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	appStore := store.NewGormStore(gormDB)

	responses := mw.NewResponseCache(time.Duration(cfg.Server.CacheTTLSeconds) * time.Second)
	svc := importer.NewService(ctx, &cfg.Import, appStore,
		importer.OnImported(func(*importer.Report) { responses.Flush() }),
	)

	if *once {
		if _, err := svc.ImportOnce(ctx); err != nil {
			logger.Fatal().Err(err).Msg("import failed")
		}
		return
	}

	if !cfg.Server.Enabled && cfg.Import.RefreshInterval <= 0 {
		svc.Run(ctx)
		return
	}

	go svc.Run(ctx)

	if !cfg.Server.Enabled {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		return
	}

	router := api.NewRouter(ctx, cfg.Server, appStore, svc, responses)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown failed")
	}
	logger.Info().Msg("server gracefully stopped")
}

// loadConfig reads the configuration at path. Without an explicit path the
// default location is tried, and built-in defaults are used if it is missing.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
