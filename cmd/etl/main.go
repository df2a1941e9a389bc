package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/burn-severity-etl/internal/adapter/catalog"
	httpadapter "github.com/couchcryptid/burn-severity-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/burn-severity-etl/internal/adapter/kafka"
	"github.com/couchcryptid/burn-severity-etl/internal/config"
	"github.com/couchcryptid/burn-severity-etl/internal/domain"
	"github.com/couchcryptid/burn-severity-etl/internal/observability"
	"github.com/couchcryptid/burn-severity-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	scale, err := config.LoadSeverityScale(cfg.SeverityScaleFile)
	if err != nil {
		logger.Error("failed to load severity scale", "error", err)
		os.Exit(1)
	}

	archive, err := catalog.NewArchive(cfg.SceneArchiveDir, logger)
	if err != nil {
		logger.Error("failed to open scene archive", "error", err)
		os.Exit(1)
	}
	imagery := catalog.NewCachedCatalog(archive, cfg.CatalogCacheSize, metrics)

	var water domain.WaterProvider
	if cfg.SeasonalityFile != "" {
		water = catalog.NewSeasonalityFile(cfg.SeasonalityFile)
		logger.Info("water mask enabled", "file", cfg.SeasonalityFile)
	} else {
		logger.Info("water mask disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(imagery, water, scale, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, scale, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
