// Command emulator runs the yield anomaly emulation service: it consumes
// evaluation requests from Kafka, computes yield anomalies against the
// configured climate data service, and produces results to the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agroclim/yield-emulator/internal/adapter/climate"
	httpadapter "github.com/agroclim/yield-emulator/internal/adapter/http"
	kafkaadapter "github.com/agroclim/yield-emulator/internal/adapter/kafka"
	"github.com/agroclim/yield-emulator/internal/config"
	"github.com/agroclim/yield-emulator/internal/emulator"
	"github.com/agroclim/yield-emulator/internal/observability"
	"github.com/agroclim/yield-emulator/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := climate.NewClient(cfg.DataServiceURL, cfg.DataServiceTimeout, logger, metrics)
	source := climate.NewCachedSource(client, cfg.DataCacheSize, metrics)
	logger.Info("climate data service configured",
		"url", cfg.DataServiceURL,
		"cache_size", cfg.DataCacheSize,
		"timeout", cfg.DataServiceTimeout,
	)

	em := emulator.New(source, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(em, cfg.DefaultCrop, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the emulation pipeline.
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
