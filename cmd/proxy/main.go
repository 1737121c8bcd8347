// Command proxy serves Snowflake external-function geocoding calls: it
// decodes the batch envelope, routes on the function-name convention, fans
// rows out to the geocoding backend, and returns results in the warehouse's
// tabular wire format.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	configstoreadapter "github.com/couchcryptid/geocode-proxy-service/internal/adapter/configstore"
	httpadapter "github.com/couchcryptid/geocode-proxy-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geocode-proxy-service/internal/adapter/kafka"
	"github.com/couchcryptid/geocode-proxy-service/internal/adapter/places"
	"github.com/couchcryptid/geocode-proxy-service/internal/config"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = godotenv.Load() // local runs only; absent .env is fine

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geocoder := places.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlacesTimeout, metrics, logger)

	storeClient := configstoreadapter.NewClient(
		cfg.ConfigStoreBaseURL,
		cfg.ConfigStoreApplication,
		cfg.ConfigStoreEnvironment,
		cfg.ConfigStoreProfile,
		cfg.PlacesTimeout,
		logger,
	)
	resolver := configstoreadapter.NewCachedResolver(storeClient, cfg.IndexCacheTTL, clockwork.NewRealClock(), metrics)

	var auditor httpadapter.Auditor
	var auditWriter *kafkaadapter.Writer
	if cfg.AuditEnabled() {
		auditWriter = kafkaadapter.NewWriter(cfg, metrics, logger)
		auditor = auditWriter
		logger.Info("audit trail enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("audit trail disabled")
	}

	handler := httpadapter.NewHandler(geocoder, resolver, auditor, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, handler, resolver, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if auditWriter != nil {
		if err := auditWriter.Close(); err != nil {
			logger.Error("audit writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
