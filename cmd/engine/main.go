package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/sdars/hazard-engine/internal/adapter/http"
	kafkaadapter "github.com/sdars/hazard-engine/internal/adapter/kafka"
	"github.com/sdars/hazard-engine/internal/adapter/notify"
	"github.com/sdars/hazard-engine/internal/adapter/sqlite"
	"github.com/sdars/hazard-engine/internal/adapter/synthetic"
	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/cache"
	"github.com/sdars/hazard-engine/internal/config"
	"github.com/sdars/hazard-engine/internal/dispatch"
	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/monitor"
	"github.com/sdars/hazard-engine/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := sqlite.NewStore(cfg.ZoneDBPath)
	if err != nil {
		logger.Error("failed to open zone store", "path", cfg.ZoneDBPath, "error", err)
		os.Exit(1)
	}

	// System channel publishing is feature-flagged via KAFKA_ENABLED; without
	// it system alerts fall back to the log.
	var publisher *kafkaadapter.Publisher
	var systemPublisher notify.SystemPublisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		systemPublisher = publisher
		logger.Info("kafka alert publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertsTopic)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	email := notify.NewEmailSender(cfg, logger)
	transport := notify.NewTransport(email, systemPublisher, cfg.AlertPhone, logger)

	dispatcher := dispatch.NewDispatcher(transport, store, cfg.AlertEmailTo, logger, metrics)
	queue := dispatch.NewQueue(dispatcher, cfg.DispatchWorkers, cfg.DispatchQueueSize, logger, metrics)
	queue.Start()

	manager := alert.NewManager(store, logger, metrics)
	predictor := cache.New(domain.NewOrchestrator(), cfg.CacheTTL, metrics)
	provider := synthetic.NewProvider(logger)

	mon := monitor.New(provider, predictor, manager, queue, store, cfg, logger, metrics)

	var ready httpadapter.ReadinessChecker = httpadapter.ReadyFunc(func(context.Context) error { return nil })
	if cfg.MonitorEnabled {
		ready = mon
	}
	status := func() httpadapter.Status {
		return httpadapter.Status{
			ActiveAlerts:    len(manager.Active("")),
			CachedLocations: predictor.Len(),
			MonitorEnabled:  cfg.MonitorEnabled,
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, status, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the sweep scheduler.
	if cfg.MonitorEnabled {
		if err := mon.Start(); err != nil {
			logger.Error("monitor start error", "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if cfg.MonitorEnabled {
		mon.Stop()
	}
	queue.Close()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("zone store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
