package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentinelops/sentinel/api"
	"github.com/sentinelops/sentinel/internal/actuator"
	"github.com/sentinelops/sentinel/internal/detector"
	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/history"
	"github.com/sentinelops/sentinel/internal/logger"
	"github.com/sentinelops/sentinel/internal/metrics"
	"github.com/sentinelops/sentinel/internal/monitor"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/internal/remediation"
	"github.com/sentinelops/sentinel/internal/telemetry"
	"github.com/sentinelops/sentinel/pkg/config"
	"github.com/sentinelops/sentinel/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("Database connection established")

		if *migrate {
			logger.Info("Running database migrations")
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			if err := database.NewMigrator(db).Run(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info("Migrations completed successfully")
			return nil
		}
	} else if *migrate {
		return fmt.Errorf("cannot migrate: database is disabled in config")
	}

	// Event plumbing
	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()
	publisher := events.NewPublisher(bus)

	eventLogger := events.NewEventLogger(db, bus.SubscribeAll())
	eventLogger.Start()
	defer eventLogger.Stop()

	// Telemetry
	querier := telemetry.NewResilientQuerier(telemetry.ResilientConfig{
		Querier: telemetry.NewPrometheusQuerier(telemetry.PrometheusConfig{
			Endpoint: cfg.Telemetry.Endpoint,
			Timeout:  cfg.Telemetry.Timeout,
		}),
	})
	defer querier.Close()

	// Detection side
	selfMetrics := metrics.New()
	hist := history.NewStore(cfg.Monitor.History)
	reg := registry.New()

	targets := make([]monitor.Target, 0, len(cfg.Monitor.Targets))
	for _, t := range cfg.Monitor.Targets {
		targets = append(targets, monitor.Target{
			Service: t.Service,
			Metric:  t.Metric,
			Query:   t.Query,
		})
	}

	mon := monitor.New(monitor.Config{
		Interval: cfg.Monitor.Interval,
		Targets:  targets,
		Method:   cfg.Detector.Method,
		Statistical: detector.StatisticalConfig{
			WindowSize:  cfg.Detector.WindowSize,
			Sensitivity: cfg.Detector.Sensitivity,
		},
		IsolationForest: detector.IsolationForestConfig{
			NumTrees:      cfg.Detector.NumTrees,
			SubsampleSize: cfg.Detector.SubsampleSize,
			TrainSamples:  cfg.Detector.TrainSamples,
			ScoreCutoff:   cfg.Detector.ScoreCutoff,
		},
	}, querier, hist, reg, publisher, selfMetrics)

	// Remediation side
	policies := policy.NewStore(cfg.Policies.File)

	var act actuator.Actuator
	if cfg.Actuator.Mode == "http" {
		act = actuator.NewHTTPActuator(actuator.HTTPActuatorConfig{
			Endpoint: cfg.Actuator.Endpoint,
			Timeout:  cfg.Actuator.Timeout,
		})
	} else {
		act = actuator.NewSimActuator()
	}

	cooldowns := remediation.NewCooldownTracker()
	actionLog := remediation.NewActionLog(remediation.DefaultLogCapacity)
	executor := remediation.NewExecutor(act, cooldowns, actionLog, publisher, selfMetrics)
	controller := remediation.NewController(remediation.Config{
		Interval: cfg.Remediation.Interval,
		Enabled:  cfg.Remediation.Enabled,
	}, remediation.NewRegistryFeed(reg), policies, executor, cooldowns)

	// Control loops
	loopCtx, loopCancel := context.WithCancel(context.Background())
	defer loopCancel()

	go mon.Run(loopCtx)
	go controller.Run(loopCtx)

	// HTTP surface
	server, err := api.NewServer(cfg.API, cfg.WebSocket, api.Dependencies{
		DB:         db,
		Querier:    querier,
		Registry:   reg,
		History:    hist,
		Monitor:    mon,
		Policies:   policies,
		Controller: controller,
		ActionLog:  actionLog,
		Executor:   executor,
		Publisher:  publisher,
		Bus:        bus,
		Metrics:    selfMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	loopCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
