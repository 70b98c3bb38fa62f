package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/api"
	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the shipment geocoding worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Canceled when an interrupt signal is received, for graceful shutdown.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, config.MustLoad())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg.Env, os.Stdout)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		return err
	}

	res, err := newResolver(cfg, logger, appMetrics, repo)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type)

	geoService := service.NewGeocodingService(logger, repo, res, appMetrics, cfg.Workers, cfg.Interval)

	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	readTimeout := 5 * time.Second
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewServer(logger, res, dtb, reg, cfg.Resolver.Timeout).Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: cfg.Resolver.Timeout + readTimeout,
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	go geoService.Run(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting API server", "port", cfg.Port)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	}

	shutdownTimeout := 10 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "API server shutdown failed", "error", err)
	}

	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")

	return nil
}
