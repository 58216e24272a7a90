package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"media-catalog/internal/handlers"
	"media-catalog/internal/indexer"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/middleware"
	"media-catalog/internal/reconcile"
	"media-catalog/internal/startup"
)

const (
	shutdownTimeout        = 30 * time.Second
	metricsCollectInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Reconcile periodically and serve the HTTP API",
		Long: `Serve runs a pass at startup and then every INDEX_INTERVAL, and exposes health
probes, Prometheus metrics, catalog lookups and thumbnails over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	startTime := time.Now()

	startup.PrintBanner()
	startup.ConfigureMemoryLimit()
	cfg, err := startup.LoadConfig()
	if err != nil {
		return err
	}
	startup.LogConfig(cfg)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	metrics.InitializeMetrics()
	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
	transcoder, cleanup := setupMedia(cfg, cfg.MediaDir)
	defer cleanup()

	runner := indexer.New(reconcile.Deps{Store: store, Thumbnails: transcoder}, cfg.MediaDir, cfg.IndexInterval)
	runner.SetOnPassComplete(func(report reconcile.Report) {
		afterPass(ctx, store, report)
	})

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector(store, metricsCollectInterval)
		collector.Start()
	}

	h := handlers.New(store, runner)
	router := h.Router(cfg.MetricsEnabled)
	startup.LogHTTPRoutes(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	runner.Start(ctx)
	startup.LogServerStarted(cfg.Port, cfg.MetricsEnabled, time.Since(startTime))

	select {
	case <-ctx.Done():
		startup.LogShutdownInitiated("signal received")
	case err = <-serverErr:
		startup.LogShutdownInitiated("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logging.Warn("Server shutdown error: %v", shutdownErr)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping runner")
	runner.Stop()
	startup.LogShutdownStepComplete("Runner stopped")

	if collector != nil {
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	startup.LogShutdownComplete()
	return err
}
