// cmd_serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gewnthar/crewsched/config"
	"github.com/gewnthar/crewsched/database"
	"github.com/gewnthar/crewsched/fetcher"
	"github.com/gewnthar/crewsched/handlers"
	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/metrics"
	"github.com/gewnthar/crewsched/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schedule HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// buildService opens the cache and wires the extractor, portal client and metrics.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*services.ScheduleService, error) {
	if err := database.InitDB(cfg.Database); err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	store := database.NewScheduleStore(database.DB, cfg.Database.Driver)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	ext, err := services.NewExtractor(cfg.Parser.Engine, log, nil)
	if err != nil {
		return nil, err
	}
	svc := &services.ScheduleService{
		Extractor: ext,
		Cache:     store,
		FetchLog:  store,
		MaxAge:    cfg.Cache.MaxAge,
		Logger:    log.With("component", "service"),
		Metrics:   m,
	}
	if cfg.Portal.ScheduleURL != "" {
		svc.Fetcher = fetcher.New(cfg.Portal, nil, log, fetcher.WithMetrics(m))
	} else {
		log.Warn("portal schedule_url not configured, serving cached and imported schedules only")
	}
	return svc, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics("crewsched", prometheus.DefaultRegisterer)
	svc, err := buildService(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer database.CloseDB()

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Service:  svc,
			Logger:   log,
			Gatherer: prometheus.DefaultGatherer,
			DB:       database.DB,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "engine", cfg.Parser.Engine, "db", cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}
