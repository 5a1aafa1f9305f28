// handlers/router.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/services"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterConfig struct {
	Service  *services.ScheduleService
	Logger   logger.Logger
	Gatherer prometheus.Gatherer // nil disables /metrics
	DB       Pinger              // nil skips the database health check
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	schedules := NewScheduleHandler(cfg.Service, log)
	admin := NewAdminHandler(cfg.Service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log.With("component", "http")))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.DB != nil {
			if err := cfg.DB.PingContext(r.Context()); err != nil {
				respondWithError(w, log, http.StatusInternalServerError, "database connection error")
				return
			}
		}
		respondWithJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/schedules", func(r chi.Router) {
		r.Get("/", schedules.List)
		r.Post("/parse", schedules.Parse)
		r.Route("/{year}/{month}", func(r chi.Router) {
			r.Get("/", schedules.Get)
			r.Put("/", schedules.Import)
			r.Post("/refresh", schedules.Refresh)
			r.Get("/legs.csv", schedules.LegsCSV)
			r.Get("/calendar.csv", schedules.CalendarCSV)
		})
	})

	r.Route("/api/admin/schedules/{year}/{month}", func(r chi.Router) {
		r.Delete("/", admin.Evict)
		r.Get("/fetches", admin.Fetches)
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}
