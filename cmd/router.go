package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fpl-tracker/fpl-proxy/config"
	"github.com/fpl-tracker/fpl-proxy/internal/forwarder"
	"github.com/fpl-tracker/fpl-proxy/internal/handler"
	"github.com/fpl-tracker/fpl-proxy/internal/metrics"
)

// setupRouter assembles the public surface. collector may be nil, in which
// case /stats and /metrics are not mounted.
func setupRouter(log *slog.Logger, cfg *config.Config, client forwarder.Fetcher, collector *metrics.Collector) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handler.CORS)
	r.Use(handler.NewRequestLogger(log, collector).Middleware)

	r.Get("/", handler.Index)

	fixed := map[string]string{
		forwarder.LeagueIDParam: strconv.Itoa(cfg.League.ID),
	}
	if err := forwarder.New(log, client, fixed, collector).Mount(r); err != nil {
		return nil, err
	}

	if collector != nil {
		r.Get("/stats", collector.Handler())
		r.Method(http.MethodGet, "/metrics", collector.PrometheusHandler())
	}

	return r, nil
}
