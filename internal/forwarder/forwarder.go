package forwarder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fpl-tracker/fpl-proxy/internal/metrics"
	"github.com/fpl-tracker/fpl-proxy/internal/upstream"
)

// Fetcher performs the single outbound GET for a route.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// ErrorEnvelope is the body of every failed forward.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

type Forwarder struct {
	logger    *slog.Logger
	client    Fetcher
	fixed     map[string]string
	collector *metrics.Collector
	routes    []Route
}

// New builds a Forwarder over the package route table. fixed holds
// deploy-time placeholder values such as the league identifier. collector
// may be nil.
func New(logger *slog.Logger, client Fetcher, fixed map[string]string, collector *metrics.Collector) *Forwarder {
	return &Forwarder{
		logger:    logger,
		client:    client,
		fixed:     fixed,
		collector: collector,
		routes:    Routes,
	}
}

// WithRoutes replaces the route table.
func (f *Forwarder) WithRoutes(routes []Route) *Forwarder {
	f.routes = routes
	return f
}

// Mount validates every route and registers it as a GET on r.
func (f *Forwarder) Mount(r chi.Router) error {
	for _, rt := range f.routes {
		if err := rt.Validate(f.fixed); err != nil {
			return err
		}
	}

	for _, rt := range f.routes {
		r.Get(rt.Pattern(), f.Handler(rt))
		f.logger.Debug("Registered route",
			slog.String("route", rt.Name),
			slog.String("path", rt.Pattern()),
			slog.String("upstream", rt.Upstream))
	}

	return nil
}

// Handler forwards one request for rt.
func (f *Forwarder) Handler(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := make(map[string]string, len(f.fixed)+len(rt.Params))
		for k, v := range f.fixed {
			values[k] = v
		}

		for _, name := range rt.Params {
			n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			values[name] = strconv.FormatUint(n, 10)
		}

		path, err := rt.UpstreamPath(values)
		if err != nil {
			f.logger.Error("Failed to build upstream path", slog.String("route", rt.Name), slog.Any("err", err))
			writeError(w, err)
			return
		}

		// The upstream call outlives a dropped caller.
		ctx := context.WithoutCancel(r.Context())

		start := time.Now()
		body, err := f.client.Get(ctx, path)
		duration := time.Since(start)

		f.collector.Emit(metrics.MetricEvent{
			Type:     metrics.EventUpstreamCompleted,
			Route:    rt.Name,
			Duration: duration,
			Reason:   upstream.Reason(err),
		})

		if err != nil {
			f.logger.Warn("Upstream request failed",
				slog.String("route", rt.Name),
				slog.String("upstream_path", path),
				slog.String("reason", upstream.Reason(err)),
				slog.Duration("duration", duration),
				slog.Any("err", err))
			writeError(w, err)
			return
		}

		f.logger.Debug("Forwarded upstream response",
			slog.String("route", rt.Name),
			slog.String("upstream_path", path),
			slog.Int("bytes", len(body)),
			slog.Duration("duration", duration))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			f.logger.Debug("Failed to write response", slog.String("route", rt.Name), slog.Any("err", err))
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{Error: err.Error()})
}
