package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fpl-tracker/fpl-proxy/internal/metrics"
)

const (
	IndexMessage    = "FPL Tracker API is Running!"
	RequestIDHeader = "X-Request-Id"
)

type ctxKey struct{}

// Index answers the liveness probe without touching the upstream.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(IndexMessage))
}

// CORS allows every origin on every response, including errors and 404s,
// and answers preflight requests itself.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			h.Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type RequestLogger struct {
	logger           *slog.Logger
	metricsCollector *metrics.Collector
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func NewRequestLogger(logger *slog.Logger, collector *metrics.Collector) *RequestLogger {
	return &RequestLogger{
		logger:           logger,
		metricsCollector: collector,
	}
}

// Middleware tags the request with an id, logs it on arrival and completion
// and emits request and response metric events labelled with the route name.
func (rl *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, requestID))

		clientIP := extractClientIP(r)
		log := rl.logger.With(slog.String("request_id", requestID))

		log.Info("Received request",
			slog.String("from", clientIP),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("proto", r.Proto),
			slog.String("host", r.Host),
			slog.String("user_agent", r.UserAgent()))

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)

		route := routeName(r)

		rl.metricsCollector.Emit(metrics.MetricEvent{
			Type:  metrics.EventRequestReceived,
			Route: route,
		})
		rl.metricsCollector.Emit(metrics.MetricEvent{
			Type:       metrics.EventResponseCompleted,
			Route:      route,
			Duration:   duration,
			StatusCode: wrapped.statusCode,
		})

		log.Info("Completed request",
			slog.String("route", route),
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", duration))
	})
}

// RequestID returns the id assigned by RequestLogger, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// routeName labels metrics by the matched pattern so that ids in the path do
// not explode label cardinality.
func routeName(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	pattern := rctx.RoutePattern()
	switch {
	case pattern == "":
		return "unmatched"
	case pattern == "/":
		return "index"
	case strings.HasPrefix(pattern, "/api/"):
		name := strings.TrimPrefix(pattern, "/api/")
		if i := strings.IndexByte(name, '/'); i >= 0 {
			name = name[:i]
		}
		return name
	default:
		return strings.TrimPrefix(pattern, "/")
	}
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
