package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type promMetrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	responses        *prometheus.CounterVec
}

func newPromMetrics() *promMetrics {
	pm := &promMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_proxy_requests_total",
				Help: "Inbound requests received, by route",
			},
			[]string{"route"},
		),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_proxy_upstream_requests_total",
				Help: "Upstream GET requests issued, by route and result",
			},
			[]string{"route", "result"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fpl_proxy_upstream_duration_seconds",
				Help:    "Upstream GET latency, by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpl_proxy_responses_total",
				Help: "Outbound responses written, by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	pm.registry.MustRegister(
		pm.requests,
		pm.upstreamRequests,
		pm.upstreamDuration,
		pm.responses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return pm
}

func (pm *promMetrics) observe(event MetricEvent) {
	switch event.Type {
	case EventRequestReceived:
		pm.requests.WithLabelValues(event.Route).Inc()

	case EventUpstreamCompleted:
		result := event.Reason
		if result == "" {
			result = "ok"
		}
		pm.upstreamRequests.WithLabelValues(event.Route, result).Inc()
		pm.upstreamDuration.WithLabelValues(event.Route).Observe(event.Duration.Seconds())

	case EventResponseCompleted:
		pm.responses.WithLabelValues(event.Route, strconv.Itoa(event.StatusCode)).Inc()
	}
}
