package metrics

import (
	"sort"
	"sync"
	"time"
)

// maxSamples bounds the latency window kept per route.
const maxSamples = 1000

type Metrics struct {
	mutex            sync.RWMutex
	requests         map[string]int64
	upstreamCalls    map[string]int64
	upstreamFailures map[string]map[string]int64
	upstreamTimes    map[string][]time.Duration
	statusCodes      map[string]map[int]int64
	startTime        time.Time
}

type Snapshot struct {
	TotalRequests int64                   `json:"total_requests"`
	Uptime        time.Duration           `json:"uptime"`
	Routes        map[string]RouteMetrics `json:"routes"`
}

type RouteMetrics struct {
	Requests         int64            `json:"requests"`
	UpstreamCalls    int64            `json:"upstream_calls"`
	UpstreamFailures map[string]int64 `json:"upstream_failures,omitempty"`
	AvgUpstream      time.Duration    `json:"avg_upstream"`
	P50Upstream      time.Duration    `json:"p50_upstream"`
	P95Upstream      time.Duration    `json:"p95_upstream"`
	P99Upstream      time.Duration    `json:"p99_upstream"`
	StatusCodes      map[int]int64    `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:         make(map[string]int64),
		upstreamCalls:    make(map[string]int64),
		upstreamFailures: make(map[string]map[string]int64),
		upstreamTimes:    make(map[string][]time.Duration),
		statusCodes:      make(map[string]map[int]int64),
		startTime:        time.Now(),
	}
}

func (m *Metrics) IncrementRequests(route string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[route]++
}

// RecordUpstream stores one upstream call. An empty reason means success.
func (m *Metrics) RecordUpstream(route string, duration time.Duration, reason string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.upstreamCalls[route]++

	m.upstreamTimes[route] = append(m.upstreamTimes[route], duration)
	if len(m.upstreamTimes[route]) > maxSamples {
		m.upstreamTimes[route] = m.upstreamTimes[route][1:]
	}

	if reason == "" {
		return
	}
	if m.upstreamFailures[route] == nil {
		m.upstreamFailures[route] = make(map[string]int64)
	}
	m.upstreamFailures[route][reason]++
}

func (m *Metrics) RecordResponse(route string, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.statusCodes[route] == nil {
		m.statusCodes[route] = make(map[int]int64)
	}
	m.statusCodes[route][statusCode]++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime: time.Since(m.startTime),
		Routes: make(map[string]RouteMetrics),
	}

	allRoutes := make(map[string]bool)
	for route := range m.requests {
		allRoutes[route] = true
	}
	for route := range m.upstreamCalls {
		allRoutes[route] = true
	}
	for route := range m.statusCodes {
		allRoutes[route] = true
	}

	for route := range allRoutes {
		snap.TotalRequests += m.requests[route]

		rm := RouteMetrics{
			Requests:         m.requests[route],
			UpstreamCalls:    m.upstreamCalls[route],
			UpstreamFailures: copyCounts(m.upstreamFailures[route]),
			StatusCodes:      copyCounts(m.statusCodes[route]),
		}

		durations := m.upstreamTimes[route]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			rm.AvgUpstream = average(sorted)
			rm.P50Upstream = percentile(sorted, 0.50)
			rm.P95Upstream = percentile(sorted, 0.95)
			rm.P99Upstream = percentile(sorted, 0.99)
		}

		snap.Routes[route] = rm
	}

	return snap
}

func copyCounts[K comparable](src map[K]int64) map[K]int64 {
	if src == nil {
		return nil
	}
	dst := make(map[K]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
