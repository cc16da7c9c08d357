package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived   EventType = "request_received"
	EventUpstreamCompleted EventType = "upstream_completed"
	EventResponseCompleted EventType = "response_completed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Route      string
	Duration   time.Duration
	StatusCode int
	// Reason is the upstream failure class; empty on success.
	Reason string
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	prom    *promMetrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		prom:    newPromMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Emit queues an event without blocking. Events are dropped when the buffer
// is full. Safe to call on a nil Collector.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	c.prom.observe(event)

	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests(event.Route)

	case EventUpstreamCompleted:
		c.metrics.RecordUpstream(event.Route, event.Duration, event.Reason)

	case EventResponseCompleted:
		c.metrics.RecordResponse(event.Route, event.StatusCode)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
