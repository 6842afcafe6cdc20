package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application. A nil
// *Collector is valid and records nothing.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Facade metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Pagination metrics
	ScanPages prometheus.Counter

	// Change events
	EventsPublished *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Each collector owns its registry so tests can create as many as they need
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of item store facade operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Item store facade operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	scanPages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_pages_total",
			Help:      "Total number of store pages read while listing items",
		},
	)

	eventsPublished := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of change events handed to the event bus",
		},
		[]string{"type", "result"},
	)

	registry.MustRegister(operations, operationDuration, scanPages, eventsPublished)

	return &Collector{
		registry:          registry,
		Operations:        operations,
		OperationDuration: operationDuration,
		ScanPages:         scanPages,
		EventsPublished:   eventsPublished,
	}
}

// Registry returns the registry backing this collector
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordOperation records the outcome and latency of one facade operation
func (c *Collector) RecordOperation(operation string, statusCode int, duration time.Duration) {
	if c == nil {
		return
	}
	c.Operations.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	c.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordScanPages adds the number of pages read by one list-all
func (c *Collector) RecordScanPages(pages int) {
	if c == nil || pages <= 0 {
		return
	}
	c.ScanPages.Add(float64(pages))
}

// RecordEvent records a change event publication attempt
func (c *Collector) RecordEvent(eventType string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.EventsPublished.WithLabelValues(eventType, result).Inc()
}
