package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordOperation(t *testing.T) {
	c := NewCollector("products")

	c.RecordOperation("GET", 200, 15*time.Millisecond)
	c.RecordOperation("GET", 200, 5*time.Millisecond)
	c.RecordOperation("GET", 404, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.Operations.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Operations.WithLabelValues("GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.OperationDuration))
}

func TestCollector_ScanPagesAndEvents(t *testing.T) {
	c := NewCollector("products")

	c.RecordScanPages(3)
	c.RecordScanPages(0)
	c.RecordEvent("ProductCreated", nil)
	c.RecordEvent("ProductCreated", errors.New("bus unavailable"))

	assert.Equal(t, float64(3), testutil.ToFloat64(c.ScanPages))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.EventsPublished.WithLabelValues("ProductCreated", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.EventsPublished.WithLabelValues("ProductCreated", "error")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordOperation("LIST", 200, time.Millisecond)
		c.RecordScanPages(2)
		c.RecordEvent("ProductDeleted", nil)
	})
	assert.Nil(t, c.Registry())
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a := NewCollector("products")
	b := NewCollector("products")

	a.RecordScanPages(1)

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, float64(0), testutil.ToFloat64(b.ScanPages))
}
