package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitTracing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	// Act
	tp, err := InitTracing(ctx, "products-api", "development", "localhost:4317")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, tp)

	res := tp.provider.Resource()
	service, ok := res.Set().Value(attribute.Key("service.name"))
	assert.True(t, ok)
	assert.Equal(t, "products-api", service.AsString())
	assert.Same(t, tp.provider, otel.GetTracerProvider())

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestTracerProvider_NilIsNoop(t *testing.T) {
	var tp *TracerProvider

	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}
