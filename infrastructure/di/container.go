package di

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"products-api/application/ports"
	"products-api/application/products"
	"products-api/infrastructure/config"
	"products-api/interfaces/http/rest"
	"products-api/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       ports.ItemStore
	Publisher   ports.EventPublisher
	Metrics     *observability.Collector
	Tracer      *observability.TracerProvider
	Facade      *products.Facade
	Router      *rest.Router
	HTTPHandler *chi.Mux
}

// Shutdown flushes telemetry and syncs the logger
func (c *Container) Shutdown(ctx context.Context) error {
	err := c.Tracer.Shutdown(ctx)
	_ = c.Logger.Sync()
	return err
}
