package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"products-api/application/ports"
	"products-api/application/products"
	"products-api/infrastructure/config"
	"products-api/infrastructure/messaging/eventbridge"
	"products-api/infrastructure/persistence/dynamodb"
	"products-api/infrastructure/persistence/memory"
	"products-api/infrastructure/persistence/resilience"
	"products-api/interfaces/http/rest"
	"products-api/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = level
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.ServiceName)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideItemStore selects the store backend and optionally guards it
// with a circuit breaker
func ProvideItemStore(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.ItemStore {
	var store ports.ItemStore
	switch cfg.StoreBackend {
	case config.StoreMemory:
		store = memory.NewItemStore(cfg.ScanPageSize)
	default:
		store = dynamodb.NewItemStore(client, cfg.DynamoDBTable, cfg.ScanPageSize, logger)
	}

	if cfg.EnableCircuitBreaker {
		store = resilience.NewBreakerStore(store, resilience.DefaultBreakerConfig(cfg.ServiceName+"-store"), logger)
	}
	return store
}

// ProvideEventPublisher creates the change event publisher, nil when no
// bus is configured
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics collector, nil when disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("products")
}

// ProvideTracer initializes OTLP tracing, nil when disabled
func ProvideTracer(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	if !cfg.EnableTracing {
		return nil, nil
	}
	return observability.InitTracing(ctx, cfg.ServiceName, cfg.Environment, cfg.OTELEndpoint)
}

// ProvideFacade creates the product facade
func ProvideFacade(
	store ports.ItemStore,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *products.Facade {
	return products.NewFacade(store, publisher, metrics, logger, products.Options{
		UpdatableFields: cfg.UpdatableFields,
		MaxScanPages:    cfg.MaxScanPages,
	})
}

// ProvideRouter creates the route table
func ProvideRouter(facade *products.Facade, cfg *config.Config, logger *zap.Logger) *rest.Router {
	return rest.NewRouter(facade, cfg.BasePath, logger)
}

// ProvideHTTPHandler mounts the router behind chi
func ProvideHTTPHandler(router *rest.Router, metrics *observability.Collector, cfg *config.Config, logger *zap.Logger) *chi.Mux {
	return rest.NewHTTPHandler(router, rest.HTTPOptions{
		Metrics:    metrics,
		EnableCORS: cfg.EnableCORS,
	}, logger)
}
