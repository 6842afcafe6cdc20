// Package products implements the item store facade: every product
// operation turns into store calls and always yields a gateway response.
package products

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"products-api/application/ports"
	"products-api/pkg/api"
	apperrors "products-api/pkg/errors"
	"products-api/pkg/observability"
)

// Options tunes facade behaviour.
type Options struct {
	// UpdatableFields is the update allow-list. Empty means DefaultUpdatableFields.
	UpdatableFields []string
	// MaxScanPages caps list-all. Zero means unbounded.
	MaxScanPages int
}

// Facade maps product operations onto an ItemStore.
type Facade struct {
	store     ports.ItemStore
	publisher ports.EventPublisher
	metrics   *observability.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
	updatable map[string]struct{}
	maxPages  int
	now       func() time.Time
}

// NewFacade creates a facade. publisher and metrics may be nil.
func NewFacade(store ports.ItemStore, publisher ports.EventPublisher, metrics *observability.Collector, logger *zap.Logger, opts Options) *Facade {
	fields := opts.UpdatableFields
	if len(fields) == 0 {
		fields = DefaultUpdatableFields
	}
	updatable := make(map[string]struct{}, len(fields))
	for _, name := range fields {
		updatable[name] = struct{}{}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Facade{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		tracer:    otel.Tracer("products-api/products"),
		logger:    logger,
		updatable: updatable,
		maxPages:  opts.MaxScanPages,
		now:       time.Now,
	}
}

type outcome struct {
	status int
	body   interface{}
}

// GetByID returns the item stored under id.
func (f *Facade) GetByID(ctx context.Context, id string) events.APIGatewayProxyResponse {
	return f.execute(ctx, OpGet, id, func(ctx context.Context) (outcome, error) {
		if strings.TrimSpace(id) == "" {
			return outcome{}, apperrors.NewValidationError("id is required")
		}
		item, err := f.store.Get(ctx, id)
		if err != nil {
			return outcome{}, storeError("GetItem", err)
		}
		return outcome{status: http.StatusOK, body: item}, nil
	})
}

// ListAll returns every stored item.
func (f *Facade) ListAll(ctx context.Context) events.APIGatewayProxyResponse {
	return f.execute(ctx, OpList, "", func(ctx context.Context) (outcome, error) {
		items, pages, err := Accumulate(ctx, f.store, f.maxPages)
		f.metrics.RecordScanPages(pages)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("scan.pages", pages))
		if err != nil {
			if errors.Is(err, ErrPageLimitExceeded) {
				return outcome{}, apperrors.NewInternalError(err.Error()).WithCause(err)
			}
			return outcome{}, storeError("Scan", err)
		}
		return outcome{status: http.StatusOK, body: api.ListResult{Items: items}}, nil
	})
}

// Create stores item, replacing any item with the same id.
func (f *Facade) Create(ctx context.Context, item ports.Item) events.APIGatewayProxyResponse {
	id := item.ID()
	return f.execute(ctx, OpCreate, id, func(ctx context.Context) (outcome, error) {
		if strings.TrimSpace(id) == "" {
			return outcome{}, apperrors.NewValidationError("id is required")
		}
		if err := f.store.Put(ctx, item); err != nil {
			return outcome{}, storeError("PutItem", err)
		}
		f.publish(ctx, ports.EventProductCreated, id, item)
		return outcome{
			status: http.StatusCreated,
			body:   api.ItemResult{Operation: OpCreate, Status: api.StatusSuccess, Item: item},
		}, nil
	})
}

// Update applies a partial update to an existing item.
func (f *Facade) Update(ctx context.Context, id string, req UpdateRequest) events.APIGatewayProxyResponse {
	return f.execute(ctx, OpUpdate, id, func(ctx context.Context) (outcome, error) {
		fields, err := f.updateFields(id, req)
		if err != nil {
			return outcome{}, err
		}
		updated, err := f.store.Update(ctx, id, fields)
		if err != nil {
			return outcome{}, storeError("UpdateItem", err)
		}
		f.publish(ctx, ports.EventProductUpdated, id, updated)
		return outcome{
			status: http.StatusOK,
			body:   api.UpdateResult{Operation: OpUpdate, Status: api.StatusSuccess, UpdatedAttributes: updated},
		}, nil
	})
}

// Delete removes the item and reports its prior state, null if it was absent.
func (f *Facade) Delete(ctx context.Context, id string) events.APIGatewayProxyResponse {
	return f.execute(ctx, OpDelete, id, func(ctx context.Context) (outcome, error) {
		if strings.TrimSpace(id) == "" {
			return outcome{}, apperrors.NewValidationError("id is required")
		}
		prior, err := f.store.Delete(ctx, id)
		if err != nil {
			return outcome{}, storeError("DeleteItem", err)
		}
		if prior != nil {
			f.publish(ctx, ports.EventProductDeleted, id, prior)
		}
		return outcome{
			status: http.StatusOK,
			body:   api.ItemResult{Operation: OpDelete, Status: api.StatusSuccess, Item: prior},
		}, nil
	})
}

// execute wraps one operation in a span, records metrics, and converts the
// outcome or error into a response.
func (f *Facade) execute(ctx context.Context, op, id string, fn func(context.Context) (outcome, error)) events.APIGatewayProxyResponse {
	attrs := []attribute.KeyValue{attribute.String("product.operation", op)}
	if id != "" {
		attrs = append(attrs, attribute.String("product.id", id))
	}
	ctx, span := f.tracer.Start(ctx, "products."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := f.now()
	out, err := fn(ctx)

	var resp events.APIGatewayProxyResponse
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		resp = f.failure(op, id, err)
	} else {
		resp = api.JSON(out.status, out.body)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	f.metrics.RecordOperation(op, resp.StatusCode, f.now().Sub(start))
	return resp
}

func (f *Facade) failure(op, id string, err error) events.APIGatewayProxyResponse {
	status := apperrors.StatusOf(err)
	reason := err.Error()
	if appErr, ok := apperrors.GetAppError(err); ok {
		reason = appErr.Message
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("id", id),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		f.logger.Error("Item store operation failed", fields...)
	} else {
		f.logger.Info("Item store operation rejected", fields...)
	}

	return api.Failure(op, status, reason)
}

// storeError classifies a store failure.
func storeError(storeOp string, err error) error {
	switch {
	case errors.Is(err, ports.ErrItemNotFound):
		return apperrors.NewNotFoundError("item").WithCause(err)
	case errors.Is(err, ports.ErrInvalidItem):
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	default:
		return apperrors.NewDatabaseError(storeOp, err)
	}
}

// publish emits a change event. Delivery failures are logged and never
// affect the response.
func (f *Facade) publish(ctx context.Context, eventType, id string, data map[string]interface{}) {
	if f.publisher == nil {
		return
	}
	err := f.publisher.Publish(ctx, ports.ChangeEvent{
		Type:       eventType,
		ItemID:     id,
		Data:       data,
		OccurredAt: f.now().UTC(),
	})
	f.metrics.RecordEvent(eventType, err)
	if err != nil {
		f.logger.Warn("Failed to publish change event",
			zap.String("type", eventType),
			zap.String("id", id),
			zap.Error(err))
	}
}
