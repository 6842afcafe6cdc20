package rest

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"products-api/application/ports"
	"products-api/application/products"
	"products-api/pkg/api"
)

// OpRoute is the operation name reported for routing failures.
const OpRoute = "ROUTE"

// ProductService is the facade surface the router dispatches to.
type ProductService interface {
	GetByID(ctx context.Context, id string) events.APIGatewayProxyResponse
	ListAll(ctx context.Context) events.APIGatewayProxyResponse
	Create(ctx context.Context, item ports.Item) events.APIGatewayProxyResponse
	Update(ctx context.Context, id string, req products.UpdateRequest) events.APIGatewayProxyResponse
	Delete(ctx context.Context, id string) events.APIGatewayProxyResponse
}

// HandlerFunc answers one matched request.
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse

// Route pairs a method and an exact path with its handler.
type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

// Router dispatches gateway requests over an ordered route table. The
// first route whose method and path match wins.
type Router struct {
	routes   []Route
	basePath string
	logger   *zap.Logger
}

// NewRouter creates the product route table. basePath, when set, is
// stripped from incoming paths before matching.
func NewRouter(service ProductService, basePath string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &productHandlers{service: service}

	return &Router{
		basePath: strings.TrimSuffix(basePath, "/"),
		logger:   logger,
		routes: []Route{
			{Method: http.MethodGet, Path: "/health", Handler: healthCheck},
			{Method: http.MethodGet, Path: "/product", Handler: h.getProduct},
			{Method: http.MethodGet, Path: "/products", Handler: h.listProducts},
			{Method: http.MethodPost, Path: "/product", Handler: h.createProduct},
			{Method: http.MethodPatch, Path: "/product", Handler: h.updateProduct},
			{Method: http.MethodDelete, Path: "/product", Handler: h.deleteProduct},
		},
	}
}

// Routes returns a copy of the route table in match order.
func (rt *Router) Routes() []Route {
	out := make([]Route, len(rt.routes))
	copy(out, rt.routes)
	return out
}

// Dispatch routes req and always returns a response.
func (rt *Router) Dispatch(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Error("Panic while handling request",
				zap.Any("panic", rec),
				zap.String("method", req.HTTPMethod),
				zap.String("path", req.Path))
			resp = api.Failure(OpRoute, http.StatusInternalServerError, "internal server error")
		}
	}()

	path := rt.stripBasePath(req.Path)
	for _, route := range rt.routes {
		if route.Method == req.HTTPMethod && route.Path == path {
			return route.Handler(ctx, req)
		}
	}

	rt.logger.Info("No route matched",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path))
	return api.Failure(OpRoute, http.StatusNotFound, fmt.Sprintf("404 Not Found: %s %s", req.HTTPMethod, req.Path))
}

func (rt *Router) stripBasePath(path string) string {
	if rt.basePath == "" || !strings.HasPrefix(path, rt.basePath) {
		return path
	}
	rest := strings.TrimPrefix(path, rt.basePath)
	if rest == "" {
		return "/"
	}
	if !strings.HasPrefix(rest, "/") {
		// "/products" must not match base path "/prod".
		return path
	}
	return rest
}

func healthCheck(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	return api.JSON(http.StatusOK, api.OperationResult{Operation: "HEALTH", Status: api.StatusSuccess})
}

// requestBody returns the raw body, decoding it when the gateway
// base64-encoded it.
func requestBody(req events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	data, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", fmt.Errorf("malformed request body: %w", err)
	}
	return string(data), nil
}
