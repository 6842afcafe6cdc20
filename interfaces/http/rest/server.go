package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"products-api/interfaces/http/rest/middleware"
	"products-api/pkg/api"
	"products-api/pkg/observability"
)

// maxBodyBytes mirrors the API Gateway payload limit.
const maxBodyBytes = 10 << 20

// HTTPOptions configures the chi front of the router.
type HTTPOptions struct {
	// Metrics, when set, is exposed on GET /metrics.
	Metrics    *observability.Collector
	EnableCORS bool
}

// NewHTTPHandler mounts the router behind chi so the same route table
// serves plain HTTP and API Gateway v2 events through the chi adapter.
func NewHTTPHandler(rt *Router, opts HTTPOptions, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(chimiddleware.Recoverer)
	mux.Use(middleware.Logger(logger))

	if opts.EnableCORS {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	if registry := opts.Metrics.Registry(); registry != nil {
		mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	mux.Handle("/*", rt)
	return mux
}

// ServeHTTP converts r into a proxy request and writes the dispatched response.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeResponse(w, api.Failure(OpRoute, http.StatusBadRequest, "failed to read request body"))
		return
	}

	query := make(map[string]string, len(r.URL.Query()))
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}
	headers := make(map[string]string, len(r.Header))
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}

	resp := rt.Dispatch(r.Context(), events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		QueryStringParameters: query,
		Body:                  string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
