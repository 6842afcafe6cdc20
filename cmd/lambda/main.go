package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"products-api/infrastructure/config"
	"products-api/infrastructure/di"
	"products-api/interfaces/http/rest/middleware"
)

// Global variables for Lambda lifecycle management
var (
	// container holds the dependency injection container
	container *di.Container

	// chiLambda serves API Gateway v2 (HTTP API) events
	chiLambda *chiadapter.ChiLambdaV2

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if cfg.LambdaEventFormat == config.EventFormatHTTP {
		chiLambda = chiadapter.NewV2(container.HTTPHandler)
	}

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("event_format", cfg.LambdaEventFormat),
		zap.String("store", cfg.StoreBackend),
	)
}

// lambdaHeaders returns the monitoring headers for this invocation and
// clears the cold start flag.
func lambdaHeaders(requestID string) map[string]string {
	headers := map[string]string{"X-Cold-Start": "false"}
	if coldStart {
		headers["X-Cold-Start"] = "true"
		headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	}
	if requestID != "" {
		headers[middleware.RequestIDHeader] = requestID
	}
	return headers
}

func mergeHeaders(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// flush exports buffered spans before Lambda freezes the process
func flush(ctx context.Context) {
	if err := container.Tracer.ForceFlush(ctx); err != nil {
		container.Logger.Warn("Failed to flush traces", zap.Error(err))
	}
}

// HandleREST serves API Gateway REST (v1 proxy) events by dispatching
// straight to the route table.
func HandleREST(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	defer flush(ctx)
	ctx = middleware.WithRequestID(ctx, req.RequestContext.RequestID)

	resp := container.Router.Dispatch(ctx, req)
	resp.Headers = mergeHeaders(resp.Headers, lambdaHeaders(req.RequestContext.RequestID))

	container.Logger.Info("Lambda response",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
		zap.String("stage", req.RequestContext.Stage),
	)
	return resp, nil
}

// HandleHTTP serves API Gateway HTTP API (v2) events through chi.
func HandleHTTP(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	defer flush(ctx)

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	resp.Headers = mergeHeaders(resp.Headers, lambdaHeaders(req.RequestContext.RequestID))

	container.Logger.Info("Lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
		zap.String("stage", req.RequestContext.Stage),
	)
	return resp, err
}

// main is the entry point for the Lambda function
func main() {
	if chiLambda != nil {
		lambda.Start(HandleHTTP)
		return
	}
	lambda.Start(HandleREST)
}
