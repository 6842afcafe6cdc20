package rest

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"products-api/application/products"
	"products-api/pkg/api"
	apperrors "products-api/pkg/errors"
)

type productHandlers struct {
	service ProductService
}

func badRequest(op string, err error) events.APIGatewayProxyResponse {
	reason := err.Error()
	if appErr, ok := apperrors.GetAppError(err); ok {
		reason = appErr.Message
	}
	return api.Failure(op, http.StatusBadRequest, reason)
}

func (h *productHandlers) getProduct(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	return h.service.GetByID(ctx, req.QueryStringParameters["id"])
}

func (h *productHandlers) listProducts(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	return h.service.ListAll(ctx)
}

func (h *productHandlers) createProduct(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return badRequest(products.OpCreate, err)
	}
	item, err := products.DecodeItem(body)
	if err != nil {
		return badRequest(products.OpCreate, err)
	}
	return h.service.Create(ctx, item)
}

func (h *productHandlers) updateProduct(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return badRequest(products.OpUpdate, err)
	}
	id, update, err := products.DecodeUpdate(body)
	if err != nil {
		return badRequest(products.OpUpdate, err)
	}
	return h.service.Update(ctx, id, update)
}

func (h *productHandlers) deleteProduct(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return badRequest(products.OpDelete, err)
	}
	id, err := products.DecodeDelete(body)
	if err != nil {
		return badRequest(products.OpDelete, err)
	}
	return h.service.Delete(ctx, id)
}
