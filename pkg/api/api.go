// Package api defines the response envelopes returned by every route.
// It decouples the wire structure from the facade and the store.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

const (
	ContentTypeJSON = "application/json"

	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// OperationResult is the body of a failed operation and of the mutating
// operations that have nothing but a status to report.
type OperationResult struct {
	Operation string `json:"operation"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// ItemResult is the body of a successful create or delete. Item is always
// serialized so a delete of an absent item reports "item": null.
type ItemResult struct {
	Operation string      `json:"operation"`
	Status    string      `json:"status"`
	Item      interface{} `json:"item"`
}

// UpdateResult is the body of a successful update.
type UpdateResult struct {
	Operation         string                 `json:"operation"`
	Status            string                 `json:"status"`
	UpdatedAttributes map[string]interface{} `json:"updatedAttributes"`
}

// ListResult is the body of a successful list-all.
type ListResult struct {
	Items interface{} `json:"items"`
}

// GatewayResponse is a helper to create a valid APIGatewayProxyResponse.
func GatewayResponse(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		Body:       body,
	}
}

// JSON formats data as a JSON response. A value that cannot be encoded
// produces a 500 failure instead.
func JSON(statusCode int, data interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		return Failure("ENCODE", http.StatusInternalServerError, "failed to encode response: "+err.Error())
	}
	return GatewayResponse(statusCode, string(body))
}

// Failure formats a failed operation.
func Failure(operation string, statusCode int, reason string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(OperationResult{
		Operation: operation,
		Status:    StatusFailed,
		Reason:    reason,
	})
	return GatewayResponse(statusCode, string(body))
}
