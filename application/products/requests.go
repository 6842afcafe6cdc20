package products

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"products-api/application/ports"
	apperrors "products-api/pkg/errors"
)

// Operation names reported in response bodies.
const (
	OpGet    = "GET"
	OpList   = "LIST"
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// maxSafeInteger is the largest integer a JSON number carries without loss.
const maxSafeInteger = 1<<53 - 1

// NormalizeID converts a decoded JSON id to its canonical string form.
// Strings pass through; integral numbers become their decimal form.
func NormalizeID(v interface{}) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", apperrors.NewValidationError("id is required")
	case string:
		if strings.TrimSpace(id) == "" {
			return "", apperrors.NewValidationError("id is required")
		}
		return id, nil
	case float64:
		if id != math.Trunc(id) || math.Abs(id) > maxSafeInteger {
			return "", apperrors.NewValidationError("id must be a string or an integer")
		}
		return strconv.FormatInt(int64(id), 10), nil
	default:
		return "", apperrors.NewValidationError("id must be a string or an integer")
	}
}

func malformedBody(err error) error {
	return apperrors.NewValidationError("malformed request body: " + err.Error()).WithCause(err)
}

// DecodeItem parses a create body into an item with a canonical id.
func DecodeItem(body string) (ports.Item, error) {
	var item ports.Item
	if err := json.Unmarshal([]byte(body), &item); err != nil {
		return nil, malformedBody(err)
	}
	if item == nil {
		return nil, apperrors.NewValidationError("request body must be a JSON object")
	}

	id, err := NormalizeID(item[ports.KeyAttribute])
	if err != nil {
		return nil, err
	}
	item[ports.KeyAttribute] = id
	return item, nil
}

type updateBody struct {
	ID          interface{}            `json:"id"`
	UpdatesKeys json.RawMessage        `json:"updatesKeys"`
	UpdateKey   *string                `json:"updateKey"`
	UpdateValue json.RawMessage        `json:"updateValue"`
	Fields      map[string]interface{} `json:"fields"`
}

// DecodeUpdate parses an update body. Exactly one of the accepted shapes
// must be present.
func DecodeUpdate(body string) (string, UpdateRequest, error) {
	var raw updateBody
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return "", nil, malformedBody(err)
	}

	id, err := NormalizeID(raw.ID)
	if err != nil {
		return "", nil, err
	}

	var requests []UpdateRequest
	if raw.Fields != nil {
		requests = append(requests, Fields(raw.Fields))
	}
	if len(raw.UpdatesKeys) > 0 && string(raw.UpdatesKeys) != "null" {
		fixed, err := decodeFixedFields(raw.UpdatesKeys)
		if err != nil {
			return "", nil, err
		}
		requests = append(requests, fixed)
	}
	if raw.UpdateKey != nil {
		if len(raw.UpdateValue) == 0 {
			return "", nil, apperrors.NewValidationError("updateValue is required with updateKey")
		}
		var value interface{}
		if err := json.Unmarshal(raw.UpdateValue, &value); err != nil {
			return "", nil, malformedBody(err)
		}
		requests = append(requests, SingleField{Key: *raw.UpdateKey, Value: value})
	}

	if len(requests) != 1 {
		return "", nil, apperrors.NewValidationError("exactly one of fields, updatesKeys or updateKey must be provided")
	}
	return id, requests[0], nil
}

// decodeFixedFields rejects members other than name, description and price.
func decodeFixedFields(data json.RawMessage) (FixedFields, error) {
	var fixed FixedFields
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fixed); err != nil {
		return FixedFields{}, apperrors.NewValidationError("invalid updatesKeys: " + err.Error()).WithCause(err)
	}
	return fixed, nil
}

// DecodeDelete parses a delete body and returns the canonical id.
func DecodeDelete(body string) (string, error) {
	var raw struct {
		ID interface{} `json:"id"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return "", malformedBody(err)
	}
	return NormalizeID(raw.ID)
}
