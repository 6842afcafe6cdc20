// Package ports declares the capabilities the product facade consumes.
// Adapters in infrastructure/ implement them.
package ports

import (
	"context"
	"errors"
	"time"
)

// KeyAttribute is the partition key of the products table.
const KeyAttribute = "id"

var (
	// ErrItemNotFound is returned by Get and Update when no item has the id.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItem is returned when the store rejects the shape of an item
	// or an update, e.g. an empty key or an oversized item.
	ErrInvalidItem = errors.New("invalid item")
)

// Item is a schemaless product record. The "id" attribute is mandatory.
type Item map[string]interface{}

// ID returns the item's id, or "" when it is missing or not a string.
func (i Item) ID() string {
	id, _ := i[KeyAttribute].(string)
	return id
}

// Clone returns a shallow copy of the item.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Page is one batch of a full-table scan. Next is the opaque cursor for the
// following page; "" means the scan is complete.
type Page struct {
	Items []Item
	Next  string
}

// ItemStore is the key-value capability behind the facade.
type ItemStore interface {
	Get(ctx context.Context, id string) (Item, error)
	Put(ctx context.Context, item Item) error
	// Update sets the given attributes on an existing item and returns their
	// new values.
	Update(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error)
	// Delete removes the item and returns its prior state, or nil when
	// nothing was stored under id.
	Delete(ctx context.Context, id string) (Item, error)
	ScanPage(ctx context.Context, cursor string) (Page, error)
}

// Change event types emitted after successful mutations.
const (
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
)

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	Type       string                 `json:"type"`
	ItemID     string                 `json:"itemId"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// EventPublisher delivers change events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
