// Package memory provides an in-process ItemStore for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"products-api/application/ports"
)

// DefaultPageSize is used when the store is created with a page size <= 0.
const DefaultPageSize = 100

// ItemStore keeps items in a map and scans them in id order, pageSize items
// per page. The cursor is the id of the last item of the previous page,
// like an exclusive start key.
type ItemStore struct {
	mu       sync.RWMutex
	items    map[string]ports.Item
	pageSize int
}

// NewItemStore creates an empty store.
func NewItemStore(pageSize int) *ItemStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ItemStore{
		items:    make(map[string]ports.Item),
		pageSize: pageSize,
	}
}

// Get retrieves an item by id
func (s *ItemStore) Get(ctx context.Context, id string) (ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ports.ErrItemNotFound
	}
	return item.Clone(), nil
}

// Put saves an item, replacing any item with the same id
func (s *ItemStore) Put(ctx context.Context, item ports.Item) error {
	id := item.ID()
	if id == "" {
		return fmt.Errorf("%w: missing id", ports.ErrInvalidItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = item.Clone()
	return nil
}

// Update sets attributes on an existing item
func (s *ItemStore) Update(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	if _, ok := fields[ports.KeyAttribute]; ok {
		return nil, fmt.Errorf("%w: key attribute cannot be updated", ports.ErrInvalidItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ports.ErrItemNotFound
	}

	updated := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		item[name] = value
		updated[name] = value
	}
	return updated, nil
}

// Delete removes an item and returns its prior state
func (s *ItemStore) Delete(ctx context.Context, id string) (ports.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, nil
	}
	delete(s.items, id)
	return item, nil
}

// ScanPage returns the page that starts after cursor
func (s *ItemStore) ScanPage(ctx context.Context, cursor string) (ports.Page, error) {
	if err := ctx.Err(); err != nil {
		return ports.Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if cursor != "" {
		start = sort.SearchStrings(ids, cursor)
		if start < len(ids) && ids[start] == cursor {
			start++
		}
	}

	end := start + s.pageSize
	if end > len(ids) {
		end = len(ids)
	}

	page := ports.Page{Items: make([]ports.Item, 0, end-start)}
	for _, id := range ids[start:end] {
		page.Items = append(page.Items, s.items[id].Clone())
	}
	if end < len(ids) {
		page.Next = ids[end-1]
	}
	return page, nil
}

// Len returns the number of stored items
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
