// Package mocks provides testify mocks for the ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"products-api/application/ports"
)

// MockItemStore is a mock implementation of ports.ItemStore
type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) Get(ctx context.Context, id string) (ports.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Item), args.Error(1)
}

func (m *MockItemStore) Put(ctx context.Context, item ports.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemStore) Update(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockItemStore) Delete(ctx context.Context, id string) (ports.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Item), args.Error(1)
}

func (m *MockItemStore) ScanPage(ctx context.Context, cursor string) (ports.Page, error) {
	args := m.Called(ctx, cursor)
	return args.Get(0).(ports.Page), args.Error(1)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event ports.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
