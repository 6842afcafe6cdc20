// Package resilience decorates an ItemStore with a circuit breaker so a
// failing table is not hammered by every invocation.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"products-api/application/ports"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// Trip once FailureThreshold of at least MinRequests requests failed
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerStore is a ports.ItemStore guarded by a circuit breaker.
type BreakerStore struct {
	inner ports.ItemStore
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps inner.
func NewBreakerStore(inner ports.ItemStore, config BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// Answers about the data are not store failures.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ports.ErrItemNotFound) ||
				errors.Is(err, ports.ErrInvalidItem) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{inner: inner, cb: cb}
}

// State reports the breaker state
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) execute(fn func() (any, error)) (any, error) {
	result, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("item store unavailable: %w", err)
	}
	return result, err
}

func (s *BreakerStore) Get(ctx context.Context, id string) (ports.Item, error) {
	result, err := s.execute(func() (any, error) {
		return s.inner.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(ports.Item), nil
}

func (s *BreakerStore) Put(ctx context.Context, item ports.Item) error {
	_, err := s.execute(func() (any, error) {
		return nil, s.inner.Put(ctx, item)
	})
	return err
}

func (s *BreakerStore) Update(ctx context.Context, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	result, err := s.execute(func() (any, error) {
		return s.inner.Update(ctx, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]interface{}), nil
}

func (s *BreakerStore) Delete(ctx context.Context, id string) (ports.Item, error) {
	result, err := s.execute(func() (any, error) {
		return s.inner.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	prior, _ := result.(ports.Item)
	return prior, nil
}

func (s *BreakerStore) ScanPage(ctx context.Context, cursor string) (ports.Page, error) {
	result, err := s.execute(func() (any, error) {
		return s.inner.ScanPage(ctx, cursor)
	})
	if err != nil {
		return ports.Page{}, err
	}
	return result.(ports.Page), nil
}
