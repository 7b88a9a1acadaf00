package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// BreakerStorage stops calling a failing backend for a while once too
// many of its calls fail. A missing key is not a failure.
type BreakerStorage struct {
	next Storage
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStorage(next Storage, config BreakerConfig, logger *zap.Logger) *BreakerStorage {
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
			logger.Warn("Storage circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &BreakerStorage{next: next, cb: cb}
}

func (s *BreakerStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.cb.Execute(func() (any, error) {
		return s.next.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

func (s *BreakerStorage) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.next.Put(ctx, key, value)
	})
	return err
}

func (s *BreakerStorage) Close() error {
	return s.next.Close()
}
