package cache

import (
	"fmt"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// InFlightStoreFactory creates in-flight stores based on configuration
type InFlightStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// InFlightStoreFactoryOption is a functional option for configuring the factory
type InFlightStoreFactoryOption func(*InFlightStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) InFlightStoreFactoryOption {
	return func(f *InFlightStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is enabled but unreachable. Default is true.
func WithInMemoryFallback(allow bool) InFlightStoreFactoryOption {
	return func(f *InFlightStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewInFlightStoreFactory creates a new factory
func NewInFlightStoreFactory(cfg config.RedisConfig, opts ...InFlightStoreFactoryOption) *InFlightStoreFactory {
	f := &InFlightStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore returns a Redis store when redis.enabled is set, the
// in-memory store otherwise
func (f *InFlightStoreFactory) CreateStore() (shared.InFlightStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory in-flight store")
		return NewInMemoryInFlightStore(), nil
	}

	store, err := NewRedisInFlightStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis in-flight store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for in-flight tracking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory in-flight store",
		zap.Error(err),
	)
	return NewInMemoryInFlightStore(), nil
}
