package cache

import (
	"context"
	"time"
)

// Cache abstracts the key-value cache so services do not depend on a concrete
// Redis client. Implementations live under internal/infrastructure/cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
