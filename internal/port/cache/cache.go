package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: not found")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
