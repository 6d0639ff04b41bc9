package repository

import (
	"context"
	"time"
)

// CacheRepository stores derived values that can always be recomputed.
// A miss and a backend failure are both reported as ok == false.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
