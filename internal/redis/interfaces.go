package redis

import "context"

// UserCache defines the cache-aside operations used by the authentication path.
type UserCache interface {
	GetUser(ctx context.Context, id int64) (*CachedUser, error)
	SetUser(ctx context.Context, user *CachedUser) error
	InvalidateUser(ctx context.Context, id int64) error
}

// ResponseStore defines the storage behind idempotent request replay.
type ResponseStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, error)
	Save(ctx context.Context, key string, response *CachedResponse) error
}

// Ensure concrete types implement interfaces.
var (
	_ UserCache     = (*CacheStore)(nil)
	_ ResponseStore = (*IdempotencyStore)(nil)
)
