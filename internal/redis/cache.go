package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// UserCacheTTL bounds how long a role or activation change can go unnoticed
// by the authentication path.
const UserCacheTTL = 60 * time.Second

const userCachePrefix = "cache:user:"

// CachedUser is the slice of a user the authentication path needs.
type CachedUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func userKey(id int64) string {
	return userCachePrefix + strconv.FormatInt(id, 10)
}

// GetUser retrieves a user from cache. A miss returns nil, nil.
func (s *CacheStore) GetUser(ctx context.Context, id int64) (*CachedUser, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var user CachedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUser stores a user in cache.
func (s *CacheStore) SetUser(ctx context.Context, user *CachedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.ID), data, UserCacheTTL).Err()
}

// InvalidateUser removes a user from cache.
func (s *CacheStore) InvalidateUser(ctx context.Context, id int64) error {
	return s.client.Del(ctx, userKey(id)).Err()
}
