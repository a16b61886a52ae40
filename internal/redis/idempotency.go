package redis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyTTL is how long a response stays replayable.
const IdempotencyTTL = 24 * time.Hour

const idempotencyPrefix = "idempotency:"

// CachedResponse is a stored response for an idempotent request.
type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Headers    http.Header `json:"headers"`
}

// IdempotencyStore keeps responses keyed by idempotency key.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: IdempotencyTTL}
}

// Get retrieves a stored response. A miss returns nil, nil.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	data, err := s.client.Get(ctx, idempotencyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// Save stores a response unless one is already stored under key, so the
// first completed request wins.
func (s *IdempotencyStore) Save(ctx context.Context, key string, response *CachedResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.client.SetNX(ctx, idempotencyPrefix+key, data, s.ttl).Err()
}
