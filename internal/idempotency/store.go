package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// HeaderName is the request header clients use to mark retries of the same submission
const HeaderName = "Idempotency-Key"

const (
	pendingMarker = "pending"
	keyPrefix     = "idempotency:"
)

// ErrInFlight is returned when a request with the same key is still being processed
var ErrInFlight = errors.New("request with this idempotency key is in progress")

// Response is a completed response kept for replay
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	// Fingerprint identifies the request body the response belongs to
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Store tracks idempotency keys across requests
type Store interface {
	// Begin claims a key. It returns the stored response when the key already completed,
	// ErrInFlight when another request holds the key, and nil when the caller now owns it.
	Begin(ctx context.Context, key string) (*Response, error)
	// Complete records the response of an owned key
	Complete(ctx context.Context, key string, resp Response) error
	// Release gives up an owned key so the request can be retried
	Release(ctx context.Context, key string) error
}

type redisStore struct {
	client     *redis.Client
	pendingTTL time.Duration
	resultTTL  time.Duration
}

// NewRedisStore creates a store keeping keys in Redis.
//
// Claimed keys expire after pendingTTL if never completed; completed keys after resultTTL.
func NewRedisStore(client *redis.Client, pendingTTL, resultTTL time.Duration) *redisStore {
	return &redisStore{
		client:     client,
		pendingTTL: pendingTTL,
		resultTTL:  resultTTL,
	}
}

func (s *redisStore) Begin(ctx context.Context, key string) (*Response, error) {
	claimed, err := s.client.SetNX(ctx, keyPrefix+key, pendingMarker, s.pendingTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls
		return nil, ErrInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if raw == pendingMarker {
		return nil, ErrInFlight
	}

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("malformed idempotency record: %w", err)
	}
	return &resp, nil
}

func (s *redisStore) Complete(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, s.resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
