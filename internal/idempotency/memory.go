package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	resp    *Response
	expires time.Time
}

// memoryStore keeps keys in process memory for single-instance development setups
type memoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	pendingTTL time.Duration
	resultTTL  time.Duration
	now        func() time.Time
}

// NewMemoryStore creates an in-process store with the same expiry rules as the Redis store
func NewMemoryStore(pendingTTL, resultTTL time.Duration) *memoryStore {
	return &memoryStore{
		entries:    make(map[string]memoryEntry),
		pendingTTL: pendingTTL,
		resultTTL:  resultTTL,
		now:        time.Now,
	}
}

func (s *memoryStore) Begin(ctx context.Context, key string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		if e.resp == nil {
			return nil, ErrInFlight
		}
		resp := *e.resp
		return &resp, nil
	}

	s.entries[key] = memoryEntry{expires: now.Add(s.pendingTTL)}
	return nil, nil
}

func (s *memoryStore) Complete(ctx context.Context, key string, resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{resp: &resp, expires: s.now().Add(s.resultTTL)}
	return nil
}

func (s *memoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
