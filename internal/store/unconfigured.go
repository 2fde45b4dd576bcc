package store

import "context"

// unconfiguredStore stands in for a backend that failed to initialize
type unconfiguredStore struct {
	reason error
}

// NewUnconfigured returns a Store whose operations all fail with ErrNotConfigured.
//
// reason, when non-nil, is wrapped into the returned errors so logs show why initialization failed.
func NewUnconfigured(reason error) Store {
	return &unconfiguredStore{reason: reason}
}

func (s *unconfiguredStore) err() error {
	if s.reason == nil {
		return ErrNotConfigured
	}
	return &notConfiguredError{reason: s.reason}
}

func (s *unconfiguredStore) Find(ctx context.Context, q Query) ([]Document, error) {
	return nil, s.err()
}

func (s *unconfiguredStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	return nil, s.err()
}

func (s *unconfiguredStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	return "", s.err()
}

func (s *unconfiguredStore) Close() error {
	return nil
}

type notConfiguredError struct {
	reason error
}

func (e *notConfiguredError) Error() string {
	return ErrNotConfigured.Error() + ": " + e.reason.Error()
}

func (e *notConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

func (e *notConfiguredError) Unwrap() error {
	return e.reason
}
