package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore keeps documents in process memory. It backs local development and tests.
type memoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *memoryStore {
	return &memoryStore{
		collections: make(map[string][]Document),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts a document with a caller-chosen id, replacing any document with the same id
func (s *memoryStore) Seed(collection, id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Document{ID: id, Data: resolveTimestamps(data, s.now())}
	docs := s.collections[collection]
	for i := range docs {
		if docs[i].ID == id {
			docs[i] = doc
			return
		}
	}
	s.collections[collection] = append(docs, doc)
}

// All returns every document of a collection in insertion order
func (s *memoryStore) All(collection string) []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		docs = append(docs, copyDocument(d))
	}
	return docs
}

func (s *memoryStore) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Document, 0)
	for _, d := range s.collections[q.Collection] {
		if !matchesAll(d.Data, q.Filters) {
			continue
		}
		if q.OrderBy != "" {
			if _, ok := d.Data[q.OrderBy]; !ok {
				continue
			}
		}
		matched = append(matched, copyDocument(d))
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c, _ := compareValues(matched[i].Data[q.OrderBy], matched[j].Data[q.OrderBy])
			if q.Direction == Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.collections[collection] {
		if d.ID == id {
			doc := copyDocument(d)
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("collection is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.collections[collection] = append(s.collections[collection], Document{
		ID:   id,
		Data: resolveTimestamps(data, s.now()),
	})
	return id, nil
}

func (s *memoryStore) Close() error {
	return nil
}

func copyDocument(d Document) Document {
	data := make(map[string]any, len(d.Data))
	for k, v := range d.Data {
		data[k] = v
	}
	return Document{ID: d.ID, Data: data}
}

func matchesAll(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok {
			return false
		}
		if f.Op == OpEqual {
			if !equalValues(v, f.Value) {
				return false
			}
			continue
		}
		c, ok := compareValues(v, f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case OpLess:
			if c >= 0 {
				return false
			}
		case OpLessOrEqual:
			if c > 0 {
				return false
			}
		case OpGreater:
			if c <= 0 {
				return false
			}
		case OpGreaterOrEqual:
			if c < 0 {
				return false
			}
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders numbers, strings and times. ok is false for other or mixed types.
func compareValues(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
