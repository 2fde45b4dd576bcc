package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayout is a fixed-width UTC layout so stored timestamps sort lexicographically
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// mysqlStore keeps documents as JSON rows of a single documents table
type mysqlStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewMySQLStore creates a document store over a MySQL database migrated with the documents table
func NewMySQLStore(db *sql.DB) *mysqlStore {
	return &mysqlStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *mysqlStore) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	args := []any{q.Collection}

	sb.WriteString("SELECT id, data FROM documents WHERE collection = ?")
	for _, f := range q.Filters {
		value, err := json.Marshal(encodeValue(f.Value))
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter on %s: %w", f.Field, err)
		}
		op := string(f.Op)
		if f.Op == OpEqual {
			op = "="
		}
		sb.WriteString(" AND JSON_EXTRACT(data, ?) " + op + " CAST(? AS JSON)")
		args = append(args, jsonPath(f.Field), string(value))
	}
	if q.OrderBy != "" {
		sb.WriteString(" AND JSON_EXTRACT(data, ?) IS NOT NULL ORDER BY JSON_EXTRACT(data, ?)")
		if q.Direction == Descending {
			sb.WriteString(" DESC")
		}
		args = append(args, jsonPath(q.OrderBy), jsonPath(q.OrderBy))
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}

	return docs, nil
}

func (s *mysqlStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, data FROM documents WHERE collection = ? AND id = ? LIMIT 1",
		collection, id,
	)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	return doc, nil
}

func (s *mysqlStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	now := s.now()
	fields := resolveTimestamps(data, now)
	for k, v := range fields {
		fields[k] = encodeValue(v)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data, created_at) VALUES (?, ?, ?, ?)",
		collection, id, string(raw), now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to add to %s: %w", collection, err)
	}

	return id, nil
}

func (s *mysqlStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}

	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("malformed document %s: %w", id, err)
	}

	return &Document{ID: id, Data: data}, nil
}

// jsonPath builds a JSON path selecting a top-level field
func jsonPath(field string) string {
	return `$."` + field + `"`
}

// encodeValue turns times into fixed-width strings so JSON comparisons order them correctly
func encodeValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(timeLayout)
	}
	return v
}
