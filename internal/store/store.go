// Package store provides access to the document database.
//
// The site reads and writes schema-less documents grouped in collections. Queries are limited
// to field comparisons, a single ordering and a result limit; writes are single-document inserts.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Collection names used by the site
const (
	CollectionCourses                 = "courses"
	CollectionBlogs                   = "blogs"
	CollectionContactSubmissions      = "contact_submissions"
	CollectionNewsletterSubscribers   = "newsletter_subscribers"
	CollectionCourseEnrollments       = "course_enrollments"
	CollectionPartnershipApplications = "partnership_applications"
	CollectionTeamMembers             = "team_members"
)

var (
	// ErrNotConfigured is returned by every operation of a store that could not be initialized
	ErrNotConfigured = errors.New("document store not configured")
	// ErrNotFound is returned by Get when no document has the requested id
	ErrNotFound = errors.New("document not found")
)

// Operator is a comparison operator of a query filter
type Operator string

const (
	OpEqual          Operator = "=="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// Direction is the ordering direction of a query
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Filter compares a document field with a value
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Query describes a collection read
type Query struct {
	Collection string
	Filters    []Filter
	// OrderBy is the field to sort by; empty keeps backend order
	OrderBy   string
	Direction Direction
	// Limit caps the number of results; zero means no limit
	Limit int
}

// Where appends an equality filter and returns the query
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpEqual, Value: value})
	return q
}

// Document is a stored document and its identifier
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the interface that wraps document database access.
type Store interface {
	// Method Find returns the documents of a collection matching the query.
	Find(ctx context.Context, q Query) ([]Document, error)
	// Method Get returns a single document by id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Method Add inserts a document and returns its generated id.
	//
	// Values equal to ServerTimestamp are replaced by the time the backend stores the document.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Method Close releases backend resources.
	Close() error
}

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value replaced by the storage time on Add
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

var fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the query shape shared by all backends
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if q.Limit < 0 {
		return fmt.Errorf("invalid limit %d", q.Limit)
	}
	if q.OrderBy != "" && !fieldNameRegex.MatchString(q.OrderBy) {
		return fmt.Errorf("invalid order field %q", q.OrderBy)
	}
	for _, f := range q.Filters {
		if !fieldNameRegex.MatchString(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
		switch f.Op {
		case OpEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		default:
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	return nil
}

// resolveTimestamps returns a copy of data with ServerTimestamp sentinels set to now
func resolveTimestamps(data map[string]any, now time.Time) map[string]any {
	resolved := make(map[string]any, len(data))
	for k, v := range data {
		if IsServerTimestamp(v) {
			resolved[k] = now
			continue
		}
		resolved[k] = v
	}
	return resolved
}
