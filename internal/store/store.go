// Package store defines the document store client the repository runs against
// and ships gorm and mongo backed implementations of it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
)

// Logical collections used by the planner.
const (
	CollectionSemesters   = "semesters"
	CollectionCourses     = "courses"
	CollectionAssignments = "assignments"
)

// ErrNotFound is returned by point reads and partial updates of missing documents.
var ErrNotFound = errors.New("document not found")

// Filter is an equality condition on a top-level document field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Document is one stored record keyed by its identifier.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentStore is the minimal document database contract: filtered queries,
// point reads, full upserts, partial merges and deletes, each scoped by
// collection name and document key. Implementations perform no retries.
type DocumentStore interface {
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// Pinger is implemented by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

func matches(data map[string]any, filters []Filter) bool {
	for _, filter := range filters {
		if !equalValues(data[filter.Field], filter.Value) {
			return false
		}
	}
	return true
}

// scalar unwraps named string and numeric types so drivers receive builtin values.
func scalar(value any) any {
	if value == nil {
		return nil
	}
	if number, ok := value.(json.Number); ok {
		return plainJSONValue(number)
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return value
}

func equalValues(stored, wanted any) bool {
	a, b := scalar(stored), scalar(wanted)
	switch x := a.(type) {
	case int64:
		if y, ok := b.(float64); ok {
			return float64(x) == y
		}
	case float64:
		if y, ok := b.(int64); ok {
			return x == float64(y)
		}
	}
	return reflect.DeepEqual(a, b)
}
