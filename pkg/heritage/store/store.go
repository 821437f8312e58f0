// Package store defines the document store contract shared by the memory,
// MongoDB and PostgreSQL backends.
//
// A Store exposes named collections of schema-flexible documents. Documents
// are Go structs carrying matching `bson` and `json` tags; every backend
// addresses fields by those tag names, so filters and sort keys are written
// once against the wire field names (e.g. "sort_order", "is_active").
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotFound indicates that no document matched the filters
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate indicates that a write violated a unique field
	ErrDuplicate = errors.New("duplicate document")
)

// Store is a connection to a document database that hands out collections.
// Implementations are safe for concurrent use.
type Store interface {
	// Collection returns a handle for the named collection
	Collection(name string) Collection

	// Ping verifies the connection is alive
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close(ctx context.Context) error
}

// Collection is a named grouping of documents for one entity type.
type Collection interface {
	// Name returns the collection name
	Name() string

	// Count returns the number of documents matching all filters
	Count(ctx context.Context, filters ...Filter) (int64, error)

	// Find decodes every matching document into results, which must be a
	// pointer to a slice of structs or struct pointers.
	Find(ctx context.Context, opts FindOptions, results any) error

	// FindOne decodes the first matching document into result.
	// It returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, result any, filters ...Filter) error

	// InsertOne stores a single document
	InsertOne(ctx context.Context, doc any) error

	// InsertMany stores documents in order, stopping at the first failure
	InsertMany(ctx context.Context, docs []any) error

	// SetOne overwrites the given fields on the first matching document and
	// returns the number of documents matched (0 or 1).
	SetOne(ctx context.Context, fields Fields, filters ...Filter) (int64, error)

	// DeleteOne removes the first matching document and returns the number
	// of documents deleted (0 or 1).
	DeleteOne(ctx context.Context, filters ...Filter) (int64, error)
}

// CollectionSpec describes a collection a backend should prepare at open.
type CollectionSpec struct {
	Name   string
	Unique []string // fields carrying a unique index
}

// Fields is a set of field/value pairs applied by SetOne
type Fields map[string]any

// Op is a filter comparison operator
type Op int

const (
	// OpEq matches documents whose field equals the value
	OpEq Op = iota
	// OpIContains matches documents whose string field contains the value,
	// compared case-insensitively and literally (no pattern syntax).
	OpIContains
)

// Filter is a single field predicate. Multiple filters are combined with AND.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq returns an equality filter
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// IContains returns a case-insensitive substring filter
func IContains(field, text string) Filter {
	return Filter{Field: field, Op: OpIContains, Value: text}
}

// Sort orders query results by one field. The zero value means natural order.
type Sort struct {
	Field string
	Desc  bool
}

// Asc sorts by field in ascending order
func Asc(field string) Sort { return Sort{Field: field} }

// Desc sorts by field in descending order
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

// IsTimeField reports whether field holds a timestamp. Timestamp fields are
// named with an "_at" suffix throughout the data model.
func IsTimeField(field string) bool {
	return strings.HasSuffix(field, "_at")
}

// FindOptions controls a Find call
type FindOptions struct {
	Filters []Filter
	Sort    Sort
}

// FindAll is a typed wrapper around Collection.Find
func FindAll[T any](ctx context.Context, c Collection, opts FindOptions) ([]*T, error) {
	results := make([]*T, 0)
	if err := c.Find(ctx, opts, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FindOne is a typed wrapper around Collection.FindOne
func FindOne[T any](ctx context.Context, c Collection, filters ...Filter) (*T, error) {
	var result T
	if err := c.FindOne(ctx, &result, filters...); err != nil {
		return nil, err
	}
	return &result, nil
}

// SliceTarget validates a Find results argument and returns the slice value
// and its element type. Backends that decode rows themselves use it.
func SliceTarget(results any) (reflect.Value, reflect.Type, error) {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return reflect.Value{}, nil, fmt.Errorf("results must be a non-nil pointer to a slice, got %T", results)
	}
	slice := rv.Elem()
	return slice, slice.Type().Elem(), nil
}

// CollectionError records a failed collection operation
type CollectionError struct {
	Collection string
	Op         string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s on collection %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// AppendDecoded grows slice by one element of elemType and lets decode fill
// it. elemType may be a struct type or a pointer to one.
func AppendDecoded(slice reflect.Value, elemType reflect.Type, decode func(target any) error) error {
	isPtr := elemType.Kind() == reflect.Pointer
	base := elemType
	if isPtr {
		base = elemType.Elem()
	}
	target := reflect.New(base)
	if err := decode(target.Interface()); err != nil {
		return err
	}
	if isPtr {
		slice.Set(reflect.Append(slice, target))
	} else {
		slice.Set(reflect.Append(slice, target.Elem()))
	}
	return nil
}
