// Package memory is an in-process document store. Documents are kept in
// their BSON form so field naming and value semantics match the MongoDB
// backend.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/tendant/heritage-content/pkg/heritage/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store implements store.Store using in-memory storage
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// New creates an empty in-memory store with the given collections prepared
func New(specs ...store.CollectionSpec) *Store {
	s := &Store{collections: make(map[string]*Collection)}
	for _, spec := range specs {
		s.collections[spec.Name] = &Collection{name: spec.Name, unique: spec.Unique}
	}
	return s
}

// Collection returns the named collection, creating it on first use
func (s *Store) Collection(name string) store.Collection {
	s.mu.RLock()
	c, ok := s.collections[name]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c
	}
	c = &Collection{name: name}
	s.collections[name] = c
	return c
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op; the data lives as long as the Store value
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Collection implements store.Collection. Documents are kept in insertion
// order, which is the natural order when no sort is requested.
type Collection struct {
	mu     sync.RWMutex
	name   string
	unique []string
	docs   []bson.M
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, doc := range c.docs {
		ok, err := matches(doc, filters)
		if err != nil {
			return 0, c.wrap("count", err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (c *Collection) Find(ctx context.Context, opts store.FindOptions, results any) error {
	slice, elemType, err := store.SliceTarget(results)
	if err != nil {
		return c.wrap("find", err)
	}

	c.mu.RLock()
	var matched []bson.M
	for _, doc := range c.docs {
		ok, err := matches(doc, opts.Filters)
		if err != nil {
			c.mu.RUnlock()
			return c.wrap("find", err)
		}
		if ok {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	if opts.Sort.Field != "" {
		field, desc := opts.Sort.Field, opts.Sort.Desc
		slices.SortStableFunc(matched, func(a, b bson.M) int {
			n := compareValues(a[field], b[field])
			if desc {
				return -n
			}
			return n
		})
	}

	for _, doc := range matched {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return c.wrap("find", err)
		}
		if err := store.AppendDecoded(slice, elemType, func(target any) error {
			return bson.Unmarshal(raw, target)
		}); err != nil {
			return c.wrap("find", err)
		}
	}
	return nil
}

func (c *Collection) FindOne(ctx context.Context, result any, filters ...store.Filter) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {
		ok, err := matches(doc, filters)
		if err != nil {
			return c.wrap("find one", err)
		}
		if !ok {
			continue
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			return c.wrap("find one", err)
		}
		if err := bson.Unmarshal(raw, result); err != nil {
			return c.wrap("find one", err)
		}
		return nil
	}
	return store.ErrNotFound
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	m, err := toDocument(doc)
	if err != nil {
		return c.wrap("insert", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(m, -1); err != nil {
		return c.wrap("insert", err)
	}
	c.docs = append(c.docs, m)
	return nil
}

func (c *Collection) InsertMany(ctx context.Context, docs []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range docs {
		m, err := toDocument(doc)
		if err != nil {
			return c.wrap("insert many", err)
		}
		if err := c.checkUnique(m, -1); err != nil {
			return c.wrap("insert many", err)
		}
		c.docs = append(c.docs, m)
	}
	return nil
}

func (c *Collection) SetOne(ctx context.Context, fields store.Fields, filters ...store.Filter) (int64, error) {
	update, err := toDocument(bson.M(fields))
	if err != nil {
		return 0, c.wrap("update", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		ok, err := matches(doc, filters)
		if err != nil {
			return 0, c.wrap("update", err)
		}
		if !ok {
			continue
		}

		merged := make(bson.M, len(doc)+len(update))
		for k, v := range doc {
			merged[k] = v
		}
		for k, v := range update {
			merged[k] = v
		}
		if err := c.checkUnique(merged, i); err != nil {
			return 0, c.wrap("update", err)
		}
		c.docs[i] = merged
		return 1, nil
	}
	return 0, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filters ...store.Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		ok, err := matches(doc, filters)
		if err != nil {
			return 0, c.wrap("delete", err)
		}
		if ok {
			c.docs = slices.Delete(c.docs, i, i+1)
			return 1, nil
		}
	}
	return 0, nil
}

// checkUnique rejects doc if another document (other than index skip)
// shares a value on any unique field. Caller must hold the write lock.
func (c *Collection) checkUnique(doc bson.M, skip int) error {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		for i, other := range c.docs {
			if i == skip {
				continue
			}
			if ov, ok := other[field]; ok && equalValues(ov, v) {
				return fmt.Errorf("%w: %s %v", store.ErrDuplicate, field, v)
			}
		}
	}
	return nil
}

func (c *Collection) wrap(op string, err error) error {
	return &store.CollectionError{Collection: c.name, Op: op, Err: err}
}

// toDocument round-trips v through BSON so stored values use BSON types
func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}

func normalizeValue(v any) (any, error) {
	m, err := toDocument(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func matches(doc bson.M, filters []store.Filter) (bool, error) {
	for _, f := range filters {
		v := doc[f.Field]
		switch f.Op {
		case store.OpEq:
			want, err := normalizeValue(f.Value)
			if err != nil {
				return false, err
			}
			if !equalValues(v, want) {
				return false, nil
			}
		case store.OpIContains:
			s, ok := v.(string)
			text, _ := f.Value.(string)
			if !ok || !strings.Contains(strings.ToLower(s), strings.ToLower(text)) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter operator %d", f.Op)
		}
	}
	return true, nil
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if kind(a) != kind(b) {
		return false
	}
	if kind(a) == kindOther {
		// arrays and embedded documents have no ordering; match them structurally
		return reflect.DeepEqual(a, b)
	}
	return compareValues(a, b) == 0
}

// kindOther is the class of values without an ordering
const kindOther = 5

// kind groups BSON values into comparable classes
func kind(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int32, int64, float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	case primitive.DateTime:
		return 4
	default:
		return kindOther
	}
}

// compareValues orders BSON values. Missing values sort first, values of
// different classes order by class.
func compareValues(a, b any) int {
	ka, kb := kind(a), kind(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case primitive.DateTime:
		return cmp.Compare(x, b.(primitive.DateTime))
	case int32, int64, float64:
		return cmp.Compare(toFloat(a), toFloat(b))
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
