// Package storetest holds a behavioural test suite shared by every
// store.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/heritage-content/pkg/heritage/store"
)

// Doc is the document type used by the suite
type Doc struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Tags      []string  `json:"tags" bson:"tags"`
	Active    bool      `json:"active" bson:"active"`
	Rank      int       `json:"rank" bson:"rank"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Specs returns the collections the suite writes to. Backends that prepare
// indexes at open must be opened with these.
func Specs(prefix string) []store.CollectionSpec {
	return []store.CollectionSpec{
		{Name: prefix + "docs", Unique: []string{"id"}},
	}
}

// Run exercises st. Collections are named with prefix so runs against a
// shared database do not collide; the caller is responsible for cleanup.
func Run(t *testing.T, st store.Store, prefix string) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	coll := st.Collection(prefix + "docs")
	ctx := context.Background()

	docs := []Doc{
		{ID: "a", Name: "Traditional Arts", Tags: []string{"x"}, Active: true, Rank: 3, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Name: "History & Culture", Tags: []string{}, Active: false, Rank: 1, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "c", Name: "Festivals 100%", Tags: []string{"y", "z"}, Active: true, Rank: 2, CreatedAt: base.Add(1 * time.Hour)},
	}

	t.Run("insert", func(t *testing.T) {
		require.NoError(t, coll.InsertOne(ctx, docs[0]))
		require.NoError(t, coll.InsertMany(ctx, []any{docs[1], docs[2]}))
		require.NoError(t, coll.InsertMany(ctx, nil))

		n, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("duplicate", func(t *testing.T) {
		err := coll.InsertOne(ctx, Doc{ID: "a", Name: "again"})
		assert.ErrorIs(t, err, store.ErrDuplicate)

		n, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("count with filter", func(t *testing.T) {
		n, err := coll.Count(ctx, store.Eq("active", true))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("find one", func(t *testing.T) {
		got, err := store.FindOne[Doc](ctx, coll, store.Eq("id", "c"))
		require.NoError(t, err)
		assert.Equal(t, "Festivals 100%", got.Name)
		assert.Equal(t, []string{"y", "z"}, got.Tags)
		assert.Equal(t, 2, got.Rank)
		assert.True(t, got.CreatedAt.Equal(docs[2].CreatedAt))

		_, err = store.FindOne[Doc](ctx, coll, store.Eq("id", "missing"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("sort ascending", func(t *testing.T) {
		got, err := store.FindAll[Doc](ctx, coll, store.FindOptions{Sort: store.Asc("rank")})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, ids(got))
	})

	t.Run("sort time descending with filter", func(t *testing.T) {
		got, err := store.FindAll[Doc](ctx, coll, store.FindOptions{
			Filters: []store.Filter{store.Eq("active", true)},
			Sort:    store.Desc("created_at"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids(got))
	})

	t.Run("icontains", func(t *testing.T) {
		got, err := store.FindAll[Doc](ctx, coll, store.FindOptions{
			Filters: []store.Filter{store.IContains("name", "history & c")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(got))

		got, err = store.FindAll[Doc](ctx, coll, store.FindOptions{
			Filters: []store.Filter{store.IContains("name", "100%")},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids(got))

		for _, pattern := range []string{".*", "%", "_"} {
			got, err = store.FindAll[Doc](ctx, coll, store.FindOptions{
				Filters: []store.Filter{store.IContains("name", pattern)},
			})
			require.NoError(t, err)
			if pattern == "%" {
				assert.Equal(t, []string{"c"}, ids(got), pattern)
			} else {
				assert.Empty(t, got, pattern)
			}
		}
	})

	t.Run("find empty result is not nil", func(t *testing.T) {
		got, err := store.FindAll[Doc](ctx, coll, store.FindOptions{
			Filters: []store.Filter{store.Eq("id", "missing")},
		})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("set one", func(t *testing.T) {
		matched, err := coll.SetOne(ctx, store.Fields{"name": "Renamed", "active": true}, store.Eq("id", "b"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), matched)

		got, err := store.FindOne[Doc](ctx, coll, store.Eq("id", "b"))
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.True(t, got.Active)
		assert.Equal(t, 1, got.Rank)

		matched, err = coll.SetOne(ctx, store.Fields{"name": "x"}, store.Eq("id", "missing"))
		require.NoError(t, err)
		assert.Zero(t, matched)
	})

	t.Run("set one rejects duplicate unique value", func(t *testing.T) {
		_, err := coll.SetOne(ctx, store.Fields{"id": "a"}, store.Eq("id", "b"))
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("delete one", func(t *testing.T) {
		deleted, err := coll.DeleteOne(ctx, store.Eq("id", "a"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		deleted, err = coll.DeleteOne(ctx, store.Eq("id", "a"))
		require.NoError(t, err)
		assert.Zero(t, deleted)

		n, err := coll.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, st.Ping(ctx))
	})
}

func ids(docs []*Doc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
