package heritage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/seed"
	"github.com/tendant/heritage-content/pkg/heritage/store"
	"github.com/tendant/heritage-content/pkg/heritage/store/memory"
)

// failingStore fails Count on one collection
type failingStore struct {
	store.Store
	fail string
}

func (s *failingStore) Collection(name string) store.Collection {
	c := s.Store.Collection(name)
	if name == s.fail {
		return &failingCollection{Collection: c}
	}
	return c
}

type failingCollection struct {
	store.Collection
}

func (c *failingCollection) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	return 0, errors.New("connection reset")
}

func counts(t *testing.T, st store.Store) map[string]int64 {
	t.Helper()
	out := make(map[string]int64)
	for _, name := range heritage.ContentCollections {
		n, err := st.Collection(name).Count(context.Background())
		require.NoError(t, err)
		out[name] = n
	}
	return out
}

func TestSeederRun(t *testing.T) {
	fixtures, err := seed.Default()
	require.NoError(t, err)

	st := memory.New(heritage.CollectionSpecs()...)
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	seeder := heritage.NewSeeder(st, fixtures, heritage.WithSeedClock(func() time.Time { return now }))

	report, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 18, report.Inserted())
	assert.Equal(t, map[string]int64{
		heritage.HeroSlidesCollection:         5,
		heritage.CulturalCategoriesCollection: 6,
		heritage.RegionalHighlightsCollection: 4,
		heritage.FeaturedStoriesCollection:    3,
	}, counts(t, st))

	svc, err := heritage.New(heritage.WithStore(st))
	require.NoError(t, err)

	slide, err := svc.GetHeroSlide(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Classical Dance Forms", slide.Title)
	assert.True(t, slide.CreatedAt.Equal(now))
	assert.True(t, slide.UpdatedAt.Equal(now))

	stories, err := svc.ListFeaturedStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 3)
	assert.Equal(t, "The Art of Mehendi", stories[0].Title)
	assert.Equal(t, "Monsoon Festivals", stories[2].Title)

	// fixtures are not modified by seeding
	assert.True(t, fixtures.HeroSlides[0].CreatedAt.IsZero())
}

func TestSeederIsIdempotent(t *testing.T) {
	fixtures, err := seed.Default()
	require.NoError(t, err)

	st := memory.New(heritage.CollectionSpecs()...)
	seeder := heritage.NewSeeder(st, fixtures)

	_, err = seeder.Run(context.Background())
	require.NoError(t, err)
	before := counts(t, st)

	report, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Inserted())
	for _, res := range report.Results {
		assert.True(t, res.Skipped, res.Collection)
	}
	assert.Equal(t, before, counts(t, st))
}

func TestSeederSkipsPopulatedCollection(t *testing.T) {
	fixtures, err := seed.Default()
	require.NoError(t, err)

	st := memory.New(heritage.CollectionSpecs()...)
	svc, err := heritage.New(heritage.WithStore(st))
	require.NoError(t, err)
	_, err = svc.CreateHeroSlide(context.Background(), heroSlideInput("existing", 1))
	require.NoError(t, err)

	report, err := heritage.NewSeeder(st, fixtures).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13, report.Inserted())
	assert.Equal(t, int64(1), counts(t, st)[heritage.HeroSlidesCollection])
}

func TestSeederIsolatesFailures(t *testing.T) {
	fixtures, err := seed.Default()
	require.NoError(t, err)

	mem := memory.New(heritage.CollectionSpecs()...)
	st := &failingStore{Store: mem, fail: heritage.CulturalCategoriesCollection}

	report, err := heritage.NewSeeder(st, fixtures).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), heritage.CulturalCategoriesCollection)

	require.Len(t, report.Results, 4)
	for _, res := range report.Results {
		if res.Collection == heritage.CulturalCategoriesCollection {
			assert.Error(t, res.Err)
			assert.Zero(t, res.Inserted)
			continue
		}
		assert.NoError(t, res.Err, res.Collection)
		assert.Positive(t, res.Inserted, res.Collection)
	}
	assert.Equal(t, int64(5), counts(t, mem)[heritage.HeroSlidesCollection])
	assert.Equal(t, int64(3), counts(t, mem)[heritage.FeaturedStoriesCollection])
}

func TestSeederRequiresFixtures(t *testing.T) {
	_, err := heritage.NewSeeder(memory.New(), nil).Run(context.Background())
	assert.Error(t, err)
}
