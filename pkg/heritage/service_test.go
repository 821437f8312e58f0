package heritage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/store"
	"github.com/tendant/heritage-content/pkg/heritage/store/memory"
)

// stepClock advances one second on every call
type stepClock struct {
	t time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupTestService(t *testing.T) (heritage.Service, store.Store) {
	t.Helper()
	st := memory.New(heritage.CollectionSpecs()...)
	svc, err := heritage.New(
		heritage.WithStore(st),
		heritage.WithClock(newStepClock().Now),
	)
	require.NoError(t, err)
	return svc, st
}

func heroSlideInput(title string, sortOrder int) heritage.HeroSlideInput {
	return heritage.HeroSlideInput{
		Title:       title,
		Description: "A description",
		Categories:  []string{"Dance", "Arts"},
		BgColor:     "#d987ff",
		TextColor:   "#151515",
		ImageURL:    "https://example.com/slide.jpg",
		Region:      "Pan-India",
		SortOrder:   sortOrder,
	}
}

func categoryInput(title string, sortOrder int, featured bool) heritage.CulturalCategoryInput {
	return heritage.CulturalCategoryInput{
		Title:       title,
		Description: "A description",
		BgColor:     "#ffd1e7",
		TextColor:   "#151515",
		Categories:  []string{"Music"},
		CountText:   "12+ Forms",
		ImageURL:    "https://example.com/category.jpg",
		IsFeatured:  heritage.Bool(featured),
		SortOrder:   sortOrder,
	}
}

func highlightInput(name string, sortOrder int) heritage.RegionalHighlightInput {
	return heritage.RegionalHighlightInput{
		RegionName:         name,
		States:             []string{"Kerala"},
		CulturalHighlights: []string{},
		BgColor:            "#78d692",
		TextColor:          "#151515",
		SortOrder:          sortOrder,
	}
}

func storyInput(title, category string) heritage.FeaturedStoryInput {
	return heritage.FeaturedStoryInput{
		Title:    title,
		Excerpt:  "An excerpt",
		Category: category,
		ReadTime: "5 min read",
		ImageURL: "https://example.com/story.jpg",
	}
}

func TestServiceCreation(t *testing.T) {
	svc, err := heritage.New()
	assert.Error(t, err)
	assert.Nil(t, svc)

	svc, err = heritage.New(heritage.WithStore(memory.New()))
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestHeroSlideLifecycle(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	in := heroSlideInput("Classical Dance Forms", 1)
	created, err := svc.CreateHeroSlide(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive, "is_active defaults to true")
	assert.Equal(t, in.Categories, created.Categories)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := svc.GetHeroSlide(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, created.Categories, got.Categories)
	assert.Equal(t, created.Region, got.Region)
	assert.Equal(t, created.SortOrder, got.SortOrder)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	update := heroSlideInput("Dance Forms", 7)
	update.IsActive = heritage.Bool(false)
	updated, err := svc.UpdateHeroSlide(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Dance Forms", updated.Title)
	assert.Equal(t, 7, updated.SortOrder)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// full replace: omitting is_active restores the default
	updated, err = svc.UpdateHeroSlide(ctx, created.ID, heroSlideInput("Dance Forms", 7))
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	require.NoError(t, svc.DeleteHeroSlide(ctx, created.ID))
	_, err = svc.GetHeroSlide(ctx, created.ID)
	assert.ErrorIs(t, err, heritage.ErrNotFound)
}

func TestListHeroSlides(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	for _, in := range []heritage.HeroSlideInput{
		heroSlideInput("third", 3),
		heroSlideInput("first", 1),
		heroSlideInput("second", 2),
	} {
		_, err := svc.CreateHeroSlide(ctx, in)
		require.NoError(t, err)
	}
	hidden := heroSlideInput("hidden", 0)
	hidden.IsActive = heritage.Bool(false)
	_, err := svc.CreateHeroSlide(ctx, hidden)
	require.NoError(t, err)

	slides, err := svc.ListHeroSlides(ctx)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, want, slides[i].Title)
		assert.True(t, slides[i].IsActive)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, st := setupTestService(t)
	ctx := context.Background()

	in := heroSlideInput("", 1)
	in.Categories = nil
	_, err := svc.CreateHeroSlide(ctx, in)
	require.Error(t, err)

	var verr *heritage.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.FieldErrors()
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "categories")
	assert.NotContains(t, fields, "region")

	n, err := st.Collection(heritage.HeroSlidesCollection).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// empty lists are accepted
	in = heroSlideInput("ok", 1)
	in.Categories = []string{}
	_, err = svc.CreateHeroSlide(ctx, in)
	assert.NoError(t, err)

	_, err = svc.CreateStory(ctx, heritage.FeaturedStoryInput{Title: "no excerpt"})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.FieldErrors(), "excerpt")
	assert.NotContains(t, verr.FieldErrors(), "author")
}

func TestCulturalCategories(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCulturalCategory(ctx, categoryInput("Crafts", 2, true))
	require.NoError(t, err)
	plain, err := svc.CreateCulturalCategory(ctx, categoryInput("Cuisine", 1, false))
	require.NoError(t, err)
	_, err = svc.CreateCulturalCategory(ctx, categoryInput("Arts", 0, true))
	require.NoError(t, err)

	unset := categoryInput("Defaults", 3, false)
	unset.IsFeatured = nil
	defaulted, err := svc.CreateCulturalCategory(ctx, unset)
	require.NoError(t, err)
	assert.False(t, defaulted.IsFeatured, "is_featured defaults to false")

	all, err := svc.ListCulturalCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"Arts", "Cuisine", "Crafts", "Defaults"}, []string{all[0].Title, all[1].Title, all[2].Title, all[3].Title})

	featured, err := svc.ListFeaturedCategories(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	for _, c := range featured {
		assert.True(t, c.IsFeatured)
		assert.NotEqual(t, plain.ID, c.ID)
	}
}

func TestRegionalHighlights(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	south, err := svc.CreateRegionalHighlight(ctx, highlightInput("South India", 2))
	require.NoError(t, err)
	assert.Equal(t, []string{}, south.CulturalHighlights)

	inactive := highlightInput("Hidden", 1)
	inactive.IsActive = heritage.Bool(false)
	_, err = svc.CreateRegionalHighlight(ctx, inactive)
	require.NoError(t, err)
	_, err = svc.CreateRegionalHighlight(ctx, highlightInput("North India", 1))
	require.NoError(t, err)

	list, err := svc.ListRegionalHighlights(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "North India", list[0].RegionName)
	assert.Equal(t, "South India", list[1].RegionName)

	got, err := svc.GetRegionalHighlight(ctx, south.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kerala"}, got.States)
}

func TestStories(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	oldest, err := svc.CreateStory(ctx, storyInput("Mehendi", "Traditional Arts"))
	require.NoError(t, err)
	assert.True(t, oldest.IsFeatured, "is_featured defaults to true")
	assert.Empty(t, oldest.Author)
	assert.True(t, oldest.PublishedAt.Equal(oldest.CreatedAt))

	hidden := storyInput("Spice Routes", "History & Culture")
	hidden.IsFeatured = heritage.Bool(false)
	_, err = svc.CreateStory(ctx, hidden)
	require.NoError(t, err)

	newest, err := svc.CreateStory(ctx, storyInput("Monsoon", "Festivals"))
	require.NoError(t, err)

	featured, err := svc.ListFeaturedStories(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, newest.ID, featured[0].ID)
	assert.Equal(t, oldest.ID, featured[1].ID)

	all, err := svc.ListAllStories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].PublishedAt.After(all[i-1].PublishedAt))
	}

	byCategory, err := svc.ListStoriesByCategory(ctx, "history & c")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Spice Routes", byCategory[0].Title)

	byCategory, err = svc.ListStoriesByCategory(ctx, "ARTS")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byCategory, err = svc.ListStoriesByCategory(ctx, ".*")
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	// published_at is not touched by updates
	updated, err := svc.UpdateStory(ctx, oldest.ID, storyInput("Mehendi Art", "Traditional Arts"))
	require.NoError(t, err)
	assert.True(t, updated.PublishedAt.Equal(oldest.PublishedAt))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestMissingRecords(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	const id = "does-not-exist"

	tests := []struct {
		name   string
		get    func() error
		update func() error
		delete func() error
	}{
		{
			name:   "hero slide",
			get:    func() error { _, err := svc.GetHeroSlide(ctx, id); return err },
			update: func() error { _, err := svc.UpdateHeroSlide(ctx, id, heroSlideInput("x", 0)); return err },
			delete: func() error { return svc.DeleteHeroSlide(ctx, id) },
		},
		{
			name:   "cultural category",
			get:    func() error { _, err := svc.GetCulturalCategory(ctx, id); return err },
			update: func() error { _, err := svc.UpdateCulturalCategory(ctx, id, categoryInput("x", 0, false)); return err },
			delete: func() error { return svc.DeleteCulturalCategory(ctx, id) },
		},
		{
			name:   "regional highlight",
			get:    func() error { _, err := svc.GetRegionalHighlight(ctx, id); return err },
			update: func() error { _, err := svc.UpdateRegionalHighlight(ctx, id, highlightInput("x", 0)); return err },
			delete: func() error { return svc.DeleteRegionalHighlight(ctx, id) },
		},
		{
			name:   "story",
			get:    func() error { _, err := svc.GetStory(ctx, id); return err },
			update: func() error { _, err := svc.UpdateStory(ctx, id, storyInput("x", "y")); return err },
			delete: func() error { return svc.DeleteStory(ctx, id) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for op, fn := range map[string]func() error{"get": tt.get, "update": tt.update, "delete": tt.delete} {
				err := fn()
				assert.ErrorIs(t, err, heritage.ErrNotFound, op)

				var entityErr *heritage.EntityError
				require.True(t, errors.As(err, &entityErr), op)
				assert.Equal(t, tt.name, entityErr.Entity)
				assert.Equal(t, id, entityErr.ID)
			}
		})
	}
}

func TestStats(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHeroSlide(ctx, heroSlideInput("a", 1))
	require.NoError(t, err)
	_, err = svc.CreateStory(ctx, storyInput("b", "c"))
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, "a@b.com")
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, "c@d.com")
	require.NoError(t, err)
	_, err = svc.Unsubscribe(ctx, "c@d.com")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &heritage.Stats{
		HeroSlides:            1,
		FeaturedStories:       1,
		NewsletterSubscribers: 2,
		ActiveSubscribers:     1,
	}, stats)
}
