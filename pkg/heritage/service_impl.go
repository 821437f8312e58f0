package heritage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/heritage-content/pkg/heritage/store"
)

// Entity kinds used in errors and logs
const (
	KindHeroSlide         = "hero slide"
	KindCulturalCategory  = "cultural category"
	KindRegionalHighlight = "regional highlight"
	KindFeaturedStory     = "story"
	KindSubscriber        = "newsletter subscriber"
)

// service implements the Service interface
type service struct {
	store  store.Store
	now    func() time.Time
	logger *slog.Logger

	heroSlides  resource[HeroSlide]
	categories  resource[CulturalCategory]
	highlights  resource[RegionalHighlight]
	stories     resource[FeaturedStory]
	subscribers store.Collection
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the document store for the service
func WithStore(st store.Store) Option {
	return func(s *service) {
		s.store = st
	}
}

// WithClock replaces time.Now as the source of record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithLogger sets the logger used for write operations
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}

	s.heroSlides = resource[HeroSlide]{kind: KindHeroSlide, coll: s.store.Collection(HeroSlidesCollection), sort: store.Asc("sort_order")}
	s.categories = resource[CulturalCategory]{kind: KindCulturalCategory, coll: s.store.Collection(CulturalCategoriesCollection), sort: store.Asc("sort_order")}
	s.highlights = resource[RegionalHighlight]{kind: KindRegionalHighlight, coll: s.store.Collection(RegionalHighlightsCollection), sort: store.Asc("sort_order")}
	s.stories = resource[FeaturedStory]{kind: KindFeaturedStory, coll: s.store.Collection(FeaturedStoriesCollection), sort: store.Desc("published_at")}
	s.subscribers = s.store.Collection(NewsletterSubscribersCollection)

	return s, nil
}

// timestamp returns the current time in UTC at the store's millisecond resolution
func (s *service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Hero slide operations

func (s *service) ListHeroSlides(ctx context.Context) ([]*HeroSlide, error) {
	return s.heroSlides.list(ctx, store.Eq("is_active", true))
}

func (s *service) GetHeroSlide(ctx context.Context, id string) (*HeroSlide, error) {
	return s.heroSlides.get(ctx, id)
}

func (s *service) CreateHeroSlide(ctx context.Context, in HeroSlideInput) (*HeroSlide, error) {
	if err := ValidateInput(KindHeroSlide, in); err != nil {
		return nil, err
	}
	slide := NewHeroSlide(in, s.timestamp())
	if err := s.heroSlides.create(ctx, slide.ID, slide); err != nil {
		return nil, err
	}
	s.logger.Info("Hero slide created", "id", slide.ID)
	return slide, nil
}

func (s *service) UpdateHeroSlide(ctx context.Context, id string, in HeroSlideInput) (*HeroSlide, error) {
	if err := ValidateInput(KindHeroSlide, in); err != nil {
		return nil, err
	}
	return s.heroSlides.update(ctx, id, in.fields(), s.timestamp())
}

func (s *service) DeleteHeroSlide(ctx context.Context, id string) error {
	return s.heroSlides.delete(ctx, id)
}

// Cultural category operations

func (s *service) ListCulturalCategories(ctx context.Context) ([]*CulturalCategory, error) {
	return s.categories.list(ctx)
}

func (s *service) ListFeaturedCategories(ctx context.Context) ([]*CulturalCategory, error) {
	return s.categories.list(ctx, store.Eq("is_featured", true))
}

func (s *service) GetCulturalCategory(ctx context.Context, id string) (*CulturalCategory, error) {
	return s.categories.get(ctx, id)
}

func (s *service) CreateCulturalCategory(ctx context.Context, in CulturalCategoryInput) (*CulturalCategory, error) {
	if err := ValidateInput(KindCulturalCategory, in); err != nil {
		return nil, err
	}
	category := NewCulturalCategory(in, s.timestamp())
	if err := s.categories.create(ctx, category.ID, category); err != nil {
		return nil, err
	}
	s.logger.Info("Cultural category created", "id", category.ID)
	return category, nil
}

func (s *service) UpdateCulturalCategory(ctx context.Context, id string, in CulturalCategoryInput) (*CulturalCategory, error) {
	if err := ValidateInput(KindCulturalCategory, in); err != nil {
		return nil, err
	}
	return s.categories.update(ctx, id, in.fields(), s.timestamp())
}

func (s *service) DeleteCulturalCategory(ctx context.Context, id string) error {
	return s.categories.delete(ctx, id)
}

// Regional highlight operations

func (s *service) ListRegionalHighlights(ctx context.Context) ([]*RegionalHighlight, error) {
	return s.highlights.list(ctx, store.Eq("is_active", true))
}

func (s *service) GetRegionalHighlight(ctx context.Context, id string) (*RegionalHighlight, error) {
	return s.highlights.get(ctx, id)
}

func (s *service) CreateRegionalHighlight(ctx context.Context, in RegionalHighlightInput) (*RegionalHighlight, error) {
	if err := ValidateInput(KindRegionalHighlight, in); err != nil {
		return nil, err
	}
	highlight := NewRegionalHighlight(in, s.timestamp())
	if err := s.highlights.create(ctx, highlight.ID, highlight); err != nil {
		return nil, err
	}
	s.logger.Info("Regional highlight created", "id", highlight.ID)
	return highlight, nil
}

func (s *service) UpdateRegionalHighlight(ctx context.Context, id string, in RegionalHighlightInput) (*RegionalHighlight, error) {
	if err := ValidateInput(KindRegionalHighlight, in); err != nil {
		return nil, err
	}
	return s.highlights.update(ctx, id, in.fields(), s.timestamp())
}

func (s *service) DeleteRegionalHighlight(ctx context.Context, id string) error {
	return s.highlights.delete(ctx, id)
}

// Featured story operations

func (s *service) ListFeaturedStories(ctx context.Context) ([]*FeaturedStory, error) {
	return s.stories.list(ctx, store.Eq("is_featured", true))
}

func (s *service) ListAllStories(ctx context.Context) ([]*FeaturedStory, error) {
	return s.stories.list(ctx)
}

func (s *service) ListStoriesByCategory(ctx context.Context, category string) ([]*FeaturedStory, error) {
	return s.stories.list(ctx, store.IContains("category", category))
}

func (s *service) GetStory(ctx context.Context, id string) (*FeaturedStory, error) {
	return s.stories.get(ctx, id)
}

func (s *service) CreateStory(ctx context.Context, in FeaturedStoryInput) (*FeaturedStory, error) {
	if err := ValidateInput(KindFeaturedStory, in); err != nil {
		return nil, err
	}
	story := NewFeaturedStory(in, s.timestamp())
	if err := s.stories.create(ctx, story.ID, story); err != nil {
		return nil, err
	}
	s.logger.Info("Story created", "id", story.ID)
	return story, nil
}

func (s *service) UpdateStory(ctx context.Context, id string, in FeaturedStoryInput) (*FeaturedStory, error) {
	if err := ValidateInput(KindFeaturedStory, in); err != nil {
		return nil, err
	}
	return s.stories.update(ctx, id, in.fields(), s.timestamp())
}

func (s *service) DeleteStory(ctx context.Context, id string) error {
	return s.stories.delete(ctx, id)
}

// Stats

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	counts := []struct {
		collection string
		filters    []store.Filter
		dst        *int64
	}{
		{HeroSlidesCollection, nil, &stats.HeroSlides},
		{CulturalCategoriesCollection, nil, &stats.CulturalCategories},
		{RegionalHighlightsCollection, nil, &stats.RegionalHighlights},
		{FeaturedStoriesCollection, nil, &stats.FeaturedStories},
		{NewsletterSubscribersCollection, nil, &stats.NewsletterSubscribers},
		{NewsletterSubscribersCollection, []store.Filter{store.Eq("is_active", true)}, &stats.ActiveSubscribers},
	}
	for _, c := range counts {
		n, err := s.store.Collection(c.collection).Count(ctx, c.filters...)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.collection, err)
		}
		*c.dst = n
	}
	return &stats, nil
}

// resource holds the store operations shared by the content entities.
// Records are addressed by their "id" field.
type resource[T any] struct {
	kind string
	coll store.Collection
	sort store.Sort
}

func (r resource[T]) list(ctx context.Context, filters ...store.Filter) ([]*T, error) {
	items, err := store.FindAll[T](ctx, r.coll, store.FindOptions{Filters: filters, Sort: r.sort})
	if err != nil {
		return nil, &EntityError{Entity: r.kind, Op: "list", Err: err}
	}
	return items, nil
}

func (r resource[T]) get(ctx context.Context, id string) (*T, error) {
	item, err := store.FindOne[T](ctx, r.coll, store.Eq("id", id))
	if err != nil {
		return nil, &EntityError{Entity: r.kind, ID: id, Op: "get", Err: notFound(err)}
	}
	return item, nil
}

func (r resource[T]) create(ctx context.Context, id string, item *T) error {
	if err := r.coll.InsertOne(ctx, item); err != nil {
		return &EntityError{Entity: r.kind, ID: id, Op: "create", Err: err}
	}
	return nil
}

// update overwrites fields on the record and refreshes updated_at, then
// returns the stored result.
func (r resource[T]) update(ctx context.Context, id string, fields store.Fields, now time.Time) (*T, error) {
	fields["updated_at"] = now
	matched, err := r.coll.SetOne(ctx, fields, store.Eq("id", id))
	if err != nil {
		return nil, &EntityError{Entity: r.kind, ID: id, Op: "update", Err: err}
	}
	if matched == 0 {
		return nil, &EntityError{Entity: r.kind, ID: id, Op: "update", Err: ErrNotFound}
	}

	item, err := store.FindOne[T](ctx, r.coll, store.Eq("id", id))
	if err != nil {
		return nil, &EntityError{Entity: r.kind, ID: id, Op: "update", Err: notFound(err)}
	}
	return item, nil
}

func (r resource[T]) delete(ctx context.Context, id string) error {
	deleted, err := r.coll.DeleteOne(ctx, store.Eq("id", id))
	if err != nil {
		return &EntityError{Entity: r.kind, ID: id, Op: "delete", Err: err}
	}
	if deleted == 0 {
		return &EntityError{Entity: r.kind, ID: id, Op: "delete", Err: ErrNotFound}
	}
	return nil
}

// notFound maps the store's not-found sentinel to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
