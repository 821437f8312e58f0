package heritage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/heritage-content/pkg/heritage/store"
)

// SeedResult is the outcome of seeding one collection
type SeedResult struct {
	Collection string
	Inserted   int
	Skipped    bool // collection already held documents
	Err        error
}

// SeedReport collects the per-collection results of a seeding run
type SeedReport struct {
	Results []SeedResult
}

// Inserted returns the total number of documents inserted
func (r *SeedReport) Inserted() int {
	total := 0
	for _, res := range r.Results {
		total += res.Inserted
	}
	return total
}

// Seeder inserts fixture records into empty content collections
type Seeder struct {
	store    store.Store
	fixtures *Fixtures
	now      func() time.Time
	logger   *slog.Logger
}

// SeederOption configures a Seeder
type SeederOption func(*Seeder)

// WithSeedClock replaces time.Now as the source of fixture timestamps
func WithSeedClock(now func() time.Time) SeederOption {
	return func(s *Seeder) {
		s.now = now
	}
}

// WithSeedLogger sets the logger used to report progress
func WithSeedLogger(logger *slog.Logger) SeederOption {
	return func(s *Seeder) {
		s.logger = logger
	}
}

// NewSeeder creates a seeder for the given fixtures
func NewSeeder(st store.Store, fixtures *Fixtures, opts ...SeederOption) *Seeder {
	s := &Seeder{
		store:    st,
		fixtures: fixtures,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run seeds each content collection that currently has no documents.
// Collections are seeded independently: a failure is recorded in the report
// and the remaining collections are still attempted. The returned error
// joins every per-collection failure.
func (s *Seeder) Run(ctx context.Context) (*SeedReport, error) {
	if s.fixtures == nil {
		return nil, errors.New("seed fixtures are required")
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	f := s.fixtures

	report := &SeedReport{}
	report.Results = append(report.Results,
		seedCollection(ctx, s.store.Collection(HeroSlidesCollection), f.HeroSlides, func(v *HeroSlide) {
			stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt, now)
		}),
		seedCollection(ctx, s.store.Collection(CulturalCategoriesCollection), f.CulturalCategories, func(v *CulturalCategory) {
			stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt, now)
		}),
		seedCollection(ctx, s.store.Collection(RegionalHighlightsCollection), f.RegionalHighlights, func(v *RegionalHighlight) {
			stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt, now)
		}),
		seedCollection(ctx, s.store.Collection(FeaturedStoriesCollection), f.FeaturedStories, func(v *FeaturedStory) {
			stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt, now)
			if v.PublishedAt.IsZero() {
				v.PublishedAt = now
			}
		}),
	)

	var errs []error
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			s.logger.Error("Failed to seed collection", "collection", res.Collection, "error", res.Err)
			errs = append(errs, fmt.Errorf("seed %s: %w", res.Collection, res.Err))
		case res.Skipped:
			s.logger.Debug("Collection already populated", "collection", res.Collection)
		default:
			s.logger.Info("Initialized collection", "collection", res.Collection, "inserted", res.Inserted)
		}
	}
	return report, errors.Join(errs...)
}

// seedCollection inserts docs when coll is empty. Each document is copied
// and stamped before insertion so the fixtures themselves stay untouched.
func seedCollection[T any](ctx context.Context, coll store.Collection, docs []*T, prepare func(*T)) SeedResult {
	res := SeedResult{Collection: coll.Name()}

	n, err := coll.Count(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	if n != 0 {
		res.Skipped = true
		return res
	}
	if len(docs) == 0 {
		return res
	}

	batch := make([]any, 0, len(docs))
	for _, doc := range docs {
		cp := *doc
		prepare(&cp)
		batch = append(batch, &cp)
	}
	if err := coll.InsertMany(ctx, batch); err != nil {
		res.Err = err
		return res
	}
	res.Inserted = len(batch)
	return res
}

func stamp(id *string, createdAt, updatedAt *time.Time, now time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}
