package heritage

import "context"

// Service defines the operations behind the heritage API
type Service interface {
	// Hero slide operations
	ListHeroSlides(ctx context.Context) ([]*HeroSlide, error)
	GetHeroSlide(ctx context.Context, id string) (*HeroSlide, error)
	CreateHeroSlide(ctx context.Context, in HeroSlideInput) (*HeroSlide, error)
	UpdateHeroSlide(ctx context.Context, id string, in HeroSlideInput) (*HeroSlide, error)
	DeleteHeroSlide(ctx context.Context, id string) error

	// Cultural category operations
	ListCulturalCategories(ctx context.Context) ([]*CulturalCategory, error)
	ListFeaturedCategories(ctx context.Context) ([]*CulturalCategory, error)
	GetCulturalCategory(ctx context.Context, id string) (*CulturalCategory, error)
	CreateCulturalCategory(ctx context.Context, in CulturalCategoryInput) (*CulturalCategory, error)
	UpdateCulturalCategory(ctx context.Context, id string, in CulturalCategoryInput) (*CulturalCategory, error)
	DeleteCulturalCategory(ctx context.Context, id string) error

	// Regional highlight operations
	ListRegionalHighlights(ctx context.Context) ([]*RegionalHighlight, error)
	GetRegionalHighlight(ctx context.Context, id string) (*RegionalHighlight, error)
	CreateRegionalHighlight(ctx context.Context, in RegionalHighlightInput) (*RegionalHighlight, error)
	UpdateRegionalHighlight(ctx context.Context, id string, in RegionalHighlightInput) (*RegionalHighlight, error)
	DeleteRegionalHighlight(ctx context.Context, id string) error

	// Featured story operations
	ListFeaturedStories(ctx context.Context) ([]*FeaturedStory, error)
	ListAllStories(ctx context.Context) ([]*FeaturedStory, error)
	ListStoriesByCategory(ctx context.Context, category string) ([]*FeaturedStory, error)
	GetStory(ctx context.Context, id string) (*FeaturedStory, error)
	CreateStory(ctx context.Context, in FeaturedStoryInput) (*FeaturedStory, error)
	UpdateStory(ctx context.Context, id string, in FeaturedStoryInput) (*FeaturedStory, error)
	DeleteStory(ctx context.Context, id string) error

	// Newsletter operations
	Subscribe(ctx context.Context, email string) (*SubscriptionResult, error)
	Unsubscribe(ctx context.Context, email string) (*SubscriptionResult, error)
	ListActiveSubscribers(ctx context.Context) ([]*NewsletterSubscriber, error)
	CountActiveSubscribers(ctx context.Context) (int64, error)

	// Stats returns document counts for every collection
	Stats(ctx context.Context) (*Stats, error)
}
