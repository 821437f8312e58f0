package heritage

import "github.com/tendant/heritage-content/pkg/heritage/store"

// Collection names
const (
	HeroSlidesCollection            = "hero_slides"
	CulturalCategoriesCollection    = "cultural_categories"
	RegionalHighlightsCollection    = "regional_highlights"
	FeaturedStoriesCollection       = "featured_stories"
	NewsletterSubscribersCollection = "newsletter_subscribers"
)

// ContentCollections are the collections filled by the seeder
var ContentCollections = []string{
	HeroSlidesCollection,
	CulturalCategoriesCollection,
	RegionalHighlightsCollection,
	FeaturedStoriesCollection,
}

// CollectionSpecs describes every collection and its unique fields, for
// backends that prepare indexes or tables when opened.
func CollectionSpecs() []store.CollectionSpec {
	return []store.CollectionSpec{
		{Name: HeroSlidesCollection, Unique: []string{"id"}},
		{Name: CulturalCategoriesCollection, Unique: []string{"id"}},
		{Name: RegionalHighlightsCollection, Unique: []string{"id"}},
		{Name: FeaturedStoriesCollection, Unique: []string{"id"}},
		{Name: NewsletterSubscribersCollection, Unique: []string{"id", "email"}},
	}
}
