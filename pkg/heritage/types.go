package heritage

import "time"

// HeroSlide is a banner shown in the home page carousel
type HeroSlide struct {
	ID          string    `json:"id" bson:"id" yaml:"id"`
	Title       string    `json:"title" bson:"title" yaml:"title"`
	Description string    `json:"description" bson:"description" yaml:"description"`
	Categories  []string  `json:"categories" bson:"categories" yaml:"categories"`
	BgColor     string    `json:"bg_color" bson:"bg_color" yaml:"bg_color"`
	TextColor   string    `json:"text_color" bson:"text_color" yaml:"text_color"`
	ImageURL    string    `json:"image_url" bson:"image_url" yaml:"image_url"`
	Region      string    `json:"region" bson:"region" yaml:"region"`
	IsActive    bool      `json:"is_active" bson:"is_active" yaml:"is_active"`
	SortOrder   int       `json:"sort_order" bson:"sort_order" yaml:"sort_order"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" yaml:"updated_at"`
}

// CulturalCategory is a tile in the culture grid
type CulturalCategory struct {
	ID          string    `json:"id" bson:"id" yaml:"id"`
	Title       string    `json:"title" bson:"title" yaml:"title"`
	Description string    `json:"description" bson:"description" yaml:"description"`
	BgColor     string    `json:"bg_color" bson:"bg_color" yaml:"bg_color"`
	TextColor   string    `json:"text_color" bson:"text_color" yaml:"text_color"`
	Categories  []string  `json:"categories" bson:"categories" yaml:"categories"`
	CountText   string    `json:"count_text" bson:"count_text" yaml:"count_text"`
	ImageURL    string    `json:"image_url" bson:"image_url" yaml:"image_url"`
	IsFeatured  bool      `json:"is_featured" bson:"is_featured" yaml:"is_featured"`
	SortOrder   int       `json:"sort_order" bson:"sort_order" yaml:"sort_order"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" yaml:"updated_at"`
}

// RegionalHighlight groups the states and cultural highlights of a region
type RegionalHighlight struct {
	ID                 string    `json:"id" bson:"id" yaml:"id"`
	RegionName         string    `json:"region_name" bson:"region_name" yaml:"region_name"`
	States             []string  `json:"states" bson:"states" yaml:"states"`
	CulturalHighlights []string  `json:"cultural_highlights" bson:"cultural_highlights" yaml:"cultural_highlights"`
	BgColor            string    `json:"bg_color" bson:"bg_color" yaml:"bg_color"`
	TextColor          string    `json:"text_color" bson:"text_color" yaml:"text_color"`
	IsActive           bool      `json:"is_active" bson:"is_active" yaml:"is_active"`
	SortOrder          int       `json:"sort_order" bson:"sort_order" yaml:"sort_order"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at" yaml:"updated_at"`
}

// FeaturedStory is an article. PublishedAt is assigned when the story is
// created and is not client-settable.
type FeaturedStory struct {
	ID          string    `json:"id" bson:"id" yaml:"id"`
	Title       string    `json:"title" bson:"title" yaml:"title"`
	Excerpt     string    `json:"excerpt" bson:"excerpt" yaml:"excerpt"`
	Content     string    `json:"content" bson:"content" yaml:"content"`
	Category    string    `json:"category" bson:"category" yaml:"category"`
	ReadTime    string    `json:"read_time" bson:"read_time" yaml:"read_time"`
	ImageURL    string    `json:"image_url" bson:"image_url" yaml:"image_url"`
	Author      string    `json:"author" bson:"author" yaml:"author"`
	IsFeatured  bool      `json:"is_featured" bson:"is_featured" yaml:"is_featured"`
	PublishedAt time.Time `json:"published_at" bson:"published_at" yaml:"published_at"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" yaml:"updated_at"`
}

// NewsletterSubscriber is a newsletter signup. IsActive false marks an
// unsubscribed address; the record itself is kept.
type NewsletterSubscriber struct {
	ID           string    `json:"id" bson:"id"`
	Email        string    `json:"email" bson:"email"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at" bson:"subscribed_at"`
}

// SubscriptionStatus is the outcome of a subscribe or unsubscribe call
type SubscriptionStatus string

const (
	SubscriptionCreated       SubscriptionStatus = "subscribed"
	SubscriptionAlreadyActive SubscriptionStatus = "already_subscribed"
	SubscriptionReactivated   SubscriptionStatus = "reactivated"
	SubscriptionCancelled     SubscriptionStatus = "unsubscribed"
)

// Message returns the confirmation shown to the subscriber
func (s SubscriptionStatus) Message() string {
	switch s {
	case SubscriptionCreated:
		return "Successfully subscribed to newsletter"
	case SubscriptionAlreadyActive:
		return "Email already subscribed to newsletter"
	case SubscriptionReactivated:
		return "Newsletter subscription reactivated successfully"
	case SubscriptionCancelled:
		return "Successfully unsubscribed from newsletter"
	default:
		return string(s)
	}
}

// SubscriptionResult describes what a subscribe or unsubscribe call did
type SubscriptionResult struct {
	Email  string             `json:"email"`
	Status SubscriptionStatus `json:"status"`
}

// Stats holds document counts per collection
type Stats struct {
	HeroSlides            int64 `json:"hero_slides"`
	CulturalCategories    int64 `json:"cultural_categories"`
	RegionalHighlights    int64 `json:"regional_highlights"`
	FeaturedStories       int64 `json:"featured_stories"`
	NewsletterSubscribers int64 `json:"newsletter_subscribers"`
	ActiveSubscribers     int64 `json:"active_subscribers"`
}

// Fixtures is the sample content inserted into empty collections
type Fixtures struct {
	HeroSlides         []*HeroSlide         `yaml:"hero_slides"`
	CulturalCategories []*CulturalCategory  `yaml:"cultural_categories"`
	RegionalHighlights []*RegionalHighlight `yaml:"regional_highlights"`
	FeaturedStories    []*FeaturedStory     `yaml:"featured_stories"`
}
