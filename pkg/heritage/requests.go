package heritage

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/heritage-content/pkg/heritage/store"
)

// Inputs carry only the client-settable fields of each record. They are
// used for both create and update; an update replaces every field listed
// here, so an omitted optional flag falls back to its default.

// HeroSlideInput contains the client-settable fields of a hero slide
type HeroSlideInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	BgColor     string   `json:"bg_color"`
	TextColor   string   `json:"text_color"`
	ImageURL    string   `json:"image_url"`
	Region      string   `json:"region"`
	IsActive    *bool    `json:"is_active,omitempty"`
	SortOrder   int      `json:"sort_order"`
}

// NewHeroSlide builds a hero slide with a fresh id and timestamps set to now
func NewHeroSlide(in HeroSlideInput, now time.Time) *HeroSlide {
	slide := &HeroSlide{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.apply(slide)
	return slide
}

func (in HeroSlideInput) apply(s *HeroSlide) {
	s.Title = in.Title
	s.Description = in.Description
	s.Categories = in.Categories
	s.BgColor = in.BgColor
	s.TextColor = in.TextColor
	s.ImageURL = in.ImageURL
	s.Region = in.Region
	s.IsActive = boolOr(in.IsActive, true)
	s.SortOrder = in.SortOrder
}

func (in HeroSlideInput) fields() store.Fields {
	var s HeroSlide
	in.apply(&s)
	return store.Fields{
		"title":       s.Title,
		"description": s.Description,
		"categories":  s.Categories,
		"bg_color":    s.BgColor,
		"text_color":  s.TextColor,
		"image_url":   s.ImageURL,
		"region":      s.Region,
		"is_active":   s.IsActive,
		"sort_order":  s.SortOrder,
	}
}

// CulturalCategoryInput contains the client-settable fields of a category
type CulturalCategoryInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	BgColor     string   `json:"bg_color"`
	TextColor   string   `json:"text_color"`
	Categories  []string `json:"categories"`
	CountText   string   `json:"count_text"`
	ImageURL    string   `json:"image_url"`
	IsFeatured  *bool    `json:"is_featured,omitempty"`
	SortOrder   int      `json:"sort_order"`
}

// NewCulturalCategory builds a category with a fresh id and timestamps set to now
func NewCulturalCategory(in CulturalCategoryInput, now time.Time) *CulturalCategory {
	category := &CulturalCategory{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.apply(category)
	return category
}

func (in CulturalCategoryInput) apply(c *CulturalCategory) {
	c.Title = in.Title
	c.Description = in.Description
	c.BgColor = in.BgColor
	c.TextColor = in.TextColor
	c.Categories = in.Categories
	c.CountText = in.CountText
	c.ImageURL = in.ImageURL
	c.IsFeatured = boolOr(in.IsFeatured, false)
	c.SortOrder = in.SortOrder
}

func (in CulturalCategoryInput) fields() store.Fields {
	var c CulturalCategory
	in.apply(&c)
	return store.Fields{
		"title":       c.Title,
		"description": c.Description,
		"bg_color":    c.BgColor,
		"text_color":  c.TextColor,
		"categories":  c.Categories,
		"count_text":  c.CountText,
		"image_url":   c.ImageURL,
		"is_featured": c.IsFeatured,
		"sort_order":  c.SortOrder,
	}
}

// RegionalHighlightInput contains the client-settable fields of a region
type RegionalHighlightInput struct {
	RegionName         string   `json:"region_name"`
	States             []string `json:"states"`
	CulturalHighlights []string `json:"cultural_highlights"`
	BgColor            string   `json:"bg_color"`
	TextColor          string   `json:"text_color"`
	IsActive           *bool    `json:"is_active,omitempty"`
	SortOrder          int      `json:"sort_order"`
}

// NewRegionalHighlight builds a regional highlight with a fresh id and timestamps set to now
func NewRegionalHighlight(in RegionalHighlightInput, now time.Time) *RegionalHighlight {
	highlight := &RegionalHighlight{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.apply(highlight)
	return highlight
}

func (in RegionalHighlightInput) apply(h *RegionalHighlight) {
	h.RegionName = in.RegionName
	h.States = in.States
	h.CulturalHighlights = in.CulturalHighlights
	h.BgColor = in.BgColor
	h.TextColor = in.TextColor
	h.IsActive = boolOr(in.IsActive, true)
	h.SortOrder = in.SortOrder
}

func (in RegionalHighlightInput) fields() store.Fields {
	var h RegionalHighlight
	in.apply(&h)
	return store.Fields{
		"region_name":         h.RegionName,
		"states":              h.States,
		"cultural_highlights": h.CulturalHighlights,
		"bg_color":            h.BgColor,
		"text_color":          h.TextColor,
		"is_active":           h.IsActive,
		"sort_order":          h.SortOrder,
	}
}

// FeaturedStoryInput contains the client-settable fields of a story
type FeaturedStoryInput struct {
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	ReadTime   string `json:"read_time"`
	ImageURL   string `json:"image_url"`
	Author     string `json:"author"`
	IsFeatured *bool  `json:"is_featured,omitempty"`
}

// NewFeaturedStory builds a story with a fresh id; it is published, created
// and updated at now.
func NewFeaturedStory(in FeaturedStoryInput, now time.Time) *FeaturedStory {
	story := &FeaturedStory{ID: uuid.NewString(), PublishedAt: now, CreatedAt: now, UpdatedAt: now}
	in.apply(story)
	return story
}

func (in FeaturedStoryInput) apply(s *FeaturedStory) {
	s.Title = in.Title
	s.Excerpt = in.Excerpt
	s.Content = in.Content
	s.Category = in.Category
	s.ReadTime = in.ReadTime
	s.ImageURL = in.ImageURL
	s.Author = in.Author
	s.IsFeatured = boolOr(in.IsFeatured, true)
}

func (in FeaturedStoryInput) fields() store.Fields {
	var s FeaturedStory
	in.apply(&s)
	return store.Fields{
		"title":       s.Title,
		"excerpt":     s.Excerpt,
		"content":     s.Content,
		"category":    s.Category,
		"read_time":   s.ReadTime,
		"image_url":   s.ImageURL,
		"author":      s.Author,
		"is_featured": s.IsFeatured,
	}
}

// NewsletterInput is the body of subscribe and unsubscribe calls
type NewsletterInput struct {
	Email string `json:"email"`
}

// NewNewsletterSubscriber builds an active subscriber for an already
// normalized email.
func NewNewsletterSubscriber(email string, now time.Time) *NewsletterSubscriber {
	return &NewsletterSubscriber{
		ID:           uuid.NewString(),
		Email:        email,
		IsActive:     true,
		SubscribedAt: now,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Bool returns a pointer to v, for filling optional input flags
func Bool(v bool) *bool {
	return &v
}
