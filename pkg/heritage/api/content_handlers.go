package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/heritage-content/pkg/heritage"
)

// HeroSlideHandler handles HTTP requests for hero slides
type HeroSlideHandler struct {
	service heritage.Service
	guard   func(http.Handler) http.Handler
	res     resource[heritage.HeroSlide, heritage.HeroSlideInput]
}

// NewHeroSlideHandler creates a hero slide handler. guard, when non-nil,
// wraps the write routes.
func NewHeroSlideHandler(service heritage.Service, guard func(http.Handler) http.Handler) *HeroSlideHandler {
	return &HeroSlideHandler{
		service: service,
		guard:   guard,
		res: resource[heritage.HeroSlide, heritage.HeroSlideInput]{
			name:   "Hero slide",
			noun:   "hero slide",
			get:    service.GetHeroSlide,
			create: service.CreateHeroSlide,
			update: service.UpdateHeroSlide,
			delete: service.DeleteHeroSlide,
		},
	}
}

// Routes returns the routes for hero slides
func (h *HeroSlideHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", list(h.service.ListHeroSlides, "Error fetching hero slides"))
	h.res.mount(r, h.guard)
	return r
}

// CulturalCategoryHandler handles HTTP requests for cultural categories
type CulturalCategoryHandler struct {
	service heritage.Service
	guard   func(http.Handler) http.Handler
	res     resource[heritage.CulturalCategory, heritage.CulturalCategoryInput]
}

// NewCulturalCategoryHandler creates a cultural category handler
func NewCulturalCategoryHandler(service heritage.Service, guard func(http.Handler) http.Handler) *CulturalCategoryHandler {
	return &CulturalCategoryHandler{
		service: service,
		guard:   guard,
		res: resource[heritage.CulturalCategory, heritage.CulturalCategoryInput]{
			name:   "Cultural category",
			noun:   "cultural category",
			get:    service.GetCulturalCategory,
			create: service.CreateCulturalCategory,
			update: service.UpdateCulturalCategory,
			delete: service.DeleteCulturalCategory,
		},
	}
}

// Routes returns the routes for cultural categories
func (h *CulturalCategoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", list(h.service.ListCulturalCategories, "Error fetching cultural categories"))
	r.Get("/featured", list(h.service.ListFeaturedCategories, "Error fetching featured categories"))
	h.res.mount(r, h.guard)
	return r
}

// RegionalHighlightHandler handles HTTP requests for regional highlights
type RegionalHighlightHandler struct {
	service heritage.Service
	guard   func(http.Handler) http.Handler
	res     resource[heritage.RegionalHighlight, heritage.RegionalHighlightInput]
}

// NewRegionalHighlightHandler creates a regional highlight handler
func NewRegionalHighlightHandler(service heritage.Service, guard func(http.Handler) http.Handler) *RegionalHighlightHandler {
	return &RegionalHighlightHandler{
		service: service,
		guard:   guard,
		res: resource[heritage.RegionalHighlight, heritage.RegionalHighlightInput]{
			name:   "Regional highlight",
			noun:   "regional highlight",
			get:    service.GetRegionalHighlight,
			create: service.CreateRegionalHighlight,
			update: service.UpdateRegionalHighlight,
			delete: service.DeleteRegionalHighlight,
		},
	}
}

// Routes returns the routes for regional highlights
func (h *RegionalHighlightHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", list(h.service.ListRegionalHighlights, "Error fetching regional highlights"))
	h.res.mount(r, h.guard)
	return r
}

// StoryHandler handles HTTP requests for featured stories
type StoryHandler struct {
	service heritage.Service
	guard   func(http.Handler) http.Handler
	res     resource[heritage.FeaturedStory, heritage.FeaturedStoryInput]
}

// NewStoryHandler creates a featured story handler
func NewStoryHandler(service heritage.Service, guard func(http.Handler) http.Handler) *StoryHandler {
	return &StoryHandler{
		service: service,
		guard:   guard,
		res: resource[heritage.FeaturedStory, heritage.FeaturedStoryInput]{
			name:   "Story",
			noun:   "story",
			get:    service.GetStory,
			create: service.CreateStory,
			update: service.UpdateStory,
			delete: service.DeleteStory,
		},
	}
}

// Routes returns the routes for featured stories
func (h *StoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", list(h.service.ListFeaturedStories, "Error fetching featured stories"))
	r.Get("/all", list(h.service.ListAllStories, "Error fetching all stories"))
	r.Get("/category/{category}", h.ListByCategory)
	h.res.mount(r, h.guard)
	return r
}

// ListByCategory lists stories whose category contains the path segment,
// ignoring case.
func (h *StoryHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}

	stories, err := h.service.ListStoriesByCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err, failure{action: "Error fetching stories by category"})
		return
	}
	writeJSON(w, r, http.StatusOK, stories)
}
