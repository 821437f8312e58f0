package api

import (
	"net/http"

	"github.com/tendant/heritage-content/pkg/heritage"
)

// RootHandler handles GET /api/
func RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"message": "Indian Heritage Cultural Website API",
		"status":  "running",
	})
}

// HealthHandler handles GET /api/health
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Indian Heritage API",
	})
}

// AllDataHandler reports document counts for the content collections
func AllDataHandler(service heritage.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := service.Stats(r.Context())
		if err != nil {
			writeJSON(w, r, http.StatusInternalServerError, map[string]string{
				"error":  err.Error(),
				"status": "error",
			})
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"hero_slides":         stats.HeroSlides,
			"cultural_categories": stats.CulturalCategories,
			"regional_highlights": stats.RegionalHighlights,
			"featured_stories":    stats.FeaturedStories,
			"status":              "success",
		})
	}
}
