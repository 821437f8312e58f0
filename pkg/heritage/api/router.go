// Package api exposes the heritage service over HTTP with chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/media"
)

// DefaultRequestTimeout bounds the time a handler may run
const DefaultRequestTimeout = 60 * time.Second

// RouterConfig holds the dependencies of the HTTP router
type RouterConfig struct {
	Service        heritage.Service
	Media          media.BlobStore // optional; media routes are skipped when nil
	Metrics        *Metrics        // optional; a private registry is created when nil
	Logger         *slog.Logger
	AllowedOrigins []string
	AdminKeySHA256 string
	AdminJWTSecret string
	RequestTimeout time.Duration
}

// NewRouter builds the full HTTP surface: the API under /api and the
// prometheus endpoint at /metrics.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	guard, err := AdminGuard(cfg.AdminKeySHA256, cfg.AdminJWTSecret)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(middleware.StripSlashes)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Handle("/metrics", cfg.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Get("/", RootHandler)
		r.Get("/health", HealthHandler)
		r.Get("/test/all-data", AllDataHandler(cfg.Service))

		r.Mount("/hero-slides", NewHeroSlideHandler(cfg.Service, guard).Routes())
		r.Mount("/cultural-categories", NewCulturalCategoryHandler(cfg.Service, guard).Routes())
		r.Mount("/regional-highlights", NewRegionalHighlightHandler(cfg.Service, guard).Routes())
		r.Mount("/featured-stories", NewStoryHandler(cfg.Service, guard).Routes())
		r.Mount("/newsletter", NewNewsletterHandler(cfg.Service, cfg.Metrics, guard).Routes())
		if cfg.Media != nil {
			r.Mount("/media", NewMediaHandler(cfg.Media, "/api/media", guard).Routes())
		}
	})

	return r, nil
}
