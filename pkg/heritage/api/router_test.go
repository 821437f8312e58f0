package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/heritage-content/pkg/heritage"
	mediamemory "github.com/tendant/heritage-content/pkg/heritage/media/memory"
	"github.com/tendant/heritage-content/pkg/heritage/seed"
	"github.com/tendant/heritage-content/pkg/heritage/store"
	"github.com/tendant/heritage-content/pkg/heritage/store/memory"
)

// setupRouterTest creates a router over an in-memory store and media backend
func setupRouterTest(t *testing.T) (http.Handler, heritage.Service, store.Store) {
	t.Helper()
	st := memory.New(heritage.CollectionSpecs()...)
	svc, err := heritage.New(heritage.WithStore(st))
	require.NoError(t, err)

	router, err := NewRouter(RouterConfig{
		Service: svc,
		Media:   mediamemory.New(),
		Metrics: NewMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return router, svc, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func heroSlideBody(title string, sortOrder int) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "Classical dance of Tamil Nadu",
		"categories":  []string{"Dance"},
		"bg_color":    "#d987ff",
		"text_color":  "#151515",
		"image_url":   "https://example.com/slide.jpg",
		"region":      "South India",
		"sort_order":  sortOrder,
	}
}

func storyBody(title, category string) map[string]any {
	return map[string]any{
		"title":     title,
		"excerpt":   "An excerpt",
		"category":  category,
		"read_time": "5 min read",
		"image_url": "https://example.com/story.jpg",
	}
}

func TestNewRouterRequiresService(t *testing.T) {
	_, err := NewRouter(RouterConfig{})
	assert.Error(t, err)
}

func TestRootAndHealth(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	for _, path := range []string{"/api", "/api/"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		body := decodeBody[map[string]string](t, w)
		assert.Equal(t, "Indian Heritage Cultural Website API", body["message"])
		assert.Equal(t, "running", body["status"])
	}

	w := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"status": "healthy", "service": "Indian Heritage API"}, decodeBody[map[string]string](t, w))
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestHeroSlideRoutes(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/hero-slides", heroSlideBody("Bharatanatyam", 2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeBody[heritage.HeroSlide](t, w)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)
	assert.False(t, created.CreatedAt.IsZero())

	hidden := heroSlideBody("Hidden", 1)
	hidden["is_active"] = false
	w = doJSON(t, router, http.MethodPost, "/api/hero-slides/", hidden)
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/hero-slides", "/api/hero-slides/"} {
		w = doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		slides := decodeBody[[]heritage.HeroSlide](t, w)
		require.Len(t, slides, 1, path)
		assert.Equal(t, "Bharatanatyam", slides[0].Title)
	}

	w = doJSON(t, router, http.MethodGet, "/api/hero-slides/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeBody[heritage.HeroSlide](t, w).ID)

	update := heroSlideBody("Bharatanatyam Revisited", 5)
	w = doJSON(t, router, http.MethodPut, "/api/hero-slides/"+created.ID, update)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[heritage.HeroSlide](t, w)
	assert.Equal(t, "Bharatanatyam Revisited", updated.Title)
	assert.Equal(t, 5, updated.SortOrder)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	w = doJSON(t, router, http.MethodDelete, "/api/hero-slides/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MessageResponse{Message: "Hero slide deleted successfully", Success: true}, decodeBody[MessageResponse](t, w))

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w = doJSON(t, router, method, "/api/hero-slides/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "Hero slide not found", decodeBody[ErrorResponse](t, w).Detail)
	}
	w = doJSON(t, router, http.MethodPut, "/api/hero-slides/"+created.ID, update)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	router, _, st := setupRouterTest(t)

	body := heroSlideBody("", 0)
	delete(body, "categories")
	w := doJSON(t, router, http.MethodPost, "/api/hero-slides", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[ErrorResponse](t, w)
	assert.Contains(t, resp.Errors, "title")
	assert.Contains(t, resp.Errors, "categories")
	assert.NotContains(t, resp.Errors, "region")

	w = doJSON(t, router, http.MethodPost, "/api/hero-slides", `{"title": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, w).Detail, "Invalid request body")

	n, err := st.Collection(heritage.HeroSlidesCollection).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCulturalCategoryRoutes(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	category := func(title string, featured bool) map[string]any {
		return map[string]any{
			"title":       title,
			"description": "A description",
			"bg_color":    "#ffd1e7",
			"text_color":  "#151515",
			"categories":  []string{"Music"},
			"count_text":  "12+ Forms",
			"image_url":   "https://example.com/category.jpg",
			"is_featured": featured,
		}
	}
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/cultural-categories", category("Music", true)).Code)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/cultural-categories", category("Crafts", false)).Code)

	w := doJSON(t, router, http.MethodGet, "/api/cultural-categories", nil)
	assert.Len(t, decodeBody[[]heritage.CulturalCategory](t, w), 2)

	w = doJSON(t, router, http.MethodGet, "/api/cultural-categories/featured", nil)
	featured := decodeBody[[]heritage.CulturalCategory](t, w)
	require.Len(t, featured, 1)
	assert.Equal(t, "Music", featured[0].Title)

	w = doJSON(t, router, http.MethodGet, "/api/cultural-categories/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Cultural category not found", decodeBody[ErrorResponse](t, w).Detail)
}

func TestRegionalHighlightRoutes(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/regional-highlights", map[string]any{
		"region_name":         "South India",
		"states":              []string{"Kerala", "Tamil Nadu"},
		"cultural_highlights": []string{"Kathakali"},
		"bg_color":            "#78d692",
		"text_color":          "#151515",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeBody[heritage.RegionalHighlight](t, w)

	w = doJSON(t, router, http.MethodGet, "/api/regional-highlights", nil)
	assert.Len(t, decodeBody[[]heritage.RegionalHighlight](t, w), 1)

	w = doJSON(t, router, http.MethodDelete, "/api/regional-highlights/"+created.ID, nil)
	assert.Equal(t, "Regional highlight deleted successfully", decodeBody[MessageResponse](t, w).Message)

	w = doJSON(t, router, http.MethodGet, "/api/regional-highlights/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Regional highlight not found", decodeBody[ErrorResponse](t, w).Detail)
}

func TestStoryRoutes(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/featured-stories", storyBody("Holi", "Festivals & Traditions"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	holi := decodeBody[heritage.FeaturedStory](t, w)
	assert.True(t, holi.IsFeatured)
	assert.False(t, holi.PublishedAt.IsZero())

	draft := storyBody("Draft", "Architecture")
	draft["is_featured"] = false
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/featured-stories", draft).Code)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories", nil)
	assert.Len(t, decodeBody[[]heritage.FeaturedStory](t, w), 1)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/all", nil)
	assert.Len(t, decodeBody[[]heritage.FeaturedStory](t, w), 2)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/category/FESTIVAL", nil)
	stories := decodeBody[[]heritage.FeaturedStory](t, w)
	require.Len(t, stories, 1)
	assert.Equal(t, "Holi", stories[0].Title)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/category/Festivals%20%26", nil)
	assert.Len(t, decodeBody[[]heritage.FeaturedStory](t, w), 1)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/category/cuisine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/"+holi.ID, nil)
	assert.Equal(t, holi.Title, decodeBody[heritage.FeaturedStory](t, w).Title)

	w = doJSON(t, router, http.MethodDelete, "/api/featured-stories/"+holi.ID, nil)
	assert.Equal(t, "Story deleted successfully", decodeBody[MessageResponse](t, w).Message)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/"+holi.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Story not found", decodeBody[ErrorResponse](t, w).Detail)
}

func TestNewsletterRoutes(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	subscribe := func(email string) *httptest.ResponseRecorder {
		return doJSON(t, router, http.MethodPost, "/api/newsletter/subscribe", map[string]string{"email": email})
	}
	unsubscribe := func(email string) *httptest.ResponseRecorder {
		return doJSON(t, router, http.MethodPost, "/api/newsletter/unsubscribe", map[string]string{"email": email})
	}

	steps := []struct {
		name    string
		call    func(string) *httptest.ResponseRecorder
		message string
		status  heritage.SubscriptionStatus
	}{
		{"first subscribe", subscribe, "Successfully subscribed to newsletter", heritage.SubscriptionCreated},
		{"repeat subscribe", subscribe, "Email already subscribed to newsletter", heritage.SubscriptionAlreadyActive},
		{"unsubscribe", unsubscribe, "Successfully unsubscribed from newsletter", heritage.SubscriptionCancelled},
		{"unsubscribe again", unsubscribe, "Successfully unsubscribed from newsletter", heritage.SubscriptionCancelled},
		{"reactivate", subscribe, "Newsletter subscription reactivated successfully", heritage.SubscriptionReactivated},
	}
	for _, step := range steps {
		w := step.call("Reader@Example.com")
		require.Equal(t, http.StatusOK, w.Code, step.name)
		resp := decodeBody[NewsletterResponse](t, w)
		assert.Equal(t, step.message, resp.Message, step.name)
		assert.True(t, resp.Success, step.name)
		require.NotNil(t, resp.Data, step.name)
		assert.Equal(t, "reader@example.com", resp.Data.Email, step.name)
		assert.Equal(t, step.status, resp.Data.Status, step.name)
	}

	w := subscribe("not-an-email")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email format", decodeBody[ErrorResponse](t, w).Detail)

	w = doJSON(t, router, http.MethodPost, "/api/newsletter/subscribe", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, w).Errors, "email")

	w = unsubscribe("nobody@example.com")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Email not found in newsletter subscriptions", decodeBody[ErrorResponse](t, w).Detail)

	require.Equal(t, http.StatusOK, subscribe("second@example.com").Code)

	w = doJSON(t, router, http.MethodGet, "/api/newsletter/subscribers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	subscribers := decodeBody[[]heritage.NewsletterSubscriber](t, w)
	assert.Len(t, subscribers, 2)

	w = doJSON(t, router, http.MethodGet, "/api/newsletter/subscribers/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int64{"active_subscribers": 2}, decodeBody[map[string]int64](t, w))
}

func TestAllData(t *testing.T) {
	router, _, st := setupRouterTest(t)

	fixtures, err := seed.Default()
	require.NoError(t, err)
	_, err = heritage.NewSeeder(st, fixtures).Run(context.Background())
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/test/all-data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 5, body["hero_slides"])
	assert.EqualValues(t, 6, body["cultural_categories"])
	assert.EqualValues(t, 4, body["regional_highlights"])
	assert.EqualValues(t, 3, body["featured_stories"])

	w = doJSON(t, router, http.MethodGet, "/api/hero-slides", nil)
	slides := decodeBody[[]heritage.HeroSlide](t, w)
	require.Len(t, slides, 5)
	for i := 1; i < len(slides); i++ {
		assert.LessOrEqual(t, slides[i-1].SortOrder, slides[i].SortOrder)
	}
}

// brokenService fails every call it overrides with a store error
type brokenService struct {
	heritage.Service
	err error
}

func (s brokenService) ListHeroSlides(ctx context.Context) ([]*heritage.HeroSlide, error) {
	return nil, s.err
}

func (s brokenService) GetStory(ctx context.Context, id string) (*heritage.FeaturedStory, error) {
	return nil, s.err
}

func (s brokenService) Stats(ctx context.Context) (*heritage.Stats, error) {
	return nil, s.err
}

func TestStoreFailures(t *testing.T) {
	router, err := NewRouter(RouterConfig{
		Service: brokenService{err: errors.New("connection refused")},
		Metrics: NewMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/hero-slides", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error fetching hero slides: connection refused", decodeBody[ErrorResponse](t, w).Detail)

	w = doJSON(t, router, http.MethodGet, "/api/featured-stories/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error fetching story: connection refused", decodeBody[ErrorResponse](t, w).Detail)

	w = doJSON(t, router, http.MethodGet, "/api/test/all-data", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]string{"error": "connection refused", "status": "error"}, decodeBody[map[string]string](t, w))
}

func TestWrappedNotFoundIsNotServerError(t *testing.T) {
	wrapped := &heritage.EntityError{Entity: heritage.KindFeaturedStory, ID: "x", Op: "get", Err: heritage.ErrNotFound}
	router, err := NewRouter(RouterConfig{
		Service: brokenService{err: wrapped},
		Metrics: NewMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/featured-stories/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Story not found", decodeBody[ErrorResponse](t, w).Detail)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	doJSON(t, router, http.MethodGet, "/api/hero-slides", nil)
	doJSON(t, router, http.MethodPost, "/api/newsletter/subscribe", map[string]string{"email": "metrics@example.com"})

	w := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "heritage_http_requests_total")
	assert.Contains(t, body, "heritage_http_request_duration_seconds")
	assert.Contains(t, body, `heritage_newsletter_transitions_total{status="subscribed"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	router, _, _ := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/hero-slides", nil)
	req.Header.Set("Origin", "https://heritage.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminGuardDisabled(t *testing.T) {
	guard, err := AdminGuard("", "")
	require.NoError(t, err)
	assert.Nil(t, guard)
}
