package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/heritage-content/pkg/heritage"
)

// NewsletterHandler handles newsletter subscription requests
type NewsletterHandler struct {
	service heritage.Service
	metrics *Metrics
	guard   func(http.Handler) http.Handler
}

// NewNewsletterHandler creates a newsletter handler. Subscribe and
// unsubscribe stay public; guard only wraps the subscriber listings.
func NewNewsletterHandler(service heritage.Service, metrics *Metrics, guard func(http.Handler) http.Handler) *NewsletterHandler {
	return &NewsletterHandler{service: service, metrics: metrics, guard: guard}
}

// Routes returns the routes for the newsletter
func (h *NewsletterHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/subscribe", h.Subscribe)
	r.Post("/unsubscribe", h.Unsubscribe)
	r.Group(func(r chi.Router) {
		if h.guard != nil {
			r.Use(h.guard)
		}
		r.Get("/subscribers", list(h.service.ListActiveSubscribers, "Error fetching newsletter subscribers"))
		r.Get("/subscribers/count", h.CountSubscribers)
	})
	return r
}

// Subscribe handles POST /newsletter/subscribe
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var in heritage.NewsletterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := heritage.ValidateInput(heritage.KindSubscriber, in); err != nil {
		writeError(w, r, err, failure{action: "Error validating newsletter request"})
		return
	}

	result, err := h.service.Subscribe(r.Context(), in.Email)
	if err != nil {
		writeError(w, r, err, failure{action: "Error subscribing to newsletter"})
		return
	}
	h.respond(w, r, result)
}

// Unsubscribe handles POST /newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var in heritage.NewsletterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := heritage.ValidateInput(heritage.KindSubscriber, in); err != nil {
		writeError(w, r, err, failure{action: "Error validating newsletter request"})
		return
	}

	result, err := h.service.Unsubscribe(r.Context(), in.Email)
	if err != nil {
		writeError(w, r, err, failure{
			notFound: "Email not found in newsletter subscriptions",
			action:   "Error unsubscribing from newsletter",
		})
		return
	}
	h.respond(w, r, result)
}

func (h *NewsletterHandler) respond(w http.ResponseWriter, r *http.Request, result *heritage.SubscriptionResult) {
	h.metrics.ObserveSubscription(result.Status)
	writeJSON(w, r, http.StatusOK, NewsletterResponse{
		Message: result.Status.Message(),
		Success: true,
		Data:    result,
	})
}

// CountSubscribers handles GET /newsletter/subscribers/count
func (h *NewsletterHandler) CountSubscribers(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountActiveSubscribers(r.Context())
	if err != nil {
		writeError(w, r, err, failure{action: "Error getting subscriber count"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int64{"active_subscribers": n})
}
