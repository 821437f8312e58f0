package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/heritage-content/pkg/heritage"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

// MessageResponse acknowledges a delete
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// NewsletterResponse wraps the outcome of a subscribe or unsubscribe call
type NewsletterResponse struct {
	Message string                       `json:"message"`
	Success bool                         `json:"success"`
	Data    *heritage.SubscriptionResult `json:"data"`
}

// failure describes how an operation reports its errors: the 404 detail
// and the prefix of the 500 detail.
type failure struct {
	notFound string
	action   string
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, r, status, ErrorResponse{Detail: detail})
}

// writeError maps service errors onto status codes. Not-found is tested
// first so it is never reported as a server error.
func writeError(w http.ResponseWriter, r *http.Request, err error, f failure) {
	var verr *heritage.ValidationError
	switch {
	case errors.Is(err, heritage.ErrNotFound):
		writeDetail(w, r, http.StatusNotFound, f.notFound)
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
			Detail: fmt.Sprintf("Invalid %s", verr.Entity),
			Errors: verr.FieldErrors(),
		})
	case errors.Is(err, heritage.ErrInvalidEmail):
		writeDetail(w, r, http.StatusBadRequest, "Invalid email format")
	default:
		slog.Error(f.action, "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeDetail(w, r, http.StatusInternalServerError, fmt.Sprintf("%s: %v", f.action, err))
	}
}

// decodeJSON reads a JSON request body into dst. Unknown fields are
// ignored; a malformed body is answered with 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
