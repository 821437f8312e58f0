package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// resource serves get, create, update and delete for one record type.
// Record-specific list routes are registered by the owning handler.
type resource[T any, In any] struct {
	name   string // display name, e.g. "Hero slide"
	noun   string // lower case noun used in error details
	get    func(ctx context.Context, id string) (*T, error)
	create func(ctx context.Context, in In) (*T, error)
	update func(ctx context.Context, id string, in In) (*T, error)
	delete func(ctx context.Context, id string) error
}

func (res resource[T, In]) notFound() string {
	return res.name + " not found"
}

// mount registers the id routes. Writes go through the guard group.
func (res resource[T, In]) mount(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/{id}", res.handleGet)
	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Post("/", res.handleCreate)
		r.Put("/{id}", res.handleUpdate)
		r.Delete("/{id}", res.handleDelete)
	})
}

func (res resource[T, In]) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := res.get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, failure{notFound: res.notFound(), action: "Error fetching " + res.noun})
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (res resource[T, In]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in In
	if !decodeJSON(w, r, &in) {
		return
	}
	item, err := res.create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, failure{notFound: res.notFound(), action: "Error creating " + res.noun})
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (res resource[T, In]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in In
	if !decodeJSON(w, r, &in) {
		return
	}
	item, err := res.update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err, failure{notFound: res.notFound(), action: "Error updating " + res.noun})
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (res resource[T, In]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := res.delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, failure{notFound: res.notFound(), action: "Error deleting " + res.noun})
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{
		Message: res.name + " deleted successfully",
		Success: true,
	})
}

// list adapts a list call into a handler
func list[T any](fn func(ctx context.Context) ([]*T, error), action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fn(r.Context())
		if err != nil {
			writeError(w, r, err, failure{action: action})
			return
		}
		writeJSON(w, r, http.StatusOK, items)
	}
}
