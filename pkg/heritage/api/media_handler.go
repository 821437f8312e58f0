package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/heritage-content/pkg/heritage/media"
)

// DefaultMaxUploadSize bounds a direct media upload
const DefaultMaxUploadSize int64 = 10 << 20

// MediaResponse identifies a stored or pending media object
type MediaResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// MediaHandler handles uploads and downloads of image assets
type MediaHandler struct {
	blobs         media.BlobStore
	guard         func(http.Handler) http.Handler
	publicPrefix  string
	maxUploadSize int64
}

// NewMediaHandler creates a media handler. publicPrefix is the path the
// handler is mounted under and is used to build object URLs.
func NewMediaHandler(blobs media.BlobStore, publicPrefix string, guard func(http.Handler) http.Handler) *MediaHandler {
	return &MediaHandler{
		blobs:         blobs,
		guard:         guard,
		publicPrefix:  publicPrefix,
		maxUploadSize: DefaultMaxUploadSize,
	}
}

// Routes returns the routes for media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Download)
	r.Group(func(r chi.Router) {
		if h.guard != nil {
			r.Use(h.guard)
		}
		r.Post("/", h.Upload)
		r.Get("/upload-url", h.UploadURL)
		r.Delete("/*", h.Delete)
	})
	return r
}

// Upload stores the raw request body as a new image
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !media.IsImage(contentType) {
		writeDetail(w, r, http.StatusBadRequest, "Content-Type must be an image media type")
		return
	}

	key := media.NewImageKey(contentType)
	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := h.blobs.Put(r.Context(), key, contentType, body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, r, http.StatusRequestEntityTooLarge, "Upload exceeds "+strconv.FormatInt(h.maxUploadSize, 10)+" bytes")
			return
		}
		writeError(w, r, err, failure{action: "Error uploading media"})
		return
	}

	slog.Info("Media uploaded", "key", key, "content_type", contentType)
	writeJSON(w, r, http.StatusCreated, MediaResponse{Key: key, URL: h.publicPrefix + "/" + key})
}

// UploadURL returns a presigned URL the client can PUT an image to
func (h *MediaHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		key = media.NewImageKey(r.URL.Query().Get("content_type"))
	}
	if err := media.ValidateKey(key); err != nil {
		writeDetail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.blobs.UploadURL(r.Context(), key)
	if errors.Is(err, media.ErrNotSupported) {
		writeDetail(w, r, http.StatusNotImplemented, "Presigned uploads are not supported by the media backend")
		return
	}
	if err != nil {
		writeError(w, r, err, failure{action: "Error creating upload URL"})
		return
	}
	writeJSON(w, r, http.StatusOK, MediaResponse{Key: key, URL: url})
}

// Download streams a stored object
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := media.ValidateKey(key); err != nil {
		writeDetail(w, r, http.StatusNotFound, "Media not found")
		return
	}

	body, meta, err := h.blobs.Get(r.Context(), key)
	if errors.Is(err, media.ErrNotFound) {
		writeDetail(w, r, http.StatusNotFound, "Media not found")
		return
	}
	if err != nil {
		writeError(w, r, err, failure{action: "Error fetching media"})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if meta.ETag != "" {
		w.Header().Set("ETag", `"`+meta.ETag+`"`)
	}
	if !meta.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", meta.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Media download interrupted", "key", key, "error", err)
	}
}

// Delete removes a stored object
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := media.ValidateKey(key); err != nil {
		writeDetail(w, r, http.StatusNotFound, "Media not found")
		return
	}

	err := h.blobs.Delete(r.Context(), key)
	if errors.Is(err, media.ErrNotFound) {
		writeDetail(w, r, http.StatusNotFound, "Media not found")
		return
	}
	if err != nil {
		writeError(w, r, err, failure{action: "Error deleting media"})
		return
	}
	writeJSON(w, r, http.StatusOK, MessageResponse{Message: "Media deleted successfully", Success: true})
}
