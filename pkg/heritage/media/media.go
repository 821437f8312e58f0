// Package media stores image assets referenced by content records
// (image_url fields). Backends live in the memory, fs and s3 subpackages.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no object exists under the key
	ErrNotFound = errors.New("object not found")

	// ErrNotSupported indicates the backend cannot perform the operation
	ErrNotSupported = errors.New("operation not supported by storage backend")

	// ErrInvalidKey indicates a key that is empty or escapes the key space
	ErrInvalidKey = errors.New("invalid object key")
)

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Put stores the content read from r under key
	Put(ctx context.Context, key, contentType string, r io.Reader) error

	// Get opens the object stored under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectMeta, error)

	// Stat returns metadata for the object stored under key
	Stat(ctx context.Context, key string) (*ObjectMeta, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error

	// UploadURL returns a presigned URL a client can PUT the object to.
	// Backends without presigning return ErrNotSupported.
	UploadURL(ctx context.Context, key string) (string, error)
}

// ObjectMeta contains metadata about a stored object
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var preferredExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

// IsImage reports whether contentType names an image media type
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "image/")
}

// NewImageKey returns a fresh key of the form images/<uuid><ext>
func NewImageKey(contentType string) string {
	return "images/" + uuid.NewString() + extension(contentType)
}

func extension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// ValidateKey rejects keys that are empty, absolute or contain "." or ".."
// segments.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
