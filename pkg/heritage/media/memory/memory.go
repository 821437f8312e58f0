package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/heritage-content/pkg/heritage/media"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the media.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Put stores a copy of the content
func (b *Backend) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	if err := media.ValidateKey(key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &media.StorageError{Backend: "memory", Key: key, Op: "put", Err: err}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = object{data: data, contentType: contentType, updatedAt: time.Now().UTC()}
	return nil
}

// Get returns a reader over the stored bytes
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, *media.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[key]
	if !ok {
		return nil, nil, media.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), meta(key, obj), nil
}

// Stat retrieves metadata for an object in memory
func (b *Backend) Stat(ctx context.Context, key string) (*media.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[key]
	if !ok {
		return nil, media.ErrNotFound
	}
	return meta(key, obj), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[key]; !ok {
		return media.ErrNotFound
	}
	delete(b.objects, key)
	return nil
}

// UploadURL is not supported; the memory backend only accepts direct uploads
func (b *Backend) UploadURL(ctx context.Context, key string) (string, error) {
	return "", media.ErrNotSupported
}

func meta(key string, obj object) *media.ObjectMeta {
	return &media.ObjectMeta{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
	}
}
