package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/tendant/heritage-content/pkg/heritage/media"
)

// Backend is a filesystem implementation of the media.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: filepath.Clean(config.BaseDir)}, nil
}

func (b *Backend) path(key string) (string, error) {
	if err := media.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(b.baseDir, filepath.FromSlash(key)), nil
}

// Put writes the content to a temporary file and renames it into place
func (b *Backend) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	filePath, err := b.path(key)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return b.wrap(key, "put", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload-*")
	if err != nil {
		return b.wrap(key, "put", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return b.wrap(key, "put", err)
	}
	if err := tmp.Close(); err != nil {
		return b.wrap(key, "put", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return b.wrap(key, "put", err)
	}
	return nil
}

// Get opens the file stored under key
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, *media.ObjectMeta, error) {
	filePath, err := b.path(key)
	if err != nil {
		return nil, nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	meta, err := b.stat(key, filePath)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, b.wrap(key, "get", err)
	}
	return file, meta, nil
}

// Stat retrieves metadata for an object in the filesystem
func (b *Backend) Stat(ctx context.Context, key string) (*media.ObjectMeta, error) {
	filePath, err := b.path(key)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stat(key, filePath)
}

func (b *Backend) stat(key, filePath string) (*media.ObjectMeta, error) {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, media.ErrNotFound
	} else if err != nil {
		return nil, b.wrap(key, "stat", err)
	}
	if info.IsDir() {
		return nil, media.ErrNotFound
	}

	return &media.ObjectMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: detectContentType(filePath),
		UpdatedAt:   info.ModTime().UTC(),
	}, nil
}

// detectContentType prefers the file extension and falls back to sniffing
// the first 512 bytes.
func detectContentType(filePath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		return ct
	}
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}
	return contentType
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath, err := b.path(key)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return media.ErrNotFound
		}
		return b.wrap(key, "delete", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// UploadURL is not supported; files are uploaded through the API
func (b *Backend) UploadURL(ctx context.Context, key string) (string, error) {
	return "", media.ErrNotSupported
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

func (b *Backend) wrap(key, op string, err error) error {
	return &media.StorageError{Backend: "fs", Key: key, Op: op, Err: err}
}
