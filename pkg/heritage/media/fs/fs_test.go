package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/heritage-content/pkg/heritage/media"
)

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	require.NoError(t, b.Put(ctx, "images/nested/a.png", "image/png", strings.NewReader("png-bytes")))
	assert.FileExists(t, filepath.Join(dir, "images", "nested", "a.png"))

	rc, meta, err := b.Get(ctx, "images/nested/a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", meta.ContentType)
	assert.Equal(t, int64(9), meta.Size)

	require.NoError(t, b.Put(ctx, "images/nested/a.png", "image/png", strings.NewReader("v2")))
	meta, err = b.Stat(ctx, "images/nested/a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Size)

	require.NoError(t, b.Delete(ctx, "images/nested/a.png"))
	_, err = b.Stat(ctx, "images/nested/a.png")
	assert.ErrorIs(t, err, media.ErrNotFound)
	assert.NoDirExists(t, filepath.Join(dir, "images"))
	assert.DirExists(t, dir)

	assert.ErrorIs(t, b.Delete(ctx, "images/nested/a.png"), media.ErrNotFound)
}

func TestSniffsContentTypeWithoutExtension(t *testing.T) {
	ctx := context.Background()
	b, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, b.Put(ctx, "blob", "", strings.NewReader("plain words")))
	meta, err := b.Stat(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", meta.ContentType)
}

func TestRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := New(Config{BaseDir: filepath.Join(dir, "media")})
	require.NoError(t, err)

	err = b.Put(ctx, "../outside.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, media.ErrInvalidKey)
	_, statErr := os.Stat(filepath.Join(dir, "outside.txt"))
	assert.True(t, os.IsNotExist(statErr))

	_, _, err = b.Get(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, media.ErrInvalidKey)
}

func TestUploadURLNotSupported(t *testing.T) {
	b, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	_, err = b.UploadURL(context.Background(), "images/a.png")
	assert.ErrorIs(t, err, media.ErrNotSupported)
}
