package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir(), URLPrefix: "/media/"})
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "posts/a.jpg", strings.NewReader("img"), 3, "image/jpeg"))

	ok, err := s.Exists(ctx, "posts/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Read(ctx, "posts/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "img", string(data))

	url, err := s.GetURL(ctx, "posts/a.jpg", 0)
	require.NoError(t, err)
	assert.Equal(t, "/media/posts/a.jpg", url)

	require.NoError(t, s.Delete(ctx, "posts/a.jpg"))
	require.NoError(t, s.Delete(ctx, "posts/a.jpg"))

	_, err = s.Read(ctx, "posts/a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	err = s.Write(ctx, "../escape.txt", strings.NewReader("x"), 1, "")
	assert.Error(t, err)

	_, err = s.Exists(ctx, "/etc/passwd")
	assert.Error(t, err)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)
}
