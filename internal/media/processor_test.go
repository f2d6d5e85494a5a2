package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gorstka/Yatube/pkg/storage"
)

// smallGIF is a 2x1 GIF used as the upload fixture.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0c,
	0x0a, 0x00, 0x3b,
}

func newTestProcessor(t *testing.T) (*Processor, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), URLPrefix: "/media"})
	require.NoError(t, err)

	p := NewProcessor(store, Config{})
	p.newID = func() string { return "fixed" }
	return p, store
}

func TestSaveStoresOriginalAndThumbnail(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProcessor(t)

	key, err := p.SaveReader(ctx, bytes.NewReader(smallGIF))
	require.NoError(t, err)
	assert.Equal(t, "posts/fixed.gif", key)

	ok, err := store.Exists(ctx, "posts/thumbs/fixed.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := store.Read(ctx, "posts/thumbs/fixed.jpg")
	require.NoError(t, err)
	defer rc.Close()
	thumb, err := imaging.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, 960, thumb.Bounds().Dx())
	assert.Equal(t, 339, thumb.Bounds().Dy())

	assert.Equal(t, "/media/posts/fixed.gif", p.URL(ctx, key))
	assert.Equal(t, "/media/posts/thumbs/fixed.jpg", p.ThumbnailURL(ctx, key))

	img, th := p.Resolver(ctx)(key)
	assert.Equal(t, "/media/posts/fixed.gif", img)
	assert.Equal(t, "/media/posts/thumbs/fixed.jpg", th)

	require.NoError(t, p.Delete(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRejectsNonImages(t *testing.T) {
	p, _ := newTestProcessor(t)

	_, err := p.SaveReader(context.Background(), strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSaveRejectsOversizedUploads(t *testing.T) {
	p, _ := newTestProcessor(t)
	p.cfg.MaxBytes = 10

	_, err := p.SaveReader(context.Background(), bytes.NewReader(smallGIF))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestSaveEncodedGIF(t *testing.T) {
	p, _ := newTestProcessor(t)

	img := image.NewPaletted(image.Rect(0, 0, 40, 20), []color.Color{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	key, err := p.SaveReader(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"))
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "posts/thumbs/abc.jpg", ThumbnailKey("posts/abc.png"))
	assert.Equal(t, "posts/thumbs/abc.jpg", ThumbnailKey("posts/abc"))
}
