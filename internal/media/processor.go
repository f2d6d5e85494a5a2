package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/Gorstka/Yatube/internal/domain"
	pkglog "github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/storage"
)

// ErrInvalidImage is returned for uploads that do not decode as an image.
var ErrInvalidImage = errors.New("invalid image")

// ErrImageTooLarge is returned for uploads over the configured size limit.
var ErrImageTooLarge = errors.New("image too large")

const (
	postsPrefix  = "posts/"
	thumbsPrefix = "posts/thumbs/"
)

// Config holds image processing settings.
type Config struct {
	ThumbnailWidth  int
	ThumbnailHeight int
	JPEGQuality     int
	MaxBytes        int64
	URLExpiry       time.Duration
}

// Processor validates post images, stores the original upload and a
// cropped thumbnail.
type Processor struct {
	store storage.Storage
	cfg   Config
	newID func() string
}

// NewProcessor constructs a Processor; zero config fields fall back to a
// 960x339 thumbnail at quality 85 and a 10 MiB limit.
func NewProcessor(store storage.Storage, cfg Config) *Processor {
	if cfg.ThumbnailWidth <= 0 {
		cfg.ThumbnailWidth = 960
	}
	if cfg.ThumbnailHeight <= 0 {
		cfg.ThumbnailHeight = 339
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 85
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = time.Hour
	}

	return &Processor{
		store: store,
		cfg:   cfg,
		newID: uuid.NewString,
	}
}

// Save stores an uploaded form file and returns its storage key.
func (p *Processor) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > p.cfg.MaxBytes {
		return "", ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return p.SaveReader(ctx, f)
}

// SaveReader validates and stores the image read from r.
func (p *Processor) SaveReader(ctx context.Context, r io.Reader) (string, error) {
	l := pkglog.Ctx(ctx)

	data, err := io.ReadAll(io.LimitReader(r, p.cfg.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.cfg.MaxBytes {
		return "", ErrImageTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrInvalidImage
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrInvalidImage
	}

	id := p.newID()
	key := postsPrefix + id + extension(format)

	if err := p.store.Write(ctx, key, bytes.NewReader(data), int64(len(data)), "image/"+format); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	thumb := imaging.Fill(img, p.cfg.ThumbnailWidth, p.cfg.ThumbnailHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(p.cfg.JPEGQuality)); err != nil {
		p.cleanup(ctx, key)
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	thumbKey := ThumbnailKey(key)
	if err := p.store.Write(ctx, thumbKey, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/jpeg"); err != nil {
		p.cleanup(ctx, key)
		return "", fmt.Errorf("store thumbnail: %w", err)
	}

	l.Info().Str("key", key).Str("format", format).Msg("stored post image")
	return key, nil
}

// Delete removes an image and its thumbnail.
func (p *Processor) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := p.store.Delete(ctx, ThumbnailKey(key)); err != nil {
		return err
	}
	return p.store.Delete(ctx, key)
}

// URL returns the public URL of an image, or "" when it cannot be resolved.
func (p *Processor) URL(ctx context.Context, key string) string {
	return p.url(ctx, key)
}

// ThumbnailURL returns the public URL of an image's thumbnail.
func (p *Processor) ThumbnailURL(ctx context.Context, key string) string {
	return p.url(ctx, ThumbnailKey(key))
}

// Resolver binds URL lookups to ctx for use while rendering responses.
func (p *Processor) Resolver(ctx context.Context) domain.ImageResolver {
	return func(key string) (string, string) {
		return p.URL(ctx, key), p.ThumbnailURL(ctx, key)
	}
}

func (p *Processor) url(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	u, err := p.store.GetURL(ctx, key, p.cfg.URLExpiry)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to resolve media url")
		return ""
	}
	return u
}

func (p *Processor) cleanup(ctx context.Context, key string) {
	if err := p.store.Delete(ctx, key); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to remove orphaned image")
	}
}

// ThumbnailKey maps "posts/<id>.<ext>" to "posts/thumbs/<id>.jpg".
func ThumbnailKey(key string) string {
	base := path.Base(key)
	return thumbsPrefix + strings.TrimSuffix(base, path.Ext(base)) + ".jpg"
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ""
	default:
		return "." + format
	}
}
