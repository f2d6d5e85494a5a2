package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	pkglog "github.com/Gorstka/Yatube/pkg/log"
)

// Page cache lookup outcomes reported to PageOptions.OnEvent.
const (
	EventHit    = "hit"
	EventMiss   = "miss"
	EventShared = "shared"
	EventError  = "error"
)

// HeaderCache tells clients whether a response came from the cache.
const HeaderCache = "X-Cache"

// PageOptions configures the Page middleware.
type PageOptions struct {
	Prefix  string
	TTL     time.Duration
	OnEvent func(result string)
}

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body while it is written to the client.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Page caches successful GET responses of the wrapped route for opts.TTL
// under "<prefix>:<request URI>". Writes never invalidate the cache; stale
// pages live until their TTL runs out or the namespace is cleared. When
// several requests miss the same key at once only one renders the page and
// the rest reuse its output. If the store fails the request is served
// uncached.
func Page(store PageCache, opts PageOptions) gin.HandlerFunc {
	var group singleflight.Group

	event := func(result string) {
		if opts.OnEvent != nil {
			opts.OnEvent(result)
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		l := pkglog.Ctx(ctx)
		key := BuildKey(opts.Prefix, c.Request.URL.RequestURI())

		data, err := store.Get(ctx, key)
		switch {
		case err == nil:
			var page cachedPage
			if err := json.Unmarshal(data, &page); err == nil {
				event(EventHit)
				serve(c, &page)
				return
			}
			l.Warn().Str(pkglog.FieldCacheKey, key).Msg("discarding undecodable cached page")
		case !errors.Is(err, ErrCacheMiss):
			l.Warn().Err(err).Str(pkglog.FieldCacheKey, key).Msg("page cache unavailable, serving uncached")
			event(EventError)
			c.Next()
			return
		}

		rendered := false
		v, _, _ := group.Do(key, func() (interface{}, error) {
			rendered = true
			return render(c, store, key, opts.TTL), nil
		})
		if rendered {
			event(EventMiss)
			return
		}

		page := v.(*cachedPage)
		if page.Status != http.StatusOK {
			c.Next()
			return
		}
		event(EventShared)
		serve(c, page)
	}
}

// render runs the rest of the chain, capturing and storing its output.
func render(c *gin.Context, store PageCache, key string, ttl time.Duration) *cachedPage {
	rec := &bodyRecorder{ResponseWriter: c.Writer}
	c.Writer = rec
	c.Header(HeaderCache, "MISS")

	c.Next()
	c.Writer = rec.ResponseWriter

	page := &cachedPage{
		Status:      rec.Status(),
		ContentType: rec.Header().Get("Content-Type"),
		Body:        rec.body.Bytes(),
	}

	if page.Status != http.StatusOK || rec.Header().Get("Set-Cookie") != "" {
		return page
	}

	data, err := json.Marshal(page)
	if err != nil {
		return page
	}

	// Store even if the client has disconnected.
	ctx := context.WithoutCancel(c.Request.Context())
	if err := store.Set(ctx, key, data, ttl); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldCacheKey, key).Msg("failed to store page")
	}
	return page
}

func serve(c *gin.Context, page *cachedPage) {
	c.Header(HeaderCache, "HIT")
	c.Data(page.Status, page.ContentType, page.Body)
	c.Abort()
}
