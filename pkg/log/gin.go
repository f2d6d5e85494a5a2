package log

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerRequestID = "X-Request-ID"
	headerCache     = "X-Cache"
)

// GinMiddleware tags each request with an X-Request-ID (read or generated),
// puts a request-scoped logger into the context and logs the outcome.
//
// Server errors log at error level and client errors at warn. Requests whose
// path starts with one of quietPrefixes (health probes, metrics scrapes,
// media files) log at debug so they do not drown the feed traffic.
func GinMiddleware(logger zerolog.Logger, quietPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path).
			Str(FieldClientIP, c.ClientIP()).
			Logger()

		c.Header(headerRequestID, reqID)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), child))

		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = child.Error()
		case status >= http.StatusBadRequest:
			evt = child.Warn()
		case hasPrefix(c.Request.URL.Path, quietPrefixes):
			evt = child.Debug()
		default:
			evt = child.Info()
		}

		evt = evt.
			Str(FieldRoute, c.FullPath()).
			Int(FieldStatus, status).
			Float64(FieldLatency, float64(time.Since(start).Microseconds())/1000)

		if cache := c.Writer.Header().Get(headerCache); cache != "" {
			evt = evt.Str(FieldCache, cache)
		}
		if loc := c.Writer.Header().Get("Location"); loc != "" && status >= 300 && status < 400 {
			evt = evt.Str(FieldRedirect, loc)
		}
		// Actor info is set by the auth middleware further down the chain.
		if userID, ok := c.Get(FieldUserID); ok {
			evt = evt.Str(FieldUserID, fmt.Sprint(userID))
		}
		if username, ok := c.Get(FieldUsername); ok {
			evt = evt.Str(FieldUsername, fmt.Sprint(username))
		}

		evt.Msg("request completed")
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
