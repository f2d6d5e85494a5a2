package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Gorstka/Yatube/internal/metrics"
	"github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/response"
)

// RouterOptions holds the cross-cutting pieces of the HTTP stack.
type RouterOptions struct {
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics // nil disables /metrics
	MetricsPath string
	IndexCache  gin.HandlerFunc
	// MediaRoot, when set, is served under MediaURL.
	MediaRoot string
	MediaURL  string
}

// NewRouter builds the gin engine with middleware, site routes, health,
// metrics and media.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	quiet := []string{"/health", opts.MetricsPath}
	if opts.MediaRoot != "" {
		quiet = append(quiet, opts.MediaURL)
	}
	r.Use(log.GinMiddleware(opts.Logger, quiet...))
	r.Use(Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware("/health", opts.MetricsPath))
		r.GET(opts.MetricsPath, opts.Metrics.Handler())
	}
	r.Use(h.authMiddleware.Authenticate())

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	if opts.MediaRoot != "" && opts.MediaURL != "" {
		r.Static(opts.MediaURL, opts.MediaRoot)
	}

	h.RegisterRoutes(r, opts.IndexCache)
	r.NoRoute(NotFound)
	r.NoMethod(MethodNotAllowed)
	return r
}
