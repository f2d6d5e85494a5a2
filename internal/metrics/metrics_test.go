package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware("/metrics"))
	r.GET("/:username/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	for _, path := range []string{"/leo/", "/anna/", "/nobody/x/y"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HttpRequestsTotal.WithLabelValues("/:username/", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HttpRequestsTotal.WithLabelValues("unmatched", "GET", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

func TestCacheAndEventCounters(t *testing.T) {
	m := New()
	m.CacheEvent("hit")
	m.CacheEvent("hit")
	m.CacheEvent("miss")
	m.EventPublished("post.created", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PageCacheEvents.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageCacheEvents.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DomainEvents.WithLabelValues("post.created", "ok")))
}

func TestNewIsIsolated(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
