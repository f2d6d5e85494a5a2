package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithStr(ctx, FieldUsername, "leo")

	logger := Ctx(ctx)
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "leo", entry[FieldUsername])
	assert.Equal(t, "hello", entry["message"])

	assert.NotPanics(t, func() {
		global := Ctx(context.Background())
		global.Debug().Msg("global")
	})
}

func TestGinMiddlewareRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Output: &buf, ServiceName: "yatube"})))
	r.GET("/ping", func(c *gin.Context) {
		c.Set(FieldUsername, "leo")
		c.String(http.StatusOK, "pong")
	})

	t.Run("generates id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "request completed", entry["message"])
		assert.Equal(t, "yatube", entry[FieldService])
		assert.Equal(t, "leo", entry[FieldUsername])
		assert.EqualValues(t, http.StatusOK, entry[FieldStatus])
	})

	t.Run("propagates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Level: "debug", Output: &buf}), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/", func(c *gin.Context) {
		c.Header("X-Cache", "HIT")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.POST("/new/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/") })

	cases := []struct {
		method, path, level string
	}{
		{http.MethodGet, "/health", "debug"},
		{http.MethodGet, "/", "info"},
		{http.MethodGet, "/missing", "warn"},
		{http.MethodGet, "/boom", "error"},
		{http.MethodPost, "/new/", "info"},
	}
	for _, tc := range cases {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), tc.path)
		assert.Equal(t, tc.level, entry["level"], tc.path)

		switch tc.path {
		case "/":
			assert.Equal(t, "HIT", entry[FieldCache])
		case "/new/":
			assert.Equal(t, "/", entry[FieldRedirect])
		}
	}
}
