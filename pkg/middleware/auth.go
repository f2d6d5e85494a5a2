package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gorstka/Yatube/pkg/jwt"
	"github.com/Gorstka/Yatube/pkg/log"
)

const (
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionConfig configures the session cookie and the login redirect.
type SessionConfig struct {
	CookieName string
	Secure     bool
	LoginURL   string
}

// AuthMiddleware resolves the current user from a signed session token.
type AuthMiddleware struct {
	tokens *jwt.Manager
	cfg    SessionConfig
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager, cfg SessionConfig) *AuthMiddleware {
	if cfg.CookieName == "" {
		cfg.CookieName = "sessionid"
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/auth/login/"
	}
	return &AuthMiddleware{tokens: tokens, cfg: cfg}
}

// Authenticate returns a Gin middleware that identifies the caller when a
// valid session cookie or bearer token is present. Anonymous requests pass
// through untouched.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			l := log.Ctx(c.Request.Context())
			l.Debug().Err(err).Msg("ignoring invalid session token")
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Request = c.Request.WithContext(
			log.WithStr(c.Request.Context(), log.FieldUsername, claims.Username),
		)

		c.Next()
	}
}

// RequireAuth returns a Gin middleware that redirects anonymous callers to
// the login page, carrying the requested path in the next parameter.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.Redirect(http.StatusFound, LoginRedirectURL(m.cfg.LoginURL, c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StartSession stores the token in the session cookie.
func (m *AuthMiddleware) StartSession(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, token, maxAge, "/", "", m.cfg.Secure, true)
}

// EndSession expires the session cookie.
func (m *AuthMiddleware) EndSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", "", m.cfg.Secure, true)
}

// LoginURL returns the configured login page path.
func (m *AuthMiddleware) LoginURL() string {
	return m.cfg.LoginURL
}

func (m *AuthMiddleware) tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimPrefix(header, BearerPrefix)
	}
	if cookie, err := c.Cookie(m.cfg.CookieName); err == nil {
		return cookie
	}
	return ""
}

// LoginRedirectURL builds "<loginURL>?next=<next>" keeping slashes readable.
func LoginRedirectURL(loginURL, next string) string {
	q := strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + q
}

// SafeNext returns next when it is a local absolute path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}

// GetUserID extracts the authenticated user ID from Gin context, 0 if anonymous.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(UserIDKey); exists {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

// GetUsername extracts the authenticated username from Gin context.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(UsernameKey); exists {
		if v, ok := username.(string); ok {
			return v
		}
	}
	return ""
}
