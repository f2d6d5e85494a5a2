package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/service"
	"github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/middleware"
	"github.com/Gorstka/Yatube/pkg/response"
)

// ImageURLs resolves stored image keys to URLs for one request.
type ImageURLs interface {
	Resolver(ctx context.Context) domain.ImageResolver
}

// Handler handles HTTP requests for the site.
type Handler struct {
	postService    service.PostService
	groupService   service.GroupService
	followService  service.FollowService
	userService    service.UserService
	authMiddleware *middleware.AuthMiddleware
	images         ImageURLs
}

// NewHandler creates a new HTTP handler. images may be nil.
func NewHandler(
	postService service.PostService,
	groupService service.GroupService,
	followService service.FollowService,
	userService service.UserService,
	authMiddleware *middleware.AuthMiddleware,
	images ImageURLs,
) *Handler {
	return &Handler{
		postService:    postService,
		groupService:   groupService,
		followService:  followService,
		userService:    userService,
		authMiddleware: authMiddleware,
		images:         images,
	}
}

// RegisterRoutes registers all routes. indexCache wraps the main feed and
// may be nil.
func (h *Handler) RegisterRoutes(r *gin.Engine, indexCache gin.HandlerFunc) {
	index := []gin.HandlerFunc{h.Index}
	if indexCache != nil {
		index = append([]gin.HandlerFunc{indexCache}, index...)
	}
	r.GET("/", index...)

	// Public routes
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/about/author/", h.AboutAuthor)
	r.GET("/about/tech/", h.AboutTech)

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", h.SignupForm)
		auth.POST("/signup/", h.Signup)
		auth.GET("/login/", h.LoginForm)
		auth.POST("/login/", h.Login)
		auth.GET("/logout/", h.Logout)
		auth.POST("/logout/", h.Logout)
	}

	// Protected routes
	requireAuth := h.authMiddleware.RequireAuth()
	r.GET("/new/", requireAuth, h.NewPostForm)
	r.POST("/new/", requireAuth, h.NewPost)
	r.GET("/follow/", requireAuth, h.FollowIndex)

	r.GET("/:username/", h.Profile)
	r.GET("/:username/:post_id/", h.PostView)
	r.GET("/:username/:post_id/edit/", requireAuth, h.EditPostForm)
	r.POST("/:username/:post_id/edit/", requireAuth, h.EditPost)
	r.POST("/:username/:post_id/comment/", requireAuth, h.AddComment)
	r.POST("/:username/follow/", requireAuth, h.ProfileFollow)
	r.POST("/:username/unfollow/", requireAuth, h.ProfileUnfollow)
}

// NotFound renders the 404 envelope carrying the requested path.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, response.Response{
		Success: false,
		Data:    gin.H{"path": c.Request.URL.Path},
		Error: &response.ErrorInfo{
			Code:    "NOT_FOUND",
			Message: "page not found",
		},
	})
}

// MethodNotAllowed renders the 405 envelope.
func MethodNotAllowed(c *gin.Context) {
	response.MethodNotAllowed(c, "method "+c.Request.Method+" is not allowed")
}

// Recovery turns panics into the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		l := log.Ctx(c.Request.Context())
		l.Error().Interface("panic", recovered).Msg("request panicked")
		response.InternalError(c, "internal server error")
	})
}

// postID parses the :post_id path parameter.
func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) resolver(ctx context.Context) domain.ImageResolver {
	if h.images == nil {
		return nil
	}
	return h.images.Resolver(ctx)
}

// respondValidation writes the 400 envelope when err carries form errors.
func respondValidation(c *gin.Context, err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		response.ValidationError(c, verr.Fields)
		return true
	}
	return false
}

// sessionGone expires a session whose user was deleted and sends the caller
// to the login page.
func (h *Handler) sessionGone(c *gin.Context) {
	l := log.Ctx(c.Request.Context())
	l.Info().Uint(log.FieldUserID, middleware.GetUserID(c)).Msg("session belongs to a deleted account")
	h.authMiddleware.EndSession(c)
	c.Redirect(http.StatusFound, middleware.LoginRedirectURL(h.authMiddleware.LoginURL(), c.Request.URL.RequestURI()))
}

func profileURL(username string) string {
	return "/" + username + "/"
}

func postURL(username string, id uint) string {
	return "/" + username + "/" + strconv.FormatUint(uint64(id), 10) + "/"
}
