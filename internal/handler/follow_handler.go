package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gorstka/Yatube/internal/service"
	"github.com/Gorstka/Yatube/pkg/middleware"
	"github.com/Gorstka/Yatube/pkg/response"
)

// ProfileFollow subscribes the caller to an author. Following yourself is
// ignored.
func (h *Handler) ProfileFollow(c *gin.Context) {
	username := c.Param("username")

	err := h.followService.Follow(c.Request.Context(), middleware.GetUserID(c), username)
	switch {
	case err == nil, errors.Is(err, service.ErrSelfFollow):
		c.Redirect(http.StatusFound, profileURL(username))
	case errors.Is(err, service.ErrAccountNotFound):
		h.sessionGone(c)
	case errors.Is(err, service.ErrUserNotFound):
		NotFound(c)
	default:
		response.InternalError(c, "failed to follow author")
	}
}

// ProfileUnfollow removes the caller's subscription to an author.
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	username := c.Param("username")

	err := h.followService.Unfollow(c.Request.Context(), middleware.GetUserID(c), username)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, profileURL(username))
	case errors.Is(err, service.ErrAccountNotFound):
		h.sessionGone(c)
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotFollowing):
		NotFound(c)
	default:
		response.InternalError(c, "failed to unfollow author")
	}
}
