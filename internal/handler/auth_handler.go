package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/service"
	"github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/middleware"
	"github.com/Gorstka/Yatube/pkg/response"
)

// SignupForm describes the registration form.
func (h *Handler) SignupForm(c *gin.Context) {
	response.Success(c, signupFormDescriptor())
}

// Signup registers a user and sends them to the login page.
func (h *Handler) Signup(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var form domain.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		l.Warn().Err(err).Msg("invalid signup request")
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.userService.Signup(ctx, &form); err != nil {
		if respondValidation(c, err) {
			return
		}
		response.InternalError(c, "failed to sign up")
		return
	}

	c.Redirect(http.StatusFound, h.authMiddleware.LoginURL())
}

// LoginForm describes the login form.
func (h *Handler) LoginForm(c *gin.Context) {
	response.Success(c, loginFormDescriptor(middleware.SafeNext(c.Query("next"), "")))
}

// Login starts a session and redirects to next or the main feed.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var form domain.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}

	session, err := h.userService.Login(ctx, &form)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.ValidationError(c, map[string]string{"__all__": domain.MsgBadLogin})
			return
		}
		if respondValidation(c, err) {
			return
		}
		response.InternalError(c, "failed to login")
		return
	}

	h.authMiddleware.StartSession(c, session.Token, session.ExpiresAt)
	c.Redirect(http.StatusFound, middleware.SafeNext(form.Next, "/"))
}

// Logout ends the session.
func (h *Handler) Logout(c *gin.Context) {
	h.userService.Logout(c.Request.Context(), middleware.GetUserID(c))
	h.authMiddleware.EndSession(c)
	response.Success(c, gin.H{"logged_out": true})
}
