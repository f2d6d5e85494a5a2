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

// Index handles the main feed. The body must not depend on the viewer: it
// is shared through the page cache.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := h.postService.Index(ctx, c.Query("page"))
	if err != nil {
		response.InternalError(c, "failed to load posts")
		return
	}

	response.Success(c, FeedResponse{Page: renderPosts(page, h.resolver(ctx))})
}

// GroupPosts handles a group page.
func (h *Handler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()

	feed, err := h.postService.GroupPosts(ctx, c.Param("slug"), c.Query("page"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			NotFound(c)
			return
		}
		response.InternalError(c, "failed to load group")
		return
	}

	response.Success(c, GroupFeedResponse{
		Group: feed.Group.ToResponse(),
		Page:  renderPosts(feed.Page, h.resolver(ctx)),
	})
}

// Profile handles an author page.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	view, err := h.postService.Profile(ctx, c.Param("username"), middleware.GetUserID(c), c.Query("page"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c)
			return
		}
		response.InternalError(c, "failed to load profile")
		return
	}

	response.Success(c, ProfileResponse{
		Author:         view.Author.ToResponse(),
		PostsCount:     view.Page.Count,
		FollowersCount: view.FollowersCount,
		FollowingCount: view.FollowingCount,
		Following:      view.Following,
		Page:           renderPosts(view.Page, h.resolver(ctx)),
	})
}

// PostView handles a single post page.
func (h *Handler) PostView(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	id, ok := postID(c)
	if !ok {
		NotFound(c)
		return
	}

	view, err := h.postService.PostView(ctx, username, id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			NotFound(c)
			return
		}
		response.InternalError(c, "failed to load post")
		return
	}

	userID := middleware.GetUserID(c)
	resp := PostViewResponse{
		Post:       view.Post.ToResponse(h.resolver(ctx)),
		PostsCount: view.AuthorPostCount,
		Comments:   renderComments(view.Comments),
		CanEdit:    view.Post.IsAuthor(userID),
	}
	if userID != 0 {
		form := commentFormDescriptor(postURL(username, id) + "comment/")
		resp.CommentForm = &form
	}
	response.Success(c, resp)
}

// FollowIndex handles the feed of followed authors.
func (h *Handler) FollowIndex(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := h.postService.FollowIndex(ctx, middleware.GetUserID(c), c.Query("page"))
	if err != nil {
		response.InternalError(c, "failed to load posts")
		return
	}

	response.Success(c, FeedResponse{Page: renderPosts(page, h.resolver(ctx))})
}

// NewPostForm describes the create post form.
func (h *Handler) NewPostForm(c *gin.Context) {
	groups, err := h.groupService.ListGroups(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to load groups")
		return
	}
	response.Success(c, postFormDescriptor("/new/", groups, nil))
}

// NewPost creates a post and redirects to the main feed.
func (h *Handler) NewPost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	form, err := bindPostForm(c)
	if err != nil {
		l.Warn().Err(err).Msg("invalid new post request")
		if !respondValidation(c, err) {
			response.BadRequest(c, "malformed post form")
		}
		return
	}

	if _, err := h.postService.CreatePost(ctx, middleware.GetUserID(c), form); err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			h.sessionGone(c)
		case respondValidation(c, err):
		default:
			response.InternalError(c, "failed to create post")
		}
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// EditPostForm describes the edit form filled with the current post.
// Non-authors are sent to the post page.
func (h *Handler) EditPostForm(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	id, ok := postID(c)
	if !ok {
		NotFound(c)
		return
	}

	post, err := h.postService.GetPostForEdit(ctx, username, id, middleware.GetUserID(c))
	if err != nil {
		h.editError(c, err, username, id)
		return
	}

	groups, err := h.groupService.ListGroups(ctx)
	if err != nil {
		response.InternalError(c, "failed to load groups")
		return
	}
	response.Success(c, postFormDescriptor(postURL(username, id)+"edit/", groups, post))
}

// EditPost updates a post and redirects to its page.
func (h *Handler) EditPost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	username := c.Param("username")

	id, ok := postID(c)
	if !ok {
		NotFound(c)
		return
	}

	userID := middleware.GetUserID(c)
	if _, err := h.postService.GetPostForEdit(ctx, username, id, userID); err != nil {
		h.editError(c, err, username, id)
		return
	}

	form, err := bindPostForm(c)
	if err != nil {
		l.Warn().Err(err).Msg("invalid edit post request")
		if !respondValidation(c, err) {
			response.BadRequest(c, "malformed post form")
		}
		return
	}

	if _, err := h.postService.EditPost(ctx, username, id, userID, form); err != nil {
		h.editError(c, err, username, id)
		return
	}

	c.Redirect(http.StatusFound, postURL(username, id))
}

func (h *Handler) editError(c *gin.Context, err error, username string, id uint) {
	switch {
	case errors.Is(err, service.ErrNotPostAuthor):
		c.Redirect(http.StatusFound, postURL(username, id))
	case errors.Is(err, service.ErrPostNotFound):
		NotFound(c)
	case respondValidation(c, err):
	default:
		response.InternalError(c, "failed to edit post")
	}
}

// AddComment adds a comment and redirects to the post page.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	username := c.Param("username")

	id, ok := postID(c)
	if !ok {
		NotFound(c)
		return
	}

	var form domain.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		l.Warn().Err(err).Msg("invalid comment request")
		response.BadRequest(c, "malformed comment form")
		return
	}

	if _, err := h.postService.AddComment(ctx, username, id, middleware.GetUserID(c), &form); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			NotFound(c)
		case errors.Is(err, service.ErrAccountNotFound):
			h.sessionGone(c)
		case respondValidation(c, err):
		default:
			response.InternalError(c, "failed to add comment")
		}
		return
	}

	c.Redirect(http.StatusFound, postURL(username, id))
}
