package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Gorstka/Yatube/internal/audit"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/media"
	"github.com/Gorstka/Yatube/internal/paginator"
	"github.com/Gorstka/Yatube/internal/repository"
	"github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/pubsub"
)

// postServiceImpl implements PostService interface.
type postServiceImpl struct {
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	images   ImageStore
	events   *EventPublisher
	perPage  int
}

// NewPostService creates a new post service. images may be nil when
// uploads are disabled; perPage <= 0 selects paginator.DefaultPerPage.
func NewPostService(repos repository.Repositories, images ImageStore, events *EventPublisher, perPage int) PostService {
	if perPage <= 0 {
		perPage = paginator.DefaultPerPage
	}
	return &postServiceImpl{
		users:    repos.Users,
		groups:   repos.Groups,
		posts:    repos.Posts,
		comments: repos.Comments,
		follows:  repos.Follows,
		images:   images,
		events:   events,
		perPage:  perPage,
	}
}

func (s *postServiceImpl) feed(ctx context.Context, filter repository.PostFilter, page string) (PostPage, error) {
	count, err := s.posts.Count(ctx, filter)
	if err != nil {
		return PostPage{}, err
	}

	w := paginator.Resolve(count, s.perPage, page)
	var items []*domain.Post
	if w.Limit > 0 {
		items, err = s.posts.List(ctx, filter, w.Offset, w.Limit)
		if err != nil {
			return PostPage{}, err
		}
	}
	return paginator.NewPage(w, items), nil
}

// Index returns the site-wide feed.
func (s *postServiceImpl) Index(ctx context.Context, page string) (PostPage, error) {
	p, err := s.feed(ctx, repository.PostFilter{}, page)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load index feed")
		return PostPage{}, err
	}
	return p, nil
}

// GroupPosts returns the feed of a single group.
func (s *postServiceImpl) GroupPosts(ctx context.Context, slug, page string) (*GroupFeed, error) {
	l := log.Ctx(ctx)

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		l.Error().Err(err).Str(log.FieldGroupSlug, slug).Msg("failed to get group")
		return nil, err
	}

	p, err := s.feed(ctx, repository.PostFilter{GroupID: group.ID}, page)
	if err != nil {
		l.Error().Err(err).Str(log.FieldGroupSlug, slug).Msg("failed to load group feed")
		return nil, err
	}
	return &GroupFeed{Group: group, Page: p}, nil
}

// Profile returns an author's posts and follow counters. Following is only
// set for an authenticated viewer (viewerID != 0).
func (s *postServiceImpl) Profile(ctx context.Context, username string, viewerID uint, page string) (*ProfileView, error) {
	l := log.Ctx(ctx)

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l.Error().Err(err).Str(log.FieldAuthor, username).Msg("failed to get author")
		return nil, err
	}

	view := &ProfileView{Author: author}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.feed(gctx, repository.PostFilter{AuthorID: author.ID}, page)
		view.Page = p
		return err
	})
	g.Go(func() error {
		n, err := s.follows.CountFollowers(gctx, author.ID)
		view.FollowersCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.follows.CountFollowing(gctx, author.ID)
		view.FollowingCount = n
		return err
	})
	if viewerID != 0 && viewerID != author.ID {
		g.Go(func() error {
			ok, err := s.follows.IsFollowing(gctx, viewerID, author.ID)
			view.Following = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Str(log.FieldAuthor, username).Msg("failed to load profile")
		return nil, err
	}
	return view, nil
}

// PostView returns a post addressed by its author's username.
func (s *postServiceImpl) PostView(ctx context.Context, username string, postID uint) (*PostView, error) {
	l := log.Ctx(ctx)

	post, err := s.getByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}

	view := &PostView{Post: post}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.posts.Count(gctx, repository.PostFilter{AuthorID: post.AuthorID})
		view.AuthorPostCount = n
		return err
	})
	g.Go(func() error {
		comments, err := s.comments.ListByPost(gctx, post.ID)
		view.Comments = comments
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to load post view")
		return nil, err
	}
	if view.Comments == nil {
		view.Comments = []*domain.Comment{}
	}
	return view, nil
}

// FollowIndex returns posts by the authors userID follows.
func (s *postServiceImpl) FollowIndex(ctx context.Context, userID uint, page string) (PostPage, error) {
	p, err := s.feed(ctx, repository.PostFilter{FollowerID: userID}, page)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load follow feed")
		return PostPage{}, err
	}
	return p, nil
}

// CreatePost validates form, stores the optional image and publishes the post.
func (s *postServiceImpl) CreatePost(ctx context.Context, authorID uint, form *domain.PostForm) (*domain.Post, error) {
	l := log.Ctx(ctx)

	if _, err := s.account(ctx, authorID); err != nil {
		return nil, err
	}
	if err := s.validatePostForm(ctx, form); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Text:     form.Text,
		AuthorID: authorID,
		GroupID:  form.GroupID(),
	}
	key, err := s.saveImage(ctx, form)
	if err != nil {
		return nil, err
	}
	post.Image = key

	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Msg("failed to create post")
		s.dropImage(ctx, key)
		return nil, err
	}

	created, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldPostID, post.ID).Msg("failed to reload post")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionCreatePost, authorID, post.ID, "post created")
	s.publishPost(ctx, pubsub.EventPostCreated, created)
	return created, nil
}

// GetPostForEdit loads a post for its author.
func (s *postServiceImpl) GetPostForEdit(ctx context.Context, username string, postID, userID uint) (*domain.Post, error) {
	post, err := s.getByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(userID) {
		audit.LogTarget(ctx, audit.ActionEditDenied, userID, post.ID, "edit denied: not the author")
		return nil, ErrNotPostAuthor
	}
	return post, nil
}

// EditPost replaces text, group and, when a new file is uploaded, the image.
// PubDate and author are never touched.
func (s *postServiceImpl) EditPost(ctx context.Context, username string, postID, userID uint, form *domain.PostForm) (*domain.Post, error) {
	l := log.Ctx(ctx)

	post, err := s.GetPostForEdit(ctx, username, postID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePostForm(ctx, form); err != nil {
		return nil, err
	}

	key, err := s.saveImage(ctx, form)
	if err != nil {
		return nil, err
	}
	oldImage := post.Image
	post.Text = form.Text
	post.GroupID = form.GroupID()
	if key != "" {
		post.Image = key
	}

	if err := s.posts.Update(ctx, post); err != nil {
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to update post")
		s.dropImage(ctx, key)
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if key != "" && oldImage != "" {
		s.dropImage(ctx, oldImage)
	}

	// Reload so the group association matches the new group id.
	updated, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to reload post")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionEditPost, userID, post.ID, "post edited")
	s.publishPost(ctx, pubsub.EventPostUpdated, updated)
	return updated, nil
}

// AddComment attaches a comment by userID to the addressed post.
func (s *postServiceImpl) AddComment(ctx context.Context, username string, postID, userID uint, form *domain.CommentForm) (*domain.Comment, error) {
	l := log.Ctx(ctx)

	post, err := s.getByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	commenter, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Author:   commenter,
		Text:     form.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to create comment")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionCreateComment, userID, post.ID, "comment added")
	s.events.publish(ctx, pubsub.EventCommentCreated, username, pubsub.CommentPayload{
		CommentID: comment.ID,
		PostID:    post.ID,
		Author:    commenter.Username,
	})
	return comment, nil
}

// BulkCreate inserts many posts at once. Used for seeding.
func (s *postServiceImpl) BulkCreate(ctx context.Context, posts []*domain.Post) error {
	if err := s.posts.BulkCreate(ctx, posts); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Int("count", len(posts)).Msg("failed to bulk create posts")
		return err
	}
	return nil
}

// DeletePost removes a post, its comments and its image.
func (s *postServiceImpl) DeletePost(ctx context.Context, postID uint) error {
	l := log.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to delete post")
		return err
	}
	s.dropImage(ctx, post.Image)

	audit.LogTarget(ctx, audit.ActionDeletePost, post.AuthorID, postID, "post deleted")
	return nil
}

func (s *postServiceImpl) getByAuthor(ctx context.Context, username string, postID uint) (*domain.Post, error) {
	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Uint(log.FieldPostID, postID).Msg("failed to get post")
		return nil, err
	}
	return post, nil
}

// validatePostForm runs the form checks and resolves the selected group.
func (s *postServiceImpl) validatePostForm(ctx context.Context, form *domain.PostForm) error {
	errs := domain.FieldErrors{}
	if err := form.Validate(); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for field, msg := range verr.Fields {
			errs.Add(field, msg)
		}
	}

	if form.Group != 0 {
		if _, err := s.groups.GetByID(ctx, form.Group); err != nil {
			if !errors.Is(err, repository.ErrGroupNotFound) {
				return err
			}
			errs.Add("group", domain.MsgInvalidChoice)
		}
	}
	if form.Image != nil && s.images == nil {
		errs.Add("image", domain.MsgInvalidImage)
	}
	return errs.Err()
}

func (s *postServiceImpl) saveImage(ctx context.Context, form *domain.PostForm) (string, error) {
	if form.Image == nil || s.images == nil {
		return "", nil
	}
	key, err := s.images.Save(ctx, form.Image)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, media.ErrImageTooLarge) {
			errs := domain.FieldErrors{}
			errs.Add("image", domain.MsgInvalidImage)
			return "", errs.Err()
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to store image")
		return "", err
	}
	return key, nil
}

func (s *postServiceImpl) dropImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("image", key).Msg("failed to delete image")
	}
}

func (s *postServiceImpl) publishPost(ctx context.Context, eventType string, post *domain.Post) {
	payload := pubsub.PostPayload{
		PostID:   post.ID,
		HasImage: post.Image != "",
	}
	if post.Author != nil {
		payload.Author = post.Author.Username
	}
	if post.Group != nil {
		payload.GroupSlug = post.Group.Slug
	}
	s.events.publish(ctx, eventType, payload.Author, payload)
}

// account loads the acting user.
func (s *postServiceImpl) account(ctx context.Context, userID uint) (*domain.User, error) {
	return loadAccount(ctx, s.users, userID)
}

var _ PostService = (*postServiceImpl)(nil)
