package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/paginator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrNotPostAuthor      = errors.New("only the author can edit this post")
	ErrSelfFollow         = errors.New("users cannot follow themselves")
	ErrNotFollowing       = errors.New("not following this author")
	ErrSlugExists         = errors.New("group slug already exists")

	// ErrAccountNotFound means the acting user, taken from a still valid
	// session, has been deleted.
	ErrAccountNotFound = errors.New("account no longer exists")
)

// PostPage is one page of a post feed.
type PostPage = paginator.Page[*domain.Post]

// GroupFeed is a group with one page of its posts.
type GroupFeed struct {
	Group *domain.Group
	Page  PostPage
}

// ProfileView is an author's page as seen by a particular viewer.
type ProfileView struct {
	Author         *domain.User
	Page           PostPage
	Following      bool
	FollowersCount int64
	FollowingCount int64
}

// PostView is a single post with its author's post count and comments.
type PostView struct {
	Post            *domain.Post
	AuthorPostCount int64
	Comments        []*domain.Comment
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// ImageStore persists uploaded post images.
type ImageStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, key string) error
}

// PostService defines feed assembly and post authoring.
type PostService interface {
	Index(ctx context.Context, page string) (PostPage, error)
	GroupPosts(ctx context.Context, slug, page string) (*GroupFeed, error)
	Profile(ctx context.Context, username string, viewerID uint, page string) (*ProfileView, error)
	PostView(ctx context.Context, username string, postID uint) (*PostView, error)
	FollowIndex(ctx context.Context, userID uint, page string) (PostPage, error)
	CreatePost(ctx context.Context, authorID uint, form *domain.PostForm) (*domain.Post, error)
	// GetPostForEdit returns ErrNotPostAuthor when userID did not write the post.
	GetPostForEdit(ctx context.Context, username string, postID, userID uint) (*domain.Post, error)
	EditPost(ctx context.Context, username string, postID, userID uint, form *domain.PostForm) (*domain.Post, error)
	AddComment(ctx context.Context, username string, postID, userID uint, form *domain.CommentForm) (*domain.Comment, error)
	BulkCreate(ctx context.Context, posts []*domain.Post) error
	DeletePost(ctx context.Context, postID uint) error
}

// GroupService defines group management.
type GroupService interface {
	CreateGroup(ctx context.Context, req *domain.CreateGroupRequest) (*domain.Group, error)
	GetGroup(ctx context.Context, slug string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)
	DeleteGroup(ctx context.Context, slug string) error
}

// FollowService defines follow graph mutation.
type FollowService interface {
	// Follow is a no-op when the edge already exists.
	Follow(ctx context.Context, userID uint, authorUsername string) error
	Unfollow(ctx context.Context, userID uint, authorUsername string) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
}

// UserService defines accounts and sessions.
type UserService interface {
	Signup(ctx context.Context, form *domain.SignupForm) (*domain.User, error)
	Login(ctx context.Context, form *domain.LoginForm) (*Session, error)
	Logout(ctx context.Context, userID uint)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	DeleteUser(ctx context.Context, username string) error
}
