package repository

import (
	"context"
	"errors"

	"github.com/Gorstka/Yatube/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrGroupNotFound    = errors.New("group not found")
	ErrSlugExists       = errors.New("group slug already exists")
	ErrPostNotFound     = errors.New("post not found")
	ErrFollowNotFound   = errors.New("follow relationship not found")
	ErrAlreadyFollowing = errors.New("already following")
)

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Delete removes the user with their posts, comments and follow edges.
	// It returns the image keys of the removed posts.
	Delete(ctx context.Context, id uint) ([]string, error)
}

// GroupRepository defines the interface for group persistence.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uint) (*domain.Group, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]*domain.Group, error)
	// Delete removes the group and detaches its posts.
	Delete(ctx context.Context, slug string) error
}

// PostFilter narrows a feed query. Zero fields are ignored.
type PostFilter struct {
	GroupID    uint
	AuthorID   uint
	FollowerID uint // posts by authors this user follows
}

// PostRepository defines the interface for post persistence. Lists are
// ordered newest first.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	BulkCreate(ctx context.Context, posts []*domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	GetByAuthor(ctx context.Context, username string, id uint) (*domain.Post, error)
	// Update writes text, group and image. The publish date is immutable.
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context, filter PostFilter) (int64, error)
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]*domain.Post, error)
}

// CommentRepository defines the interface for comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*domain.Comment, error)
}

// FollowRepository defines persistence operations for follow relationships.
type FollowRepository interface {
	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// Repositories bundles every repository the services need.
type Repositories struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository
}
