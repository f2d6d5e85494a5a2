package service

import (
	"context"
	"errors"

	"github.com/Gorstka/Yatube/internal/audit"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/repository"
	"github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/pubsub"
)

// followServiceImpl implements FollowService interface.
type followServiceImpl struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	events  *EventPublisher
}

// NewFollowService creates a new follow service.
func NewFollowService(users repository.UserRepository, follows repository.FollowRepository, events *EventPublisher) FollowService {
	return &followServiceImpl{
		users:   users,
		follows: follows,
		events:  events,
	}
}

// Follow subscribes userID to the author.
func (s *followServiceImpl) Follow(ctx context.Context, userID uint, authorUsername string) error {
	l := log.Ctx(ctx)

	follower, err := loadAccount(ctx, s.users, userID)
	if err != nil {
		return err
	}
	author, err := s.author(ctx, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return ErrSelfFollow
	}

	if err := s.follows.Follow(ctx, userID, author.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return nil
		}
		l.Error().Err(err).
			Uint(log.FieldUserID, userID).
			Str(log.FieldAuthor, authorUsername).
			Msg("failed to follow author")
		return err
	}

	audit.LogTarget(ctx, audit.ActionFollow, userID, author.ID, "followed author")
	s.publish(ctx, pubsub.EventFollowCreated, follower, author)
	return nil
}

// Unfollow removes the subscription of userID to the author.
func (s *followServiceImpl) Unfollow(ctx context.Context, userID uint, authorUsername string) error {
	l := log.Ctx(ctx)

	follower, err := loadAccount(ctx, s.users, userID)
	if err != nil {
		return err
	}
	author, err := s.author(ctx, authorUsername)
	if err != nil {
		return err
	}

	if err := s.follows.Unfollow(ctx, userID, author.ID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return ErrNotFollowing
		}
		l.Error().Err(err).
			Uint(log.FieldUserID, userID).
			Str(log.FieldAuthor, authorUsername).
			Msg("failed to unfollow author")
		return err
	}

	audit.LogTarget(ctx, audit.ActionUnfollow, userID, author.ID, "unfollowed author")
	s.publish(ctx, pubsub.EventFollowDeleted, follower, author)
	return nil
}

// IsFollowing reports whether userID follows authorID.
func (s *followServiceImpl) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.follows.IsFollowing(ctx, userID, authorID)
}

func (s *followServiceImpl) author(ctx context.Context, username string) (*domain.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldAuthor, username).Msg("failed to get author")
		return nil, err
	}
	return author, nil
}

func (s *followServiceImpl) publish(ctx context.Context, eventType string, follower, author *domain.User) {
	s.events.publish(ctx, eventType, author.Username, pubsub.FollowPayload{
		User:   follower.Username,
		Author: author.Username,
	})
}

var _ FollowService = (*followServiceImpl)(nil)
