package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gorstka/Yatube/internal/audit"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/repository"
	"github.com/Gorstka/Yatube/pkg/jwt"
	"github.com/Gorstka/Yatube/pkg/log"
)

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo       repository.UserRepository
	images     ImageStore
	tokens     *jwt.Manager
	bcryptCost int
}

// NewUserService creates a new user service. A bcryptCost below
// bcrypt.MinCost selects bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, images ImageStore, tokens *jwt.Manager, bcryptCost int) UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userServiceImpl{
		repo:       repo,
		images:     images,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a new user.
func (s *userServiceImpl) Signup(ctx context.Context, form *domain.SignupForm) (*domain.User, error) {
	l := log.Ctx(ctx)

	if err := form.Validate(); err != nil {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.bcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			errs := domain.FieldErrors{}
			errs.Add("username", domain.MsgUsernameTaken)
			return nil, errs.Err()
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignup, user.ID, "user signed up")
	return user, nil
}

// Login authenticates a user and issues a session token.
func (s *userServiceImpl) Login(ctx context.Context, form *domain.LoginForm) (*Session, error) {
	l := log.Ctx(ctx)

	if err := form.Validate(); err != nil {
		return nil, err
	}

	// Find user
	user, err := s.repo.GetByUsername(ctx, form.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, 0, form.Username, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by username")
		return nil, err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, form.Username, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldUserID, user.ID).Msg("failed to generate session token")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout records the end of a session. Tokens are stateless, the caller
// drops the cookie.
func (s *userServiceImpl) Logout(ctx context.Context, userID uint) {
	if userID == 0 {
		return
	}
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
}

// GetByUsername retrieves a user by username.
func (s *userServiceImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUsername, username).Msg("failed to get user")
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user with their posts, comments and follow edges,
// then deletes the images of the removed posts.
func (s *userServiceImpl) DeleteUser(ctx context.Context, username string) error {
	l := log.Ctx(ctx)

	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	images, err := s.repo.Delete(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		l.Error().Err(err).Uint(log.FieldUserID, user.ID).Msg("failed to delete user")
		return err
	}

	if s.images != nil {
		for _, key := range images {
			if err := s.images.Delete(ctx, key); err != nil {
				l.Warn().Err(err).Str("image", key).Msg("failed to delete image")
			}
		}
	}

	audit.Log(ctx, audit.ActionDeleteUser, user.ID, "user deleted")
	return nil
}

var _ UserService = (*userServiceImpl)(nil)

// loadAccount loads the user acting through a session.
func loadAccount(ctx context.Context, users repository.UserRepository, userID uint) (*domain.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Uint(log.FieldUserID, userID).Msg("failed to load account")
		return nil, err
	}
	return user, nil
}
