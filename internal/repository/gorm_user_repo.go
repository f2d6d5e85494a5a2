package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gorstka/Yatube/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	model := domain.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return err
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByUsername retrieves a user by username.
func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "username = ?", username).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes a user and everything that hangs off them. Foreign keys
// cascade as well, but not every engine enforces them, so rows are removed
// explicitly in dependency order.
func (r *GormUserRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var images []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		ownPosts := tx.Model(&domain.PostModel{}).Select("id").Where("author_id = ?", id)

		if err := tx.Model(&domain.PostModel{}).
			Where("author_id = ? AND image <> ''", id).
			Pluck("image", &images).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ? OR post_id IN (?)", id, ownPosts).
			Delete(&domain.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).
			Delete(&domain.FollowModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&domain.PostModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.UserModel{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

var _ UserRepository = (*GormUserRepository)(nil)
