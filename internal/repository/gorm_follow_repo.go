package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gorstka/Yatube/internal/domain"
)

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow creates the edge userID -> authorID. The unique pair index turns
// a concurrent duplicate into ErrAlreadyFollowing.
func (r *GormFollowRepository) Follow(ctx context.Context, userID, authorID uint) error {
	model := domain.FollowModel{
		UserID:   userID,
		AuthorID: authorID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		return err
	}
	return nil
}

// Unfollow removes the edge userID -> authorID.
func (r *GormFollowRepository) Unfollow(ctx context.Context, userID, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.FollowModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// IsFollowing checks if userID follows authorID.
func (r *GormFollowRepository) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the total number of follow edges.
func (r *GormFollowRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, nil)
}

// CountFollowers returns how many users follow authorID.
func (r *GormFollowRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", authorID)
	})
}

// CountFollowing returns how many authors userID follows.
func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

func (r *GormFollowRepository) count(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.FollowModel{})
	if scope != nil {
		db = db.Scopes(scope)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ FollowRepository = (*GormFollowRepository)(nil)
