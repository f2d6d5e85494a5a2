package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gorstka/Yatube/internal/domain"
)

// GormGroupRepository implements GroupRepository using GORM.
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GORM-backed group repository.
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// Create inserts a group. A taken slug yields ErrSlugExists.
func (r *GormGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	model := domain.GroupModel{
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return err
	}
	group.ID = model.ID
	return nil
}

// GetByID retrieves a group by ID.
func (r *GormGroupRepository) GetByID(ctx context.Context, id uint) (*domain.Group, error) {
	var model domain.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetBySlug retrieves a group by slug.
func (r *GormGroupRepository) GetBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var model domain.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SlugExists reports whether a group already uses slug.
func (r *GormGroupRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.GroupModel{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all groups ordered by title.
func (r *GormGroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	var models []domain.GroupModel
	if err := r.db.WithContext(ctx).Order("title").Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	groups := make([]*domain.Group, len(models))
	for i := range models {
		groups[i] = models[i].ToDomain()
	}
	return groups, nil
}

// Delete removes the group; its posts stay with group_id cleared.
func (r *GormGroupRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.GroupModel
		if err := tx.First(&model, "slug = ?", slug).Error; err != nil {
			if isNotFound(err) {
				return ErrGroupNotFound
			}
			return err
		}

		if err := tx.Model(&domain.PostModel{}).
			Where("group_id = ?", model.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.GroupModel{}, "id = ?", model.ID).Error
	})
}

var _ GroupRepository = (*GormGroupRepository)(nil)
