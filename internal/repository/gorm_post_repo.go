package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gorstka/Yatube/internal/domain"
)

const bulkCreateBatchSize = 100

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// filterScope applies the non-zero fields of f.
func filterScope(f PostFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.GroupID != 0 {
			db = db.Where("posts.group_id = ?", f.GroupID)
		}
		if f.AuthorID != 0 {
			db = db.Where("posts.author_id = ?", f.AuthorID)
		}
		if f.FollowerID != 0 {
			followed := db.Session(&gorm.Session{NewDB: true}).
				Model(&domain.FollowModel{}).
				Select("author_id").
				Where("user_id = ?", f.FollowerID)
			db = db.Where("posts.author_id IN (?)", followed)
		}
		return db
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.pub_date DESC").Order("posts.id DESC")
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Group")
}

// Create inserts a post. PubDate is set by the database layer.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	model := domain.PostToModel(post)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	post.ID = model.ID
	post.PubDate = model.PubDate
	return nil
}

// BulkCreate inserts posts in batches inside one transaction.
func (r *GormPostRepository) BulkCreate(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	models := make([]*domain.PostModel, len(posts))
	for i, p := range posts {
		models[i] = domain.PostToModel(p)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(models, bulkCreateBatchSize).Error
	})
	if err != nil {
		return err
	}

	for i, m := range models {
		posts[i].ID = m.ID
		posts[i].PubDate = m.PubDate
	}
	return nil
}

// GetByID retrieves a post with its author and group.
func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var model domain.PostModel
	err := r.db.WithContext(ctx).
		Scopes(withAssociations).
		First(&model, "posts.id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByAuthor retrieves post id only if it was written by username.
func (r *GormPostRepository) GetByAuthor(ctx context.Context, username string, id uint) (*domain.Post, error) {
	db := r.db.WithContext(ctx)
	author := db.Model(&domain.UserModel{}).Select("id").Where("username = ?", username)

	var model domain.PostModel
	err := db.Scopes(withAssociations).
		Where("posts.id = ? AND posts.author_id IN (?)", id, author).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update writes the mutable columns of post.
func (r *GormPostRepository) Update(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.PostModel{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}

		return tx.Model(&domain.PostModel{ID: post.ID}).
			Select("text", "group_id", "image").
			Updates(&domain.PostModel{
				Text:    post.Text,
				GroupID: post.GroupID,
				Image:   post.Image,
			}).Error
	})
}

// Delete removes a post and its comments.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.CommentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.PostModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

// Count returns the number of posts matching filter.
func (r *GormPostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Scopes(filterScope(filter)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List returns one window of posts matching filter, newest first.
func (r *GormPostRepository) List(ctx context.Context, filter PostFilter, offset, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		return []*domain.Post{}, nil
	}

	var models []domain.PostModel
	err := r.db.WithContext(ctx).
		Scopes(filterScope(filter), withAssociations, newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, len(models))
	for i := range models {
		posts[i] = models[i].ToDomain()
	}
	return posts, nil
}

var _ PostRepository = (*GormPostRepository)(nil)
