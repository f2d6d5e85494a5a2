package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gorstka/Yatube/internal/domain"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment on an existing post.
func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	model := domain.CommentModel{
		PostID:   comment.PostID,
		AuthorID: comment.AuthorID,
		Text:     comment.Text,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return err
	}
	comment.ID = model.ID
	comment.Created = model.Created
	return nil
}

// ListByPost returns the comments on a post, newest first.
func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	var models []domain.CommentModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, len(models))
	for i := range models {
		comments[i] = models[i].ToDomain()
	}
	return comments, nil
}

var _ CommentRepository = (*GormCommentRepository)(nil)
