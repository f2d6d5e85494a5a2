package repository

import "gorm.io/gorm"

// NewGormRepositories wires all GORM repositories onto one connection.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    NewGormUserRepository(db),
		Groups:   NewGormGroupRepository(db),
		Posts:    NewGormPostRepository(db),
		Comments: NewGormCommentRepository(db),
		Follows:  NewGormFollowRepository(db),
	}
}
