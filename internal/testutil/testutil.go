// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/pkg/database"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the shared-cache database alive and serializes
// access.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, database.AutoMigrate(db, domain.Models()...))
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *domain.User {
	t.Helper()

	m := domain.UserModel{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(&m).Error)
	return m.ToDomain()
}

// CreateGroup inserts a group.
func CreateGroup(t testing.TB, db *gorm.DB, title, slug string) *domain.Group {
	t.Helper()

	m := domain.GroupModel{Title: title, Slug: slug, Description: title + " description"}
	require.NoError(t, db.Create(&m).Error)
	return m.ToDomain()
}

// CreatePost inserts a post published at pubDate. A zero pubDate lets the
// database stamp it.
func CreatePost(t testing.TB, db *gorm.DB, author *domain.User, group *domain.Group, text string, pubDate time.Time) *domain.Post {
	t.Helper()

	m := domain.PostModel{Text: text, AuthorID: author.ID, PubDate: pubDate}
	if group != nil {
		id := group.ID
		m.GroupID = &id
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&m).Error)
	return m.ToDomain()
}

// CreatePosts inserts n posts one second apart, oldest first.
func CreatePosts(t testing.TB, db *gorm.DB, author *domain.User, group *domain.Group, n int) []*domain.Post {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]*domain.Post, n)
	for i := range n {
		posts[i] = CreatePost(t, db, author, group, "post number "+uuid.NewString()[:8], base.Add(time.Duration(i)*time.Second))
	}
	return posts
}
