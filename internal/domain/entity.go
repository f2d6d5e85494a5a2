package domain

import (
	"strings"
	"time"
)

// User represents a registered author or reader.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u *User) String() string { return u.Username }

// Group is a themed community posts can be filed under.
type Group struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (g *Group) String() string { return g.Title }

// Post is a single publication. PubDate never changes after creation.
type Post struct {
	ID       uint
	Text     string
	PubDate  time.Time
	AuthorID uint
	Author   *User
	GroupID  *uint
	Group    *Group
	Image    string // storage key, empty when the post has no image
}

const postPreviewLength = 15

// String returns the first 15 characters of the text.
func (p *Post) String() string {
	n := 0
	for i := range p.Text {
		if n == postPreviewLength {
			return p.Text[:i]
		}
		n++
	}
	return p.Text
}

// IsAuthor reports whether userID wrote the post.
func (p *Post) IsAuthor(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}

// Comment is a reader's reply on a post.
type Comment struct {
	ID       uint
	PostID   uint
	AuthorID uint
	Author   *User
	Text     string
	Created  time.Time
}

// Follow is a directed subscription of UserID to AuthorID.
type Follow struct {
	UserID    uint
	AuthorID  uint
	CreatedAt time.Time
}
