package domain

import (
	"time"
)

// UserModel is the GORM model for users table.
type UserModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	FirstName    string    `gorm:"type:varchar(150)"`
	LastName     string    `gorm:"type:varchar(150)"`
	Email        string    `gorm:"type:varchar(254)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// GroupModel is the GORM model for groups table.
type GroupModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

func (GroupModel) TableName() string { return "groups" }

// ToDomain converts GroupModel to domain Group.
func (m *GroupModel) ToDomain() *Group {
	return &Group{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
	}
}

// PostModel is the GORM model for posts table. PubDate is written on
// insert only.
type PostModel struct {
	ID       uint        `gorm:"primaryKey;autoIncrement"`
	Text     string      `gorm:"type:text;not null"`
	PubDate  time.Time   `gorm:"column:pub_date;<-:create;autoCreateTime;index"`
	AuthorID uint        `gorm:"not null;index"`
	Author   UserModel   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID  *uint       `gorm:"index"`
	Group    *GroupModel `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string      `gorm:"type:varchar(255)"`
}

func (PostModel) TableName() string { return "posts" }

// ToDomain converts PostModel to domain Post. Author and Group are filled
// only when preloaded.
func (m *PostModel) ToDomain() *Post {
	p := &Post{
		ID:       m.ID,
		Text:     m.Text,
		PubDate:  m.PubDate,
		AuthorID: m.AuthorID,
		GroupID:  m.GroupID,
		Image:    m.Image,
	}
	if m.Author.ID != 0 {
		p.Author = m.Author.ToDomain()
	}
	if m.Group != nil && m.Group.ID != 0 {
		p.Group = m.Group.ToDomain()
	}
	return p
}

// PostToModel converts domain Post to PostModel without associations.
func PostToModel(p *Post) *PostModel {
	return &PostModel{
		ID:       p.ID,
		Text:     p.Text,
		PubDate:  p.PubDate,
		AuthorID: p.AuthorID,
		GroupID:  p.GroupID,
		Image:    p.Image,
	}
}

// CommentModel is the GORM model for comments table.
type CommentModel struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	PostID   uint      `gorm:"not null;index"`
	Post     PostModel `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID uint      `gorm:"not null;index"`
	Author   UserModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"column:created;<-:create;autoCreateTime;index"`
}

func (CommentModel) TableName() string { return "comments" }

// ToDomain converts CommentModel to domain Comment.
func (m *CommentModel) ToDomain() *Comment {
	c := &Comment{
		ID:       m.ID,
		PostID:   m.PostID,
		AuthorID: m.AuthorID,
		Text:     m.Text,
		Created:  m.Created,
	}
	if m.Author.ID != 0 {
		c.Author = m.Author.ToDomain()
	}
	return c
}

// FollowModel is the GORM model for the follows table. UserID follows
// AuthorID; the pair is unique.
type FollowModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:uidx_follow_pair"`
	User      UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID  uint      `gorm:"column:author_id;not null;uniqueIndex:uidx_follow_pair;index"`
	Author    UserModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// ToDomain converts FollowModel to domain Follow.
func (m *FollowModel) ToDomain() *Follow {
	return &Follow{
		UserID:    m.UserID,
		AuthorID:  m.AuthorID,
		CreatedAt: m.CreatedAt,
	}
}

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&GroupModel{},
		&PostModel{},
		&CommentModel{},
		&FollowModel{},
	}
}
