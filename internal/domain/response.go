package domain

import "time"

// ImageResolver maps a stored image key to its public and thumbnail URLs.
type ImageResolver func(key string) (image, thumbnail string)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName(),
	}
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// ToResponse converts Group to GroupResponse.
func (g *Group) ToResponse() GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        uint           `json:"id"`
	Text      string         `json:"text"`
	PubDate   time.Time      `json:"pub_date"`
	Author    UserResponse   `json:"author"`
	Group     *GroupResponse `json:"group,omitempty"`
	Image     string         `json:"image,omitempty"`
	Thumbnail string         `json:"thumbnail,omitempty"`
}

// ToResponse converts Post to PostResponse. images may be nil when the
// caller does not serve media.
func (p *Post) ToResponse(images ImageResolver) PostResponse {
	resp := PostResponse{
		ID:      p.ID,
		Text:    p.Text,
		PubDate: p.PubDate,
	}
	if p.Author != nil {
		resp.Author = p.Author.ToResponse()
	} else {
		resp.Author = UserResponse{ID: p.AuthorID}
	}
	if p.Group != nil {
		g := p.Group.ToResponse()
		resp.Group = &g
	}
	if p.Image != "" && images != nil {
		resp.Image, resp.Thumbnail = images(p.Image)
	}
	return resp
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID      uint         `json:"id"`
	PostID  uint         `json:"post_id"`
	Text    string       `json:"text"`
	Created time.Time    `json:"created"`
	Author  UserResponse `json:"author"`
}

// ToResponse converts Comment to CommentResponse.
func (c *Comment) ToResponse() CommentResponse {
	resp := CommentResponse{
		ID:      c.ID,
		PostID:  c.PostID,
		Text:    c.Text,
		Created: c.Created,
	}
	if c.Author != nil {
		resp.Author = c.Author.ToResponse()
	} else {
		resp.Author = UserResponse{ID: c.AuthorID}
	}
	return resp
}

// FormField describes one input of a form descriptor.
type FormField struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Required bool         `json:"required"`
	Value    interface{}  `json:"value,omitempty"`
	Choices  []FormChoice `json:"choices,omitempty"`
}

// FormChoice is one option of a select field.
type FormChoice struct {
	Value uint   `json:"value"`
	Label string `json:"label"`
}

// FormDescriptor tells a client how to render and submit a form.
type FormDescriptor struct {
	Action  string      `json:"action"`
	Method  string      `json:"method"`
	Enctype string      `json:"enctype,omitempty"`
	IsEdit  bool        `json:"is_edit"`
	Fields  []FormField `json:"fields"`
}
