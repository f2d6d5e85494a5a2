package domain

import (
	"fmt"
	"mime/multipart"
	"strings"
	"unicode/utf8"
)

// Form error messages.
const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgInvalidSlug   = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	MsgUsernameTaken = "A user with that username already exists."
	MsgBadLogin      = "Please enter a correct username and password."
)

// FieldErrors maps a form field to its first validation error.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns e as an error when it is non-empty.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &ValidationError{Fields: e}
}

// ValidationError carries field-level form errors.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func maxLength(errs FieldErrors, field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		errs.Add(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, n))
	}
}

// PostForm is the create/edit post form.
type PostForm struct {
	Text  string                `form:"text" json:"text"`
	Group uint                  `form:"group" json:"group"` // 0 for none
	Image *multipart.FileHeader `form:"image" json:"-"`
}

// Validate trims the text and checks required fields.
func (f *PostForm) Validate() error {
	errs := FieldErrors{}
	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		errs.Add("text", MsgRequired)
	}
	return errs.Err()
}

// GroupID returns the selected group or nil.
func (f *PostForm) GroupID() *uint {
	if f.Group == 0 {
		return nil
	}
	id := f.Group
	return &id
}

// CommentForm is the add comment form.
type CommentForm struct {
	Text string `form:"text" json:"text"`
}

// Validate trims the text and checks required fields.
func (f *CommentForm) Validate() error {
	errs := FieldErrors{}
	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		errs.Add("text", MsgRequired)
	}
	return errs.Err()
}

// SignupForm registers a new user.
type SignupForm struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
}

// Validate checks the signup form.
func (f *SignupForm) Validate() error {
	errs := FieldErrors{}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	if f.Username == "" {
		errs.Add("username", MsgRequired)
	}
	maxLength(errs, "username", f.Username, 150)
	for _, r := range f.Username {
		if !isUsernameRune(r) {
			errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
			break
		}
	}
	maxLength(errs, "first_name", f.FirstName, 150)
	maxLength(errs, "last_name", f.LastName, 150)
	if f.Email != "" && !strings.Contains(f.Email, "@") {
		errs.Add("email", "Enter a valid email address.")
	}
	if f.Password == "" {
		errs.Add("password", MsgRequired)
	} else if utf8.RuneCountInString(f.Password) < 8 {
		errs.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	return errs.Err()
}

func isUsernameRune(r rune) bool {
	switch r {
	case '@', '.', '+', '-', '_':
		return true
	}
	return r > ' ' && !strings.ContainsRune("/\\?#%&=:;,'\"<>", r) && (r > 127 || isASCIIAlnum(r))
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// LoginForm authenticates an existing user.
type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

// Validate checks required fields.
func (f *LoginForm) Validate() error {
	errs := FieldErrors{}
	f.Username = strings.TrimSpace(f.Username)
	if f.Username == "" {
		errs.Add("username", MsgRequired)
	}
	if f.Password == "" {
		errs.Add("password", MsgRequired)
	}
	return errs.Err()
}

// CreateGroupRequest describes a group created from the command line.
type CreateGroupRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"` // derived from Title when empty
	Description string `json:"description"`
}

// Validate checks the title and, when given, the explicit slug shape.
// validSlug is injected to keep slug rules in one place.
func (r *CreateGroupRequest) Validate(validSlug func(string) bool) error {
	errs := FieldErrors{}
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)

	if r.Title == "" {
		errs.Add("title", MsgRequired)
	}
	maxLength(errs, "title", r.Title, 200)
	if r.Slug != "" && !validSlug(r.Slug) {
		errs.Add("slug", MsgInvalidSlug)
	}
	return errs.Err()
}
