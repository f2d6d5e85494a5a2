package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostString(t *testing.T) {
	p := &Post{Text: "Пишу тестовый пост для проверки"}
	assert.Equal(t, "Пишу тестовый п", p.String())

	short := &Post{Text: "short"}
	assert.Equal(t, "short", short.String())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Lev Tolstoy", (&User{Username: "leo", FirstName: "Lev", LastName: "Tolstoy"}).FullName())
	assert.Equal(t, "leo", (&User{Username: "leo"}).FullName())
}

func TestPostFormValidate(t *testing.T) {
	f := PostForm{Text: "   "}
	err := f.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgRequired, verr.Fields["text"])

	f = PostForm{Text: "  hello  ", Group: 3}
	require.NoError(t, f.Validate())
	assert.Equal(t, "hello", f.Text)
	require.NotNil(t, f.GroupID())
	assert.Equal(t, uint(3), *f.GroupID())

	f.Group = 0
	assert.Nil(t, f.GroupID())
}

func TestSignupFormValidate(t *testing.T) {
	f := SignupForm{Username: "bad name", Password: "short"}
	err := f.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")

	ok := SignupForm{Username: "leo.tolstoy", Email: "leo@example.com", Password: "war-and-peace"}
	assert.NoError(t, ok.Validate())
}

func TestCreateGroupRequestValidate(t *testing.T) {
	alwaysValid := func(string) bool { return true }
	neverValid := func(string) bool { return false }

	r := CreateGroupRequest{Title: strings.Repeat("t", 201)}
	err := r.Validate(alwaysValid)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Ensure this value has at most 200 characters (it has 201).", verr.Fields["title"])

	r = CreateGroupRequest{Title: "Books", Slug: "b o o k s"}
	err = r.Validate(neverValid)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgInvalidSlug, verr.Fields["slug"])
}

func TestPostToResponseResolvesImages(t *testing.T) {
	groupID := uint(2)
	p := &Post{
		ID:       1,
		Text:     "text",
		AuthorID: 5,
		Author:   &User{ID: 5, Username: "leo"},
		GroupID:  &groupID,
		Group:    &Group{ID: 2, Title: "Books", Slug: "books"},
		Image:    "posts/a.jpg",
	}

	resp := p.ToResponse(func(key string) (string, string) {
		return "/media/" + key, "/media/thumb/" + key
	})
	assert.Equal(t, "leo", resp.Author.Username)
	require.NotNil(t, resp.Group)
	assert.Equal(t, "books", resp.Group.Slug)
	assert.Equal(t, "/media/posts/a.jpg", resp.Image)
	assert.Equal(t, "/media/thumb/posts/a.jpg", resp.Thumbnail)

	bare := p.ToResponse(nil)
	assert.Empty(t, bare.Image)
}
