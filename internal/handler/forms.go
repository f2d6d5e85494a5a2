package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gorstka/Yatube/internal/domain"
)

func postFormDescriptor(action string, groups []*domain.Group, current *domain.Post) domain.FormDescriptor {
	choices := make([]domain.FormChoice, len(groups))
	for i, g := range groups {
		choices[i] = domain.FormChoice{Value: g.ID, Label: g.Title}
	}

	text := domain.FormField{Name: "text", Type: "textarea", Required: true}
	group := domain.FormField{Name: "group", Type: "select", Choices: choices}
	image := domain.FormField{Name: "image", Type: "file"}
	if current != nil {
		text.Value = current.Text
		if current.GroupID != nil {
			group.Value = *current.GroupID
		}
		if current.Image != "" {
			image.Value = current.Image
		}
	}

	return domain.FormDescriptor{
		Action:  action,
		Method:  http.MethodPost,
		Enctype: "multipart/form-data",
		IsEdit:  current != nil,
		Fields:  []domain.FormField{text, group, image},
	}
}

func commentFormDescriptor(action string) domain.FormDescriptor {
	return domain.FormDescriptor{
		Action: action,
		Method: http.MethodPost,
		Fields: []domain.FormField{
			{Name: "text", Type: "textarea", Required: true},
		},
	}
}

func signupFormDescriptor() domain.FormDescriptor {
	return domain.FormDescriptor{
		Action: "/auth/signup/",
		Method: http.MethodPost,
		Fields: []domain.FormField{
			{Name: "first_name", Type: "text"},
			{Name: "last_name", Type: "text"},
			{Name: "username", Type: "text", Required: true},
			{Name: "email", Type: "email"},
			{Name: "password", Type: "password", Required: true},
		},
	}
}

func loginFormDescriptor(next string) domain.FormDescriptor {
	fields := []domain.FormField{
		{Name: "username", Type: "text", Required: true},
		{Name: "password", Type: "password", Required: true},
	}
	if next != "" {
		fields = append(fields, domain.FormField{Name: "next", Type: "hidden", Value: next})
	}
	return domain.FormDescriptor{
		Action: "/auth/login/",
		Method: http.MethodPost,
		Fields: fields,
	}
}

// bindPostForm binds a JSON, urlencoded or multipart post form. A group
// that is not a number is reported as an invalid choice.
func bindPostForm(c *gin.Context) (*domain.PostForm, error) {
	var form domain.PostForm
	if err := c.ShouldBind(&form); err != nil {
		var numErr *strconv.NumError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &numErr) || (errors.As(err, &typeErr) && typeErr.Field == "group") {
			return nil, domain.FieldErrors{"group": domain.MsgInvalidChoice}.Err()
		}
		return nil, err
	}
	form.Image = upload(form.Image)
	return &form, nil
}

// upload drops the empty file part browsers send when nothing was chosen.
func upload(fh *multipart.FileHeader) *multipart.FileHeader {
	if fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return nil
	}
	return fh
}
