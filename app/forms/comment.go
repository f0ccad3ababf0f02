package forms

import (
	"net/http"
	"strings"

	"yatube/app/models"
)

var CommentTextField = Field{
	Name:  "text",
	Label: "Текст комментария",
}

type CommentForm struct {
	Text   string `form:"text" validate:"required"`
	Errors Errors
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func ParseCommentForm(r *http.Request) (*CommentForm, error) {
	if err := parseRequest(r); err != nil {
		return nil, err
	}
	form := NewCommentForm()
	form.Text = r.PostFormValue("text")
	return form, nil
}

func (f *CommentForm) Validate() (bool, error) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Text = strings.TrimSpace(f.Text)
	if err := validateStruct(f, f.Errors); err != nil {
		return false, err
	}
	return !f.Errors.Any(), nil
}

func (f *CommentForm) Apply(comment *models.Comment) {
	comment.Text = f.Text
}
