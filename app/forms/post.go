package forms

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/media"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/gabriel-vasile/mimetype"
)

var (
	PostTextField = Field{
		Name:     "text",
		Label:    "Текст поста",
		HelpText: "Текст нового поста",
	}
	PostGroupField = Field{
		Name:     "group",
		Label:    "Группа",
		HelpText: "Группа, к которой будет относиться пост",
	}
	PostImageField = Field{
		Name:  "image",
		Label: "Картинка",
	}
)

// ImageTypes are the upload formats accepted for post images.
var ImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// GroupFinder resolves the group a post is filed under.
type GroupFinder interface {
	GetByID(id int) (*models.Group, error)
}

// PostForm validates post creation and edits.
type PostForm struct {
	Text       string `form:"text" validate:"required"`
	GroupID    string `form:"group"`
	Image      *media.Upload
	ClearImage bool
	Errors     Errors

	group *models.Group
}

func NewPostForm() *PostForm {
	return &PostForm{Errors: Errors{}}
}

// PostFormFor pre-fills a form with the current values of post.
func PostFormFor(post *models.Post) *PostForm {
	form := NewPostForm()
	form.Text = post.Text
	if post.GroupID != nil {
		form.GroupID = strconv.Itoa(*post.GroupID)
	}
	return form
}

// ParsePostForm binds a submitted post form, including an optional image.
func ParsePostForm(r *http.Request) (*PostForm, error) {
	if err := parseRequest(r); err != nil {
		return nil, err
	}
	form := NewPostForm()
	form.Text = r.PostFormValue("text")
	form.GroupID = r.PostFormValue("group")
	form.ClearImage = r.PostFormValue("image-clear") != ""

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return nil, err
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		form.Image = &media.Upload{Filename: header.Filename, Data: data}
	}
	return form, nil
}

// Validate checks every field and records messages in Errors. The error
// return is reserved for lookups that failed for reasons other than bad input.
func (f *PostForm) Validate(groups GroupFinder) (bool, error) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Text = strings.TrimSpace(f.Text)
	if err := validateStruct(f, f.Errors); err != nil {
		return false, err
	}

	if err := f.validateGroup(groups); err != nil {
		return false, err
	}
	f.validateImage()

	return !f.Errors.Any(), nil
}

func (f *PostForm) validateGroup(groups GroupFinder) error {
	f.group = nil
	raw := strings.TrimSpace(f.GroupID)
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		f.Errors.Add(PostGroupField.Name, MsgInvalidChoice)
		return nil
	}
	group, err := groups.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		f.Errors.Add(PostGroupField.Name, MsgInvalidChoice)
		return nil
	}
	if err != nil {
		return err
	}
	f.group = group
	return nil
}

func (f *PostForm) validateImage() {
	if f.Image == nil {
		return
	}
	if len(f.Image.Data) == 0 {
		f.Errors.Add(PostImageField.Name, MsgEmptyFile)
		return
	}
	detected := mimetype.Detect(f.Image.Data)
	if !mimetype.EqualsAny(detected.String(), ImageTypes...) {
		f.Errors.Add(PostImageField.Name, MsgInvalidImage)
	}
}

// Group is the group chosen on a valid form, nil for none.
func (f *PostForm) Group() *models.Group {
	return f.group
}

// Apply copies validated text and group onto post. The author and
// publication date are left alone; storing the image is up to the caller.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.SetGroup(f.group)
	if f.ClearImage && f.Image == nil {
		post.Image = ""
	}
}
