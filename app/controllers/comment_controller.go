package controllers

import (
	"errors"
	"net/http"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/sirupsen/logrus"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	responder
	comments *services.CommentService
	sessions *auth.Sessions
}

// NewCommentController creates a new CommentController
func NewCommentController(svc *services.Services, sessions *auth.Sessions, renderer *views.Renderer, log logrus.FieldLogger) *CommentController {
	return &CommentController{
		responder: responder{views: renderer, log: log},
		comments:  svc.Comments,
		sessions:  sessions,
	}
}

// Create stores a comment and always returns to the post. A rejected
// comment travels back in the session so the detail page can show its
// errors next to the submitted text.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		cc.NotFound(w, r)
		return
	}

	form, err := forms.ParseCommentForm(r)
	if err != nil {
		cc.badRequest(w, r, err)
		return
	}

	_, err = cc.comments.AddComment(id, auth.CurrentUser(r), form)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidForm):
		flash := append([]string{form.Text}, form.Errors.Get(forms.CommentTextField.Name)...)
		if err := cc.sessions.AddFlash(w, r, flashComment, flash...); err != nil {
			cc.log.WithError(err).WithField("post_id", id).Warn("Failed to keep rejected comment")
		}
	default:
		cc.sendError(w, r, err)
		return
	}

	http.Redirect(w, r, postURL(id), http.StatusFound)
}
