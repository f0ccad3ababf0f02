package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// FollowController subscribes the current user to authors and back.
type FollowController struct {
	responder
	follows *services.FollowService
}

func NewFollowController(svc *services.Services, renderer *views.Renderer, log logrus.FieldLogger) *FollowController {
	return &FollowController{
		responder: responder{views: renderer, log: log},
		follows:   svc.Follows,
	}
}

// Follow subscribes to the author in the URL.
func (fc *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	fc.handle(w, r, fc.follows.Follow)
}

// Unfollow drops the subscription to the author in the URL.
func (fc *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	fc.handle(w, r, fc.follows.Unfollow)
}

func (fc *FollowController) handle(w http.ResponseWriter, r *http.Request, action func(*models.User, string) (*models.User, error)) {
	author, err := action(auth.CurrentUser(r), mux.Vars(r)["username"])
	if err != nil {
		fc.sendError(w, r, err)
		return
	}

	target := r.Referer()
	if target == "" {
		target = profileURL(author.Username)
	}
	http.Redirect(w, r, target, http.StatusFound)
}
