// Package services holds the business rules of the blog: who may write
// what, and how posts, comments and follow edges are stored.
package services

import (
	"errors"

	"yatube/app/media"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
)

// ErrInvalidForm is returned when a submitted form failed validation. The
// messages are recorded on the form itself.
var ErrInvalidForm = errors.New("invalid form")

// Services bundles every service built over one store.
type Services struct {
	Posts    *PostService
	Comments *CommentService
	Follows  *FollowService
	Users    *UserService
	Groups   *GroupService
}

// New wires the services over store. A nil metrics disables counting.
func New(store repositories.Store, storage *media.Storage, perPage int, log logrus.FieldLogger, m *metrics.Metrics) *Services {
	return &Services{
		Posts:    NewPostService(store, storage, perPage, log, m),
		Comments: NewCommentService(store, log, m),
		Follows:  NewFollowService(store, log, m),
		Users:    NewUserService(store.Users(), log, m),
		Groups:   NewGroupService(store.Groups(), log),
	}
}

// loadAuthors resolves the authors of ids in one lookup.
func loadAuthors(users repositories.UserRepository, ids []int) (map[int]*models.User, error) {
	seen := make(map[int]bool, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return users.GetMany(unique)
}
