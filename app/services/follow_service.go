package services

import (
	"fmt"

	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
)

// FollowService manages subscriptions between users.
type FollowService struct {
	followRepo repositories.FollowRepository
	userRepo   repositories.UserRepository
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
}

func NewFollowService(store repositories.Store, log logrus.FieldLogger, m *metrics.Metrics) *FollowService {
	return &FollowService{
		followRepo: store.Follows(),
		userRepo:   store.Users(),
		log:        log,
		metrics:    m,
	}
}

// Follow subscribes user to the author called username and returns that
// author. Following yourself or someone already followed changes nothing.
func (s *FollowService) Follow(user *models.User, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if author.ID == user.ID {
		s.log.WithField("user", user.Username).Debug("Ignoring self follow")
		return author, nil
	}

	follow := &models.Follow{UserID: user.ID, AuthorID: author.ID}
	follow.BeforeCreate()
	if err := follow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid follow: %w", err)
	}
	created, err := s.followRepo.Create(follow)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %s: %w", username, err)
	}
	if created {
		s.metrics.Followed()
		s.log.WithFields(logrus.Fields{
			"user":   user.Username,
			"author": author.Username,
		}).Info("Follow created")
	}
	return author, nil
}

// Unfollow removes the subscription of user to username if there is one.
func (s *FollowService) Unfollow(user *models.User, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	deleted, err := s.followRepo.Delete(user.ID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to unfollow %s: %w", username, err)
	}
	if deleted {
		s.metrics.Unfollowed()
		s.log.WithFields(logrus.Fields{
			"user":   user.Username,
			"author": author.Username,
		}).Info("Follow removed")
	}
	return author, nil
}

// IsFollowing reports whether user follows author. Anonymous viewers
// follow nobody.
func (s *FollowService) IsFollowing(user *models.User, author *models.User) (bool, error) {
	if user == nil || author == nil || user.ID == author.ID {
		return false, nil
	}
	return s.followRepo.Exists(user.ID, author.ID)
}
