package services

import (
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
)

// GroupService manages the communities posts are filed under. Groups are
// created by administrators only.
type GroupService struct {
	groupRepo repositories.GroupRepository
	log       logrus.FieldLogger
}

func NewGroupService(groupRepo repositories.GroupRepository, log logrus.FieldLogger) *GroupService {
	return &GroupService{groupRepo: groupRepo, log: log}
}

func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(slug)
}

func (s *GroupService) List() ([]*models.Group, error) {
	return s.groupRepo.List()
}

// CreateGroup adds a group. Slugs are unique.
func (s *GroupService) CreateGroup(slug, title, description string) (*models.Group, error) {
	if description == "" {
		description = title
	}
	group := &models.Group{Slug: slug, Title: title, Description: description}
	if err := group.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group: %w", err)
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	s.log.WithField("slug", slug).Info("Group created")
	return group, nil
}

// DeleteGroup removes the group with slug. Its posts remain without a group.
func (s *GroupService) DeleteGroup(slug string) error {
	group, err := s.groupRepo.GetBySlug(slug)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(group.ID); err != nil {
		return fmt.Errorf("failed to delete group %s: %w", slug, err)
	}
	s.log.WithField("slug", slug).Info("Group deleted")
	return nil
}
