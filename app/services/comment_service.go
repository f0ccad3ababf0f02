package services

import (
	"fmt"

	"yatube/app/forms"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	userRepo    repositories.UserRepository
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
}

// NewCommentService creates a new CommentService
func NewCommentService(store repositories.Store, log logrus.FieldLogger, m *metrics.Metrics) *CommentService {
	return &CommentService{
		commentRepo: store.Comments(),
		postRepo:    store.Posts(),
		userRepo:    store.Users(),
		log:         log,
		metrics:     m,
	}
}

// AddComment stores a comment by author under the post with postID.
// It returns repositories.ErrNotFound for an unknown post and
// ErrInvalidForm when form fails validation.
func (s *CommentService) AddComment(postID int, author *models.User, form *forms.CommentForm) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, err
	}

	valid, err := form.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate comment: %w", err)
	}
	if !valid {
		return nil, ErrInvalidForm
	}

	comment := &models.Comment{PostID: postID, AuthorID: author.ID}
	form.Apply(comment)
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	comment.Author = author

	s.metrics.CommentCreated()
	s.log.WithFields(logrus.Fields{
		"post_id":    postID,
		"comment_id": comment.ID,
		"author":     author.Username,
	}).Info("Comment added")
	return comment, nil
}

// ListPostComments returns the comments of a post, oldest first, with
// their authors loaded.
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]int, len(comments))
	for i, comment := range comments {
		ids[i] = comment.AuthorID
	}
	authors, err := loadAuthors(s.userRepo, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}
	for _, comment := range comments {
		comment.Author = authors[comment.AuthorID]
	}
	return comments, nil
}
