package services

import (
	"errors"
	"fmt"

	"yatube/app/forms"
	"yatube/app/media"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
)

// PostPage is one page of a post listing with authors and groups loaded.
type PostPage struct {
	pagination.Page
	Posts []*models.Post
}

// PostService handles business logic for blog posts
type PostService struct {
	postRepo  repositories.PostRepository
	userRepo  repositories.UserRepository
	groupRepo repositories.GroupRepository
	storage   *media.Storage
	perPage   int
	log       logrus.FieldLogger
	metrics   *metrics.Metrics
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store, storage *media.Storage, perPage int, log logrus.FieldLogger, m *metrics.Metrics) *PostService {
	if perPage < 1 {
		perPage = pagination.DefaultPerPage
	}
	return &PostService{
		postRepo:  store.Posts(),
		userRepo:  store.Users(),
		groupRepo: store.Groups(),
		storage:   storage,
		perPage:   perPage,
		log:       log,
		metrics:   m,
	}
}

// Groups exposes group lookups for post form validation.
func (s *PostService) Groups() forms.GroupFinder {
	return s.groupRepo
}

// ListPosts returns the requested page of posts matching filter, newest
// first. Bad page numbers are clamped the way pagination.New does.
func (s *PostService) ListPosts(filter repositories.PostFilter, page string) (*PostPage, error) {
	total, err := s.postRepo.Count(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	result := &PostPage{Page: pagination.New(total, s.perPage, page)}
	if result.Limit() == 0 {
		return result, nil
	}

	posts, err := s.postRepo.List(filter, result.Limit(), result.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if err := s.attach(posts); err != nil {
		return nil, err
	}
	result.Posts = posts
	return result, nil
}

// GetPost retrieves a post by ID with its author and group
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.attach([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// CountByAuthor returns how many posts authorID has written.
func (s *PostService) CountByAuthor(authorID int) (int, error) {
	return s.postRepo.Count(repositories.PostFilter{AuthorID: authorID})
}

// CanEdit reports whether user may change post.
func (s *PostService) CanEdit(post *models.Post, user *models.User) bool {
	return user != nil && post.AuthorID == user.ID
}

// CreatePost validates form and stores a new post written by author.
// An invalid form yields ErrInvalidForm with the messages left on form.
func (s *PostService) CreatePost(author *models.User, form *forms.PostForm) (*models.Post, error) {
	valid, err := form.Validate(s.groupRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to validate post: %w", err)
	}
	if !valid {
		return nil, ErrInvalidForm
	}

	post := &models.Post{AuthorID: author.ID}
	form.Apply(post)
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	if err := s.saveImage(post, form); err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		s.discardImage(post.Image)
		return nil, fmt.Errorf("invalid post: %w", err)
	}
	if err := s.postRepo.Create(post); err != nil {
		s.discardImage(post.Image)
		return nil, err
	}
	post.Author = author

	s.metrics.PostCreated()
	s.log.WithFields(logrus.Fields{
		"post_id": post.ID,
		"author":  author.Username,
	}).Info("Post created")
	return post, nil
}

// UpdatePost applies form to post. The author and publication date never
// change. On any failure post is left untouched.
func (s *PostService) UpdatePost(post *models.Post, form *forms.PostForm) error {
	valid, err := form.Validate(s.groupRepo)
	if err != nil {
		return fmt.Errorf("failed to validate post: %w", err)
	}
	if !valid {
		return ErrInvalidForm
	}

	updated := *post
	form.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	if err := s.saveImage(&updated, form); err != nil {
		return err
	}
	fresh := ""
	if updated.Image != post.Image {
		fresh = updated.Image
	}
	if err := updated.Validate(); err != nil {
		s.discardImage(fresh)
		return fmt.Errorf("invalid post: %w", err)
	}
	if err := s.postRepo.Update(&updated); err != nil {
		s.discardImage(fresh)
		return err
	}
	*post = updated

	s.metrics.PostEdited()
	s.log.WithField("post_id", post.ID).Info("Post edited")
	return nil
}

func (s *PostService) saveImage(post *models.Post, form *forms.PostForm) error {
	if form.Image == nil {
		return nil
	}
	if s.storage == nil {
		return errors.New("media storage is not configured")
	}
	name, err := s.storage.Save(form.Image)
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	post.Image = name
	return nil
}

// discardImage removes an upload whose post was never stored.
func (s *PostService) discardImage(name string) {
	if name == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(name); err != nil {
		s.log.WithError(err).WithField("image", name).Warn("Failed to remove orphaned image")
	}
}

// attach loads the display-only Author and Group of each post.
func (s *PostService) attach(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int, len(posts))
	for i, post := range posts {
		ids[i] = post.AuthorID
	}
	authors, err := loadAuthors(s.userRepo, ids)
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}

	groups := make(map[int]*models.Group)
	for _, post := range posts {
		post.Author = authors[post.AuthorID]
		if post.GroupID == nil {
			continue
		}
		id := *post.GroupID
		group, ok := groups[id]
		if !ok {
			group, err = s.groupRepo.GetByID(id)
			if errors.Is(err, repositories.ErrNotFound) {
				group, err = nil, nil
			}
			if err != nil {
				return fmt.Errorf("failed to load group %d: %w", id, err)
			}
			groups[id] = group
		}
		post.Group = group
	}
	return nil
}
