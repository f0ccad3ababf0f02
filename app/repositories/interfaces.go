package repositories

import "yatube/app/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	// GetMany returns the users found among ids keyed by ID; unknown ids are skipped.
	GetMany(ids []int) (map[int]*models.User, error)
	Update(user *models.User) error
	List() ([]*models.User, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
	// Delete removes the group and detaches every post filed under it.
	Delete(id int) error
}

// PostFilter narrows a post listing. At most one field is honoured, in the
// order FollowerID, AuthorID, GroupID; the zero filter selects every post.
type PostFilter struct {
	FollowerID int
	AuthorID   int
	GroupID    int
}

// PostRepository defines the interface for post data access.
// Listings are ordered newest first.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	Update(post *models.Post) error
	Count(filter PostFilter) (int, error)
	List(filter PostFilter, limit, offset int) ([]*models.Post, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	// ListByPost returns the comments of a post, oldest first.
	ListByPost(postID int) ([]*models.Comment, error)
}

// FollowRepository defines the interface for follow edge access.
// Create and Delete are idempotent and report whether anything changed.
type FollowRepository interface {
	Create(follow *models.Follow) (bool, error)
	Delete(userID, authorID int) (bool, error)
	Exists(userID, authorID int) (bool, error)
	ListAuthorIDs(userID int) ([]int, error)
}

// Store bundles the repositories of one storage backend.
type Store interface {
	Users() UserRepository
	Groups() GroupRepository
	Posts() PostRepository
	Comments() CommentRepository
	Follows() FollowRepository
	// Clear removes every record.
	Clear() error
	Close() error
}
