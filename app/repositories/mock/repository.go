// Package mock provides in-memory repositories for service and controller tests.
package mock

import (
	"sort"
	"sync"

	"yatube/app/models"
	"yatube/app/repositories"
)

// Store is an in-memory repositories.Store. Records are stored as copies so
// callers cannot mutate them behind the store's back.
type Store struct {
	mutex sync.RWMutex

	users    map[int]models.User
	groups   map[int]models.Group
	posts    map[int]models.Post
	comments map[int]models.Comment
	follows  map[[2]int]models.Follow
	nextID   map[string]int
}

func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

func (s *Store) Users() repositories.UserRepository { return (*UserRepository)(s) }
func (s *Store) Groups() repositories.GroupRepository { return (*GroupRepository)(s) }
func (s *Store) Posts() repositories.PostRepository { return (*PostRepository)(s) }
func (s *Store) Comments() repositories.CommentRepository { return (*CommentRepository)(s) }
func (s *Store) Follows() repositories.FollowRepository { return (*FollowRepository)(s) }

func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.users = make(map[int]models.User)
	s.groups = make(map[int]models.Group)
	s.posts = make(map[int]models.Post)
	s.comments = make(map[int]models.Comment)
	s.follows = make(map[[2]int]models.Follow)
	s.nextID = make(map[string]int)
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) next(kind string) int {
	s.nextID[kind]++
	return s.nextID[kind]
}

// UserRepository implementation
type UserRepository Store

func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = (*Store)(m).next("user")
	m.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) GetMany(ids []int) (map[int]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make(map[int]*models.User, len(ids))
	for _, id := range ids {
		if user, exists := m.users[id]; exists {
			users[id] = &user
		}
	}
	return users, nil
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return repositories.ErrNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *UserRepository) List() ([]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		user := user
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// GroupRepository implementation
type GroupRepository Store

func (m *GroupRepository) Create(group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.groups {
		if existing.Slug == group.Slug {
			return repositories.ErrDuplicate
		}
	}
	group.ID = (*Store)(m).next("group")
	m.groups[group.ID] = *group
	return nil
}

func (m *GroupRepository) GetByID(id int) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &group, nil
}

func (m *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, group := range m.groups {
		if group.Slug == slug {
			return &group, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List() ([]*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	groups := make([]*models.Group, 0, len(m.groups))
	for _, group := range m.groups {
		group := group
		groups = append(groups, &group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (m *GroupRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.groups[id]; !exists {
		return repositories.ErrNotFound
	}
	for postID, post := range m.posts {
		if post.InGroup(id) {
			post.GroupID = nil
			m.posts[postID] = post
		}
	}
	delete(m.groups, id)
	return nil
}

// PostRepository implementation
type PostRepository Store

func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = (*Store)(m).next("post")
	m.posts[post.ID] = detachPost(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = detachPost(post)
	return nil
}

func (m *PostRepository) Count(filter repositories.PostFilter) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.filter(filter)), nil
}

func (m *PostRepository) List(filter repositories.PostFilter, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	matched := m.filter(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return matched[i].ID > matched[j].ID
	})

	posts := []*models.Post{}
	for i := offset; i < len(matched) && len(posts) < limit; i++ {
		posts = append(posts, matched[i])
	}
	return posts, nil
}

func (m *PostRepository) filter(filter repositories.PostFilter) []*models.Post {
	var matched []*models.Post
	for _, post := range m.posts {
		post := post
		switch {
		case filter.FollowerID != 0:
			if _, follows := m.follows[[2]int{filter.FollowerID, post.AuthorID}]; !follows {
				continue
			}
		case filter.AuthorID != 0:
			if post.AuthorID != filter.AuthorID {
				continue
			}
		case filter.GroupID != 0:
			if !post.InGroup(filter.GroupID) {
				continue
			}
		}
		matched = append(matched, &post)
	}
	return matched
}

// detachPost copies a post without its display-only relations, the way a
// real store persists it.
func detachPost(post *models.Post) models.Post {
	stored := *post
	stored.Author = nil
	stored.Group = nil
	if post.GroupID != nil {
		groupID := *post.GroupID
		stored.GroupID = &groupID
	}
	return stored
}

// CommentRepository implementation
type CommentRepository Store

func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = (*Store)(m).next("comment")
	stored := *comment
	stored.Post = nil
	stored.Author = nil
	m.comments[comment.ID] = stored
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if comment.PostID == postID {
			comment := comment
			comments = append(comments, &comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// FollowRepository implementation
type FollowRepository Store

func (m *FollowRepository) Create(follow *models.Follow) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := [2]int{follow.UserID, follow.AuthorID}
	if _, exists := m.follows[key]; exists {
		return false, nil
	}
	follow.ID = (*Store)(m).next("follow")
	m.follows[key] = *follow
	return true, nil
}

func (m *FollowRepository) Delete(userID, authorID int) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := [2]int{userID, authorID}
	if _, exists := m.follows[key]; !exists {
		return false, nil
	}
	delete(m.follows, key)
	return true, nil
}

func (m *FollowRepository) Exists(userID, authorID int) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, exists := m.follows[[2]int{userID, authorID}]
	return exists, nil
}

func (m *FollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var ids []int
	for key := range m.follows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	sort.Ints(ids)
	return ids, nil
}
