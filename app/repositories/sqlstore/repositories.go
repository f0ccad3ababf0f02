package sqlstore

import (
	"yatube/app/models"
	"yatube/app/repositories"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(user *models.User) error {
	return translate(r.db.Create(user).Error)
}

func (r *UserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetMany(ids []int) (map[int]*models.User, error) {
	users := make(map[int]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var found []*models.User
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, translate(err)
	}
	for _, user := range found {
		users[user.ID] = user
	}
	return users, nil
}

func (r *UserRepository) Update(user *models.User) error {
	res := r.db.Model(user).Select("*").Updates(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List() ([]*models.User, error) {
	var users []*models.User
	if err := r.db.Order("id").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

type GroupRepository struct {
	db *gorm.DB
}

func (r *GroupRepository) Create(group *models.Group) error {
	return translate(r.db.Create(group).Error)
}

func (r *GroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (r *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (r *GroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.Order("id").Find(&groups).Error; err != nil {
		return nil, translate(err)
	}
	return groups, nil
}

// Delete detaches the group's posts explicitly so SQLite databases opened
// without foreign key enforcement behave like PostgreSQL.
func (r *GroupRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).
			Where("group_id = ?", id).
			Update("group_id", nil).Error
		if err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
}

type PostRepository struct {
	db *gorm.DB
}

func (r *PostRepository) Create(post *models.Post) error {
	return translate(r.db.Omit(clause.Associations).Create(post).Error)
}

func (r *PostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *PostRepository) Update(post *models.Post) error {
	res := r.db.Model(post).Select("*").Omit(clause.Associations).Updates(post)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *PostRepository) filtered(filter repositories.PostFilter) *gorm.DB {
	query := r.db.Model(&models.Post{})
	switch {
	case filter.FollowerID != 0:
		followed := r.db.Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", filter.FollowerID)
		query = query.Where("author_id IN (?)", followed)
	case filter.AuthorID != 0:
		query = query.Where("author_id = ?", filter.AuthorID)
	case filter.GroupID != 0:
		query = query.Where("group_id = ?", filter.GroupID)
	}
	return query
}

func (r *PostRepository) Count(filter repositories.PostFilter) (int, error) {
	var count int64
	if err := r.filtered(filter).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return int(count), nil
}

func (r *PostRepository) List(filter repositories.PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.filtered(filter).
		Order("pub_date DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

type CommentRepository struct {
	db *gorm.DB
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	var count int64
	if err := r.db.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count == 0 {
		return repositories.ErrNotFound
	}
	return translate(r.db.Omit(clause.Associations).Create(comment).Error)
}

func (r *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.Where("post_id = ?", postID).
		Order("created").
		Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err)
	}
	return comments, nil
}

// FollowRepository relies on the unique (user_id, author_id) index; a
// racing duplicate insert becomes a no-op instead of a second edge.
type FollowRepository struct {
	db *gorm.DB
}

func (r *FollowRepository) Create(follow *models.Follow) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *FollowRepository) Delete(userID, authorID int) (bool, error) {
	res := r.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *FollowRepository) Exists(userID, authorID int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *FollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Order("author_id").
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}
