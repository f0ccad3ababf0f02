package models

import "time"

// User is a registered author or reader.
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:150;not null" validate:"required,max=150,username"`
	FirstName    string    `json:"first_name" gorm:"size:150" validate:"max=150"`
	LastName     string    `json:"last_name" gorm:"size:150" validate:"max=150"`
	Email        string    `json:"email" gorm:"size:254" validate:"omitempty,email,max=254"`
	PasswordHash string    `json:"password_hash" gorm:"not null" validate:"required"`
	DateJoined   time.Time `json:"date_joined" gorm:"not null" validate:"required"`
}

// Group is a named topic posts may be filed under.
type Group struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200;not null" validate:"required,max=200"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:50;not null" validate:"required,max=50,slug"`
	Description string `json:"description" gorm:"type:text;not null" validate:"required"`
}

// Post is a text entry written by a single author.
type Post struct {
	ID       int       `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null" validate:"required"`
	PubDate  time.Time `json:"pub_date" gorm:"index;not null" validate:"required"`
	AuthorID int       `json:"author_id" gorm:"index;not null" validate:"required,gt=0"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" validate:"-"`
	GroupID  *int      `json:"group_id,omitempty" gorm:"index" validate:"omitempty,gt=0"`
	Group    *Group    `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" validate:"-"`
	Image    string    `json:"image,omitempty" gorm:"size:100" validate:"max=100"`
}

// Comment is a reply left under a post.
type Comment struct {
	ID       int       `json:"id" gorm:"primaryKey"`
	PostID   int       `json:"post_id" gorm:"index;not null" validate:"required,gt=0"`
	Post     *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" validate:"-"`
	AuthorID int       `json:"author_id" gorm:"index;not null" validate:"required,gt=0"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" validate:"-"`
	Text     string    `json:"text" gorm:"type:text;not null" validate:"required"`
	Created  time.Time `json:"created" gorm:"not null" validate:"required"`
}

// Follow is a directed subscription of UserID to the posts of AuthorID.
type Follow struct {
	ID       int       `json:"id" gorm:"primaryKey"`
	UserID   int       `json:"user_id" gorm:"not null;uniqueIndex:idx_follow_user_author" validate:"required,gt=0,nefield=AuthorID"`
	AuthorID int       `json:"author_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author" validate:"required,gt=0"`
	Created  time.Time `json:"created" gorm:"not null" validate:"required"`
}
