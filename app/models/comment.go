package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return errors.New("text cannot be blank")
	}
	if c.Created.IsZero() {
		return errors.New("created cannot be zero")
	}
	return validate.Struct(c)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.Post = post
	c.PostID = post.ID
	return nil
}

// SetAuthor sets the comment author and updates the AuthorID
func (c *Comment) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}

	c.Author = author
	c.AuthorID = author.ID
	return nil
}
