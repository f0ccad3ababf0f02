package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("text cannot be blank")
	}
	if p.PubDate.IsZero() {
		return errors.New("pub_date cannot be zero")
	}
	return validate.Struct(p)
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
}

// SetGroup files the post under group, or clears the group when nil.
func (p *Post) SetGroup(group *Group) {
	p.Group = group
	if group == nil {
		p.GroupID = nil
		return
	}
	id := group.ID
	p.GroupID = &id
}

// InGroup reports whether the post is filed under the group with id.
func (p *Post) InGroup(id int) bool {
	return p.GroupID != nil && *p.GroupID == id
}

// Excerpt returns at most n runes of the post text.
func (p *Post) Excerpt(n int) string {
	runes := []rune(p.Text)
	if len(runes) <= n {
		return p.Text
	}
	return string(runes[:n])
}

func (p *Post) String() string {
	return p.Excerpt(15)
}
