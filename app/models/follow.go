package models

import (
	"errors"
	"time"
)

// ErrSelfFollow is returned when a user tries to subscribe to themselves.
var ErrSelfFollow = errors.New("user cannot follow themselves")

// Validate checks if the follow edge meets all validation requirements
func (f *Follow) Validate() error {
	if f.UserID != 0 && f.UserID == f.AuthorID {
		return ErrSelfFollow
	}
	if f.Created.IsZero() {
		return errors.New("created cannot be zero")
	}
	return validate.Struct(f)
}

// BeforeCreate sets up any necessary fields before creation
func (f *Follow) BeforeCreate() {
	if f.Created.IsZero() {
		f.Created = time.Now()
	}
}
