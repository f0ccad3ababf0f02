package services

import (
	"errors"
	"fmt"

	"yatube/app/forms"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/sirupsen/logrus"
)

// UserService handles registration and authentication.
type UserService struct {
	userRepo repositories.UserRepository
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewUserService(userRepo repositories.UserRepository, log logrus.FieldLogger, m *metrics.Metrics) *UserService {
	return &UserService{userRepo: userRepo, log: log, metrics: m}
}

func (s *UserService) GetByID(id int) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

// Register creates the account described by a signup form. A taken
// username is reported on the form like any other validation failure.
func (s *UserService) Register(form *forms.SignupForm) (*models.User, error) {
	valid, err := form.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate signup: %w", err)
	}
	if !valid {
		return nil, ErrInvalidForm
	}

	user, err := form.User()
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			form.Errors.Add(forms.UsernameField.Name, forms.MsgUsernameTaken)
			return nil, ErrInvalidForm
		}
		return nil, err
	}
	return user, nil
}

// CreateUser adds an account outside the signup flow.
func (s *UserService) CreateUser(username, password, email string) (*models.User, error) {
	user := &models.User{Username: username, Email: email}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) create(user *models.User) error {
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	if err := s.userRepo.Create(user); err != nil {
		return err
	}
	s.metrics.UserRegistered()
	s.log.WithField("user", user.Username).Info("User registered")
	return nil
}

// Authenticate returns the user matching the credentials on form. Wrong
// credentials add a form-wide message and yield ErrInvalidForm.
func (s *UserService) Authenticate(form *forms.LoginForm) (*models.User, error) {
	valid, err := form.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate login: %w", err)
	}
	if !valid {
		return nil, ErrInvalidForm
	}

	user, err := s.userRepo.GetByUsername(form.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		form.Errors.Add(forms.NonField, forms.MsgBadLogin)
		return nil, ErrInvalidForm
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(form.Password) {
		s.log.WithField("user", form.Username).Warn("Failed login attempt")
		form.Errors.Add(forms.NonField, forms.MsgBadLogin)
		return nil, ErrInvalidForm
	}
	return user, nil
}

// ChangePassword replaces the password of user after checking the old one.
func (s *UserService) ChangePassword(user *models.User, form *forms.PasswordChangeForm) error {
	valid, err := form.Validate(user)
	if err != nil {
		return fmt.Errorf("failed to validate password change: %w", err)
	}
	if !valid {
		return ErrInvalidForm
	}

	updated := *user
	if err := updated.SetPassword(form.NewPassword1); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.Update(&updated); err != nil {
		return err
	}
	*user = updated

	s.log.WithField("user", user.Username).Info("Password changed")
	return nil
}
