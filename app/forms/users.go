package forms

import (
	"net/http"
	"strings"
	"unicode"

	"yatube/app/models"
)

var (
	FirstNameField = Field{Name: "first_name", Label: "Имя"}
	LastNameField  = Field{Name: "last_name", Label: "Фамилия"}
	UsernameField  = Field{
		Name:     "username",
		Label:    "Имя пользователя",
		HelpText: "Обязательное поле. Не более 150 символов. Только буквы, цифры и символы @/./+/-/_.",
	}
	EmailField     = Field{Name: "email", Label: "Адрес электронной почты"}
	Password1Field = Field{Name: "password1", Label: "Пароль"}
	Password2Field = Field{
		Name:     "password2",
		Label:    "Подтверждение пароля",
		HelpText: "Для подтверждения введите, пожалуйста, пароль ещё раз.",
	}
	PasswordField     = Field{Name: "password", Label: "Пароль"}
	OldPasswordField  = Field{Name: "old_password", Label: "Старый пароль"}
	NewPassword1Field = Field{Name: "new_password1", Label: "Новый пароль"}
	NewPassword2Field = Field{Name: "new_password2", Label: "Подтверждение нового пароля"}
)

// SignupForm registers a new account.
type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
	Errors    Errors
}

func ParseSignupForm(r *http.Request) (*SignupForm, error) {
	if err := parseRequest(r); err != nil {
		return nil, err
	}
	return &SignupForm{
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
		Errors:    Errors{},
	}, nil
}

func (f *SignupForm) Validate() (bool, error) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if err := validateStruct(f, f.Errors); err != nil {
		return false, err
	}
	checkNewPassword(f.Errors, Password1Field.Name, f.Password1)
	return !f.Errors.Any(), nil
}

// User builds the account described by a valid form, password hashed.
func (f *SignupForm) User() (*models.User, error) {
	user := &models.User{
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
	}
	if err := user.SetPassword(f.Password1); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string
	Errors   Errors
}

func ParseLoginForm(r *http.Request) (*LoginForm, error) {
	if err := parseRequest(r); err != nil {
		return nil, err
	}
	return &LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     r.FormValue("next"),
		Errors:   Errors{},
	}, nil
}

func (f *LoginForm) Validate() (bool, error) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if err := validateStruct(f, f.Errors); err != nil {
		return false, err
	}
	return !f.Errors.Any(), nil
}

// PasswordChangeForm replaces the password of the signed in user.
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
	Errors       Errors
}

func ParsePasswordChangeForm(r *http.Request) (*PasswordChangeForm, error) {
	if err := parseRequest(r); err != nil {
		return nil, err
	}
	return &PasswordChangeForm{
		OldPassword:  r.PostFormValue("old_password"),
		NewPassword1: r.PostFormValue("new_password1"),
		NewPassword2: r.PostFormValue("new_password2"),
		Errors:       Errors{},
	}, nil
}

// Validate checks the new password and that old matches user's current one.
func (f *PasswordChangeForm) Validate(user *models.User) (bool, error) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if err := validateStruct(f, f.Errors); err != nil {
		return false, err
	}
	if f.OldPassword != "" && !user.CheckPassword(f.OldPassword) {
		f.Errors.Add(OldPasswordField.Name, MsgBadOldPassword)
	}
	checkNewPassword(f.Errors, NewPassword1Field.Name, f.NewPassword1)
	return !f.Errors.Any(), nil
}

// checkNewPassword adds the password rules the struct tags cannot express.
func checkNewPassword(errs Errors, field, password string) {
	if password == "" {
		return
	}
	if isNumeric(password) {
		errs.Add(field, MsgPasswordNumeric)
	}
	if len(password) > models.MaxPasswordBytes {
		errs.Add(field, MsgPasswordTooLong)
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
