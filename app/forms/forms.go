// Package forms validates user submitted data before it reaches storage.
//
// Forms collect every problem as a message attached to the offending field
// so templates can show them next to the input. They never look at the
// current user; callers attach ownership after a form validates.
package forms

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/app/models"

	"github.com/go-playground/validator/v10"
)

// NonField keys errors that concern the form as a whole.
const NonField = "__all__"

const (
	MsgRequired        = "Обязательное поле."
	MsgInvalidChoice   = "Выберите корректный вариант. Вашего варианта нет среди допустимых значений."
	MsgInvalidImage    = "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением."
	MsgEmptyFile       = "Отправленный файл пуст."
	MsgInvalidEmail    = "Введите правильный адрес электронной почты."
	MsgInvalidUsername = "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и знаки @/./+/-/_."
	MsgUsernameTaken   = "Пользователь с таким именем уже существует."
	MsgPasswordMatch   = "Введенные пароли не совпадают."
	MsgPasswordNumeric = "Введённый пароль состоит только из цифр."
	MsgPasswordTooLong = "Пароль слишком длинный. Максимальная длина 72 байта."
	MsgBadLogin        = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."
	MsgBadOldPassword  = "Ваш старый пароль введен неправильно. Пожалуйста, введите его снова."
)

// MinPasswordLength is the shortest password accepted on signup and change.
const MinPasswordLength = 8

// Field describes how an input is presented.
type Field struct {
	Name     string
	Label    string
	HelpText string
}

// Errors maps a field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the messages for field, nil when it is valid.
func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// addValidationErrors turns validator failures into field messages.
func addValidationErrors(errs Errors, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов (сейчас %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "min":
		return fmt.Sprintf("Введённый пароль слишком короткий. Он должен содержать как минимум %s символов.", fe.Param())
	case "email":
		return MsgInvalidEmail
	case "username":
		return MsgInvalidUsername
	case "eqfield":
		return MsgPasswordMatch
	default:
		return "Введите правильное значение."
	}
}

func validateStruct(form interface{}, errs Errors) error {
	return addValidationErrors(errs, models.Validator().Struct(form))
}

// MaxUploadSize bounds multipart bodies accepted by Parse helpers.
const MaxUploadSize = 10 << 20

// parseRequest parses url-encoded and multipart bodies alike.
func parseRequest(r *http.Request) error {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}
