package controllers

import (
	"errors"
	"net/http"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/sirupsen/logrus"
)

// UserController handles signup, login and password changes.
type UserController struct {
	responder
	users    *services.UserService
	sessions *auth.Sessions
}

func NewUserController(svc *services.Services, sessions *auth.Sessions, renderer *views.Renderer, log logrus.FieldLogger) *UserController {
	return &UserController{
		responder: responder{views: renderer, log: log},
		users:     svc.Users,
		sessions:  sessions,
	}
}

// Signup registers an account and sends the visitor to the home page.
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	form := &forms.SignupForm{Errors: forms.Errors{}}
	if r.Method == http.MethodPost {
		var err error
		form, err = forms.ParseSignupForm(r)
		if err != nil {
			uc.badRequest(w, r, err)
			return
		}
		_, err = uc.users.Register(form)
		if err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if !errors.Is(err, services.ErrInvalidForm) {
			uc.sendError(w, r, err)
			return
		}
	}
	uc.render(w, r, http.StatusOK, views.Signup, &views.Context{
		Title: "Зарегистрироваться",
		Form:  form,
	})
}

// Login signs the visitor in and returns to next, or the home page.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	form := &forms.LoginForm{Next: r.URL.Query().Get("next"), Errors: forms.Errors{}}
	if r.Method == http.MethodPost {
		var err error
		form, err = forms.ParseLoginForm(r)
		if err != nil {
			uc.badRequest(w, r, err)
			return
		}
		user, err := uc.users.Authenticate(form)
		switch {
		case err == nil:
			if err := uc.sessions.Login(w, r, user); err != nil {
				uc.sendError(w, r, err)
				return
			}
			target := auth.SafeNext(form.Next)
			if target == "" {
				target = "/"
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		case !errors.Is(err, services.ErrInvalidForm):
			uc.sendError(w, r, err)
			return
		}
	}
	uc.render(w, r, http.StatusOK, views.Login, &views.Context{
		Title: "Войти",
		Form:  form,
		Next:  auth.SafeNext(form.Next),
	})
}

// Logout ends the session and shows the goodbye page.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := uc.sessions.Logout(w, r); err != nil {
		uc.sendError(w, r, err)
		return
	}
	r = r.WithContext(auth.WithUser(r.Context(), nil))
	uc.render(w, r, http.StatusOK, views.LoggedOut, &views.Context{Title: "Вы вышли из системы"})
}

// PasswordChange replaces the password of the signed in user.
func (uc *UserController) PasswordChange(w http.ResponseWriter, r *http.Request) {
	form := &forms.PasswordChangeForm{Errors: forms.Errors{}}
	if r.Method == http.MethodPost {
		var err error
		form, err = forms.ParsePasswordChangeForm(r)
		if err != nil {
			uc.badRequest(w, r, err)
			return
		}
		err = uc.users.ChangePassword(auth.CurrentUser(r), form)
		if err == nil {
			http.Redirect(w, r, "/auth/password_change/done/", http.StatusFound)
			return
		}
		if !errors.Is(err, services.ErrInvalidForm) {
			uc.sendError(w, r, err)
			return
		}
	}
	uc.render(w, r, http.StatusOK, views.PasswordChange, &views.Context{
		Title: "Изменить пароль",
		Form:  form,
	})
}

func (uc *UserController) PasswordChangeDone(w http.ResponseWriter, r *http.Request) {
	uc.render(w, r, http.StatusOK, views.PasswordDone, &views.Context{Title: "Пароль изменён"})
}
