// Package auth keeps the signed in user in a cookie session and guards
// handlers that need one.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const (
	// SessionName is the cookie holding the session.
	SessionName = "yatube_session"
	// LoginPath is where anonymous visitors of protected pages are sent.
	LoginPath = "/auth/login/"

	userIDKey = "user_id"
)

type contextKey int

const userKey contextKey = 0

// UserLookup resolves the user stored in a session.
type UserLookup interface {
	GetByID(id int) (*models.User, error)
}

// Sessions reads and writes the session of a request.
type Sessions struct {
	store sessions.Store
	users UserLookup
	log   logrus.FieldLogger
}

// NewCookieStore signs session cookies with key.
func NewCookieStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 14,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func New(store sessions.Store, users UserLookup, log logrus.FieldLogger) *Sessions {
	return &Sessions{store: store, users: users, log: log}
}

// session returns the request session. A cookie that fails to decode is
// replaced by a fresh session.
func (s *Sessions) session(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		s.log.WithError(err).Debug("Discarding unreadable session")
	}
	return session
}

// Middleware attaches the signed in user, if any, to the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.session(r).Values[userIDKey].(int)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.users.GetByID(id)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
		case err != nil:
			s.log.WithError(err).WithField("user_id", id).Error("Failed to load session user")
		default:
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a context carrying user as the signed in user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the signed in user, nil for anonymous requests.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

// Login starts a session for user.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session := s.session(r)
	session.Values[userIDKey] = user.ID
	return session.Save(r, w)
}

// Logout ends the session and expires its cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session := s.session(r)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// AddFlash queues value under key for the next request that asks for it.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, key string, values ...string) error {
	session := s.session(r)
	for _, value := range values {
		session.AddFlash(value, key)
	}
	return session.Save(r, w)
}

// Flashes returns and clears the values queued under key.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request, key string) []string {
	session := s.session(r)
	flashes := session.Flashes(key)
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		s.log.WithError(err).Warn("Failed to clear flashes")
	}

	values := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if value, ok := flash.(string); ok {
			values = append(values, value)
		}
	}
	return values
}

// RequireLogin redirects anonymous requests to the login page with a next
// parameter pointing back at the original URL.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL is the login page returning to next after signing in. Slashes
// in next are left unescaped.
func LoginURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next when it is a path on this site, "" otherwise.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
