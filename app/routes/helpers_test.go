package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/logging"
	"yatube/app/media"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret123pass"

type testApp struct {
	router   *mux.Router
	store    *repositories.BadgerStore
	services *services.Services
	cache    *cache.BadgerStore
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	models.PasswordCost = bcrypt.MinCost

	store, err := repositories.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pageCache, err := cache.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { pageCache.Close() })

	log := logging.Discard()
	m := metrics.New(prometheus.NewRegistry())
	mediaRoot := t.TempDir()
	svc := services.New(store, media.NewStorage(mediaRoot), 10, log, m)
	sessions := auth.New(auth.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false), svc.Users, log)

	router := Setup(Deps{
		Services:  svc,
		Sessions:  sessions,
		Views:     views.MustNew(),
		Log:       log,
		Cache:     pageCache,
		CacheTTL:  20 * time.Second,
		Metrics:   m,
		MediaRoot: mediaRoot,
	})
	return &testApp{router: router, store: store, services: svc, cache: pageCache}
}

func (a *testApp) user(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := a.services.Users.CreateUser(username, testPassword, "")
	require.NoError(t, err)
	return user
}

func (a *testApp) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	group, err := a.services.Groups.CreateGroup(slug, "Группа "+slug, "Описание группы")
	require.NoError(t, err)
	return group
}

func (a *testApp) post(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Text: text}
	post.BeforeCreate()
	require.NoError(t, a.store.Posts().Create(post))
	return post
}

func (a *testApp) countPosts(t *testing.T) int {
	t.Helper()
	count, err := a.store.Posts().Count(repositories.PostFilter{})
	require.NoError(t, err)
	return count
}

func (a *testApp) countFollows(t *testing.T, user *models.User) int {
	t.Helper()
	ids, err := a.store.Follows().ListAuthorIDs(user.ID)
	require.NoError(t, err)
	return len(ids)
}

func (a *testApp) clearCache(t *testing.T) {
	t.Helper()
	require.NoError(t, a.cache.Clear(context.Background()))
}

// client sends requests through the router and keeps session cookies the
// way a browser would. Redirects are not followed.
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) guest() *client {
	return &client{app: a, cookies: make(map[string]*http.Cookie)}
}

// login signs username in through the login form.
func (a *testApp) login(t *testing.T, username string) *client {
	t.Helper()
	c := a.guest()
	w := c.post("/auth/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(newGet(target))
}

func (c *client) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func newGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
