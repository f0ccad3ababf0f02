package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"yatube/app/forms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postMarker = "подробная информация"

func TestPublicPages(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	group := app.group(t, "cats")
	post := app.post(t, author, "Первый пост")

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"index", "/", http.StatusOK, "Последние обновления на сайте"},
		{"group", "/group/cats/", http.StatusOK, group.Title},
		{"profile", "/profile/leo/", http.StatusOK, "Всего постов: 1"},
		{"post detail", "/posts/" + strconv.Itoa(post.ID) + "/", http.StatusOK, "Первый пост"},
		{"about author", "/about/author/", http.StatusOK, "Об авторе"},
		{"about tech", "/about/tech/", http.StatusOK, "Технологии"},
		{"signup", "/auth/signup/", http.StatusOK, "password1"},
		{"login", "/auth/login/", http.StatusOK, "Войти на сайт"},
		{"unknown page", "/unexisting_page/", http.StatusNotFound, "Custom 404"},
		{"unknown group", "/group/dogs/", http.StatusNotFound, "Custom 404"},
		{"unknown profile", "/profile/nobody/", http.StatusNotFound, "Custom 404"},
		{"unknown post", "/posts/999/", http.StatusNotFound, "Custom 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.guest().get(tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		})
	}
}

func TestNotFoundShowsPath(t *testing.T) {
	app := setupTestApp(t)

	w := app.guest().get("/no/such/page/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "/no/such/page/")
}

func TestProtectedPagesRedirectGuests(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	post := app.post(t, author, "Текст")
	id := strconv.Itoa(post.ID)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/create/"},
		{http.MethodGet, "/follow/"},
		{http.MethodGet, "/posts/" + id + "/edit/"},
		{http.MethodPost, "/posts/" + id + "/add_comment/"},
		{http.MethodGet, "/profile/leo/follow/"},
		{http.MethodGet, "/profile/leo/unfollow/"},
		{http.MethodGet, "/auth/password_change/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			c := app.guest()
			var code int
			var location string
			if tt.method == http.MethodPost {
				w := c.post(tt.path, url.Values{"text": {"x"}})
				code, location = w.Code, w.Header().Get("Location")
			} else {
				w := c.get(tt.path)
				code, location = w.Code, w.Header().Get("Location")
			}
			assert.Equal(t, http.StatusFound, code)
			assert.Equal(t, "/auth/login/?next="+tt.path, location)
		})
	}
	assert.Equal(t, 0, app.countFollows(t, author))
}

func TestPagination(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	group := app.group(t, "cats")
	for i := 0; i < 13; i++ {
		post := app.post(t, author, fmt.Sprintf("Пост номер %d", i))
		post.SetGroup(group)
		require.NoError(t, app.store.Posts().Update(post))
	}
	follower := app.user(t, "reader")
	_, err := app.services.Follows.Follow(follower, "leo")
	require.NoError(t, err)
	reader := app.login(t, "reader")

	for _, base := range []string{"/", "/group/cats/", "/profile/leo/", "/follow/"} {
		t.Run(base, func(t *testing.T) {
			app.clearCache(t)
			first := reader.get(base)
			require.Equal(t, http.StatusOK, first.Code)
			assert.Equal(t, 10, strings.Count(first.Body.String(), postMarker))
			assert.Contains(t, first.Body.String(), "Записи 1-10 из 13")

			app.clearCache(t)
			second := reader.get(base + "?page=2")
			require.Equal(t, http.StatusOK, second.Code)
			assert.Equal(t, 3, strings.Count(second.Body.String(), postMarker))
			assert.Contains(t, second.Body.String(), "Записи 11-13 из 13")
		})
	}
}

func TestIndexShowsNewestFirst(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	app.post(t, author, "старый пост")
	app.post(t, author, "новый пост")

	body := app.guest().get("/").Body.String()
	assert.Less(t, strings.Index(body, "новый пост"), strings.Index(body, "старый пост"))
}

func TestCreatePost(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	group := app.group(t, "cats")
	c := app.login(t, "leo")

	w := c.get("/create/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Новый пост")

	w = c.post("/create/", url.Values{"text": {"Пост из формы"}, "group": {strconv.Itoa(group.ID)}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.Equal(t, 1, app.countPosts(t))

	page := app.guest().get("/group/cats/")
	assert.Contains(t, page.Body.String(), "Пост из формы")
}

func TestCreateEmptyPostIsRejected(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	c := app.login(t, "leo")

	w := c.post("/create/", url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), forms.MsgRequired)
	assert.Equal(t, 0, app.countPosts(t))
}

func TestCreatePostWithUnknownGroup(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	c := app.login(t, "leo")

	w := c.post("/create/", url.Values{"text": {"Текст"}, "group": {"42"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), forms.MsgInvalidChoice)
	assert.Equal(t, 0, app.countPosts(t))
}

func TestEditPost(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	app.user(t, "mallory")
	post := app.post(t, author, "Исходный текст")
	editPath := "/posts/" + strconv.Itoa(post.ID) + "/edit/"
	detailPath := "/posts/" + strconv.Itoa(post.ID) + "/"

	t.Run("non-author is sent to the post", func(t *testing.T) {
		c := app.login(t, "mallory")
		w := c.get(editPath)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		w = c.post(editPath, url.Values{"text": {"Взлом"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		stored, err := app.store.Posts().GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Исходный текст", stored.Text)
	})

	t.Run("author sees prefilled form", func(t *testing.T) {
		c := app.login(t, "leo")
		w := c.get(editPath)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Редактировать пост")
		assert.Contains(t, w.Body.String(), "Исходный текст")
	})

	t.Run("author saves changes", func(t *testing.T) {
		c := app.login(t, "leo")
		w := c.post(editPath, url.Values{"text": {"Новый текст"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		stored, err := app.store.Posts().GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Новый текст", stored.Text)
		assert.Equal(t, author.ID, stored.AuthorID)
		assert.Equal(t, 1, app.countPosts(t))
	})

	t.Run("author cannot blank the text", func(t *testing.T) {
		c := app.login(t, "leo")
		w := c.post(editPath, url.Values{"text": {""}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), forms.MsgRequired)
	})
}

func TestComments(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	app.user(t, "reader")
	post := app.post(t, author, "Пост для обсуждения")
	detailPath := "/posts/" + strconv.Itoa(post.ID) + "/"
	commentPath := detailPath + "add_comment/"
	c := app.login(t, "reader")

	t.Run("empty comment shows errors once", func(t *testing.T) {
		w := c.post(commentPath, url.Values{"text": {"  "}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		page := c.get(detailPath)
		assert.Contains(t, page.Body.String(), forms.MsgRequired)

		again := c.get(detailPath)
		assert.NotContains(t, again.Body.String(), forms.MsgRequired)
	})

	t.Run("valid comment appears on the post", func(t *testing.T) {
		w := c.post(commentPath, url.Values{"text": {"Отличный пост"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		page := app.guest().get(detailPath)
		assert.Contains(t, page.Body.String(), "Отличный пост")
		assert.Contains(t, page.Body.String(), "reader")
	})

	t.Run("guests see no comment form", func(t *testing.T) {
		page := app.guest().get(detailPath)
		assert.NotContains(t, page.Body.String(), "Добавить комментарий")
	})

	t.Run("unknown post", func(t *testing.T) {
		w := c.post("/posts/999/add_comment/", url.Values{"text": {"Текст"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFollowAndUnfollow(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	reader := app.user(t, "reader")
	c := app.login(t, "reader")

	w := c.get("/profile/leo/follow/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.Equal(t, 1, app.countFollows(t, reader))

	c.get("/profile/leo/follow/")
	assert.Equal(t, 1, app.countFollows(t, reader))

	profile := c.get("/profile/leo/")
	assert.Contains(t, profile.Body.String(), "/profile/leo/unfollow/")

	w = c.post("/profile/leo/unfollow/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 0, app.countFollows(t, reader))

	profile = c.get("/profile/leo/")
	assert.Contains(t, profile.Body.String(), "/profile/leo/follow/")
}

func TestFollowRedirectsToReferer(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	app.user(t, "reader")
	c := app.login(t, "reader")

	req := newGet("/profile/leo/follow/")
	req.Header.Set("Referer", "/group/cats/")
	w := c.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/group/cats/", w.Header().Get("Location"))
}

func TestSelfFollowIsIgnored(t *testing.T) {
	app := setupTestApp(t)
	leo := app.user(t, "leo")
	c := app.login(t, "leo")

	w := c.get("/profile/leo/follow/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 0, app.countFollows(t, leo))
}

func TestFollowUnknownAuthor(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "reader")
	c := app.login(t, "reader")

	w := c.get("/profile/nobody/follow/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowFeed(t *testing.T) {
	app := setupTestApp(t)
	b := app.user(t, "b")
	app.user(t, "a")
	app.user(t, "c")
	app.post(t, b, "Запись автора B")

	followerA := app.login(t, "a")
	followerA.get("/profile/b/follow/")

	feed := followerA.get("/follow/")
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Body.String(), "Запись автора B")

	other := app.login(t, "c").get("/follow/")
	require.Equal(t, http.StatusOK, other.Code)
	assert.NotContains(t, other.Body.String(), "Запись автора B")
}

func TestIndexCache(t *testing.T) {
	app := setupTestApp(t)
	author := app.user(t, "leo")
	app.post(t, author, "Первая запись")
	c := app.guest()

	first := c.get("/")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Cache"))

	app.post(t, author, "Свежая запись")

	cached := c.get("/")
	assert.Equal(t, "HIT", cached.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.Bytes(), cached.Body.Bytes())
	assert.NotContains(t, cached.Body.String(), "Свежая запись")

	app.clearCache(t)

	fresh := c.get("/")
	assert.NotEqual(t, first.Body.Bytes(), fresh.Body.Bytes())
	assert.Contains(t, fresh.Body.String(), "Свежая запись")
}

func TestIndexCacheServesSameHeaderToEveryone(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")

	signedIn := app.login(t, "leo").get("/")
	require.Contains(t, signedIn.Body.String(), "Пользователь: leo")

	guest := app.guest().get("/")
	assert.Equal(t, signedIn.Body.Bytes(), guest.Body.Bytes())
}

func TestSignupAndLogin(t *testing.T) {
	app := setupTestApp(t)
	c := app.guest()

	w := c.post("/auth/signup/", url.Values{
		"first_name": {"Лев"},
		"last_name":  {"Толстой"},
		"username":   {"leo"},
		"email":      {"leo@example.com"},
		"password1":  {testPassword},
		"password2":  {testPassword},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	user, err := app.services.Users.GetByUsername("leo")
	require.NoError(t, err)
	assert.Equal(t, "Лев Толстой", user.FullName())

	w = c.post("/auth/login/", url.Values{
		"username": {"leo"},
		"password": {testPassword},
		"next":     {"/create/"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))

	page := c.get("/create/")
	assert.Equal(t, http.StatusOK, page.Code)
}

func TestSignupDuplicateUsername(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")

	w := app.guest().post("/auth/signup/", url.Values{
		"username":  {"leo"},
		"password1": {testPassword},
		"password2": {testPassword},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), forms.MsgUsernameTaken)
}

func TestOverlongPasswordIsRejected(t *testing.T) {
	long := testPassword + strings.Repeat("x", 90-len(testPassword))

	t.Run("signup", func(t *testing.T) {
		app := setupTestApp(t)
		w := app.guest().post("/auth/signup/", url.Values{
			"username":  {"leo"},
			"password1": {long},
			"password2": {long},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), forms.MsgPasswordTooLong)

		_, err := app.services.Users.GetByUsername("leo")
		assert.Error(t, err)
	})

	t.Run("password change", func(t *testing.T) {
		app := setupTestApp(t)
		app.user(t, "leo")
		c := app.login(t, "leo")

		w := c.post("/auth/password_change/", url.Values{
			"old_password":  {testPassword},
			"new_password1": {long},
			"new_password2": {long},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), forms.MsgPasswordTooLong)

		w = app.guest().post("/auth/login/", url.Values{"username": {"leo"}, "password": {testPassword}})
		assert.Equal(t, http.StatusFound, w.Code)
	})
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")

	w := app.guest().post("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), forms.MsgBadLogin)
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")

	w := app.guest().post("/auth/login/", url.Values{
		"username": {"leo"},
		"password": {testPassword},
		"next":     {"//evil.example.com/"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	c := app.login(t, "leo")

	w := c.get("/auth/logout/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Войти")

	w = c.get("/create/")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestPasswordChange(t *testing.T) {
	app := setupTestApp(t)
	app.user(t, "leo")
	c := app.login(t, "leo")

	w := c.post("/auth/password_change/", url.Values{
		"old_password":  {testPassword},
		"new_password1": {"Another456pass"},
		"new_password2": {"Another456pass"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/password_change/done/", w.Header().Get("Location"))

	done := c.get("/auth/password_change/done/")
	assert.Equal(t, http.StatusOK, done.Code)

	w = app.guest().post("/auth/login/", url.Values{"username": {"leo"}, "password": {"Another456pass"}})
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestIndexMethods(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		method string
		status int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
		{http.MethodPut, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.router.ServeHTTP(w, httptest.NewRequest(tt.method, "/", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMissingTrailingSlashRedirects(t *testing.T) {
	app := setupTestApp(t)

	w := app.guest().get("/about/author")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/about/author/", w.Header().Get("Location"))
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp(t)
	c := app.guest()
	c.get("/about/tech/")

	w := c.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yatube_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="about_tech"`)
}
