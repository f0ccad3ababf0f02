package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage() *services.PostPage {
	author := &models.User{ID: 1, Username: "leo", FirstName: "Лев", LastName: "Толстой"}
	group := &models.Group{ID: 2, Title: "Классики", Slug: "classics"}
	post := &models.Post{
		ID:       3,
		Text:     "Все счастливые семьи похожи друг на друга\n<b>каждая</b>",
		PubDate:  time.Date(1877, 1, 1, 0, 0, 0, 0, time.UTC),
		AuthorID: author.ID,
		Author:   author,
		Image:    "posts/anna.gif",
	}
	post.SetGroup(group)
	return &services.PostPage{Page: pagination.New(25, 10, "2"), Posts: []*models.Post{post}}
}

func TestRenderEveryPage(t *testing.T) {
	r := MustNew()
	page := samplePage()
	post := page.Posts[0]
	author := post.Author
	user := &models.User{ID: 9, Username: "reader"}

	tests := []struct {
		name     string
		data     *Context
		contains []string
	}{
		{Index, &Context{Title: "Последние обновления на сайте", Path: "/", Page: page}, []string{
			"<title>Последние обновления на сайте</title>",
			"Все счастливые семьи похожи друг на друга<br>",
			"&lt;b&gt;каждая&lt;/b&gt;",
			`href="/group/classics/"`,
			`src="/media/posts/anna.gif"`,
			"01.01.1877",
			`href="?page=3"`,
		}},
		{GroupList, &Context{Title: "Записи сообщества Классики", Group: post.Group, Page: page}, []string{"<h1>Классики</h1>"}},
		{Profile, &Context{Title: "Лев Толстой профайл пользователя", CurrentUser: user, Author: author, Page: page}, []string{
			"Всего постов: 25",
			`href="/profile/leo/follow/"`,
		}},
		{Profile, &Context{CurrentUser: user, Author: author, Page: page, Following: true}, []string{`href="/profile/leo/unfollow/"`}},
		{Follow, &Context{Path: "/follow/", CurrentUser: user, Page: &services.PostPage{Page: pagination.New(0, 10, "")}}, []string{"Записей пока нет."}},
		{PostDetail, &Context{
			CurrentUser: author,
			Post:        post,
			PostsCount:  1,
			Comments:    []*models.Comment{{Text: "Прекрасно", Author: user}},
			CommentForm: &forms.CommentForm{Text: "черновик", Errors: forms.Errors{"text": {forms.MsgRequired}}},
		}, []string{
			"Всего постов автора: <span>1</span>",
			`href="/posts/3/edit/"`,
			`action="/posts/3/add_comment/"`,
			forms.MsgRequired,
			">черновик</textarea>",
			"Прекрасно",
		}},
		{CreatePost, &Context{
			PostForm: &forms.PostForm{Text: "Текст", GroupID: "2", Errors: forms.Errors{}},
			Groups:   []*models.Group{post.Group},
			Post:     post,
			IsEdit:   true,
		}, []string{`<option value="2" selected>Классики</option>`, "Сохранить", "image-clear"}},
		{CreatePost, &Context{PostForm: forms.NewPostForm()}, []string{"Новый пост", "Добавить"}},
		{Signup, &Context{Form: &forms.SignupForm{Username: "leo", Errors: forms.Errors{"username": {forms.MsgUsernameTaken}}}}, []string{forms.MsgUsernameTaken, `value="leo"`}},
		{Login, &Context{Form: &forms.LoginForm{Errors: forms.Errors{}}, Next: "/create/"}, []string{`name="next" value="/create/"`}},
		{LoggedOut, &Context{}, []string{"Вы вышли"}},
		{PasswordChange, &Context{CurrentUser: user, Form: &forms.PasswordChangeForm{Errors: forms.Errors{}}}, []string{"old_password"}},
		{PasswordDone, &Context{CurrentUser: user}, []string{"Пароль изменён"}},
		{AboutAuthor, &Context{}, []string{"Об авторе проекта"}},
		{AboutTech, &Context{}, []string{"Технологии"}},
		{NotFound, &Context{Path: "/missing/"}, []string{"/missing/"}},
		{ServerError, &Context{}, []string{"Custom 500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, r.Render(rec, http.StatusOK, tt.name, tt.data))
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			for _, want := range tt.contains {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestRenderStatusAndUnknownTemplate(t *testing.T) {
	r := MustNew()

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusNotFound, NotFound, &Context{Path: "/x/"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Error(t, r.Render(httptest.NewRecorder(), http.StatusOK, "posts/missing", &Context{}))
}

func TestRenderFailureWritesNothing(t *testing.T) {
	r := MustNew()

	// The listing template needs a page of posts
	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, Index, &Context{}))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestHeaderShowsUser(t *testing.T) {
	r := MustNew()

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, AboutTech, &Context{CurrentUser: &models.User{Username: "leo"}}))
	assert.Contains(t, rec.Body.String(), "Пользователь: leo")
	assert.Contains(t, rec.Body.String(), `href="/auth/logout/"`)

	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, AboutTech, &Context{}))
	assert.Contains(t, rec.Body.String(), `href="/auth/login/"`)
}
