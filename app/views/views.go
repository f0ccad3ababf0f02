// Package views renders the HTML pages of the site from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/services"
)

//go:embed templates
var files embed.FS

// Page template names.
const (
	Index          = "posts/index"
	GroupList      = "posts/group_list"
	Profile        = "posts/profile"
	PostDetail     = "posts/post_detail"
	CreatePost     = "posts/create_post"
	Follow         = "posts/follow"
	Signup         = "users/signup"
	Login          = "users/login"
	LoggedOut      = "users/logged_out"
	PasswordChange = "users/password_change_form"
	PasswordDone   = "users/password_change_done"
	AboutAuthor    = "about/author"
	AboutTech      = "about/tech"
	NotFound       = "core/404"
	ServerError    = "core/500"
)

var pages = []string{
	Index, GroupList, Profile, PostDetail, CreatePost, Follow,
	Signup, Login, LoggedOut, PasswordChange, PasswordDone,
	AboutAuthor, AboutTech, NotFound, ServerError,
}

// Context is everything a page template may show. Pages use the fields
// they need and ignore the rest.
type Context struct {
	Title       string
	CurrentUser *models.User
	Path        string

	// Listings
	Page      *services.PostPage
	Group     *models.Group
	Author    *models.User
	Following bool

	// Post detail
	Post        *models.Post
	PostsCount  int
	Comments    []*models.Comment
	CommentForm *forms.CommentForm

	// Post create and edit
	PostForm *forms.PostForm
	Groups   []*models.Group
	IsEdit   bool

	// Account forms
	Form interface{}
	Next string
}

// Renderer executes page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the layout and shared includes.
func New() (*Renderer, error) {
	includes, err := fs.Glob(files, "templates/includes/*.html")
	if err != nil {
		return nil, err
	}
	shared := append([]string{"templates/layout.html"}, includes...)

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		patterns := append(append([]string{}, shared...), "templates/"+name+".html")
		tmpl, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// MustNew is New for package initialisation and tests.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes page name with status. The page is executed into a buffer
// first so a template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data *Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"mediaURL":   mediaURL,
	"linebreaks": linebreaks,
	"date":       formatDate,
	"itoa":       strconv.Itoa,
}

// mediaURL is the public address of an uploaded file.
func mediaURL(name string) string {
	return "/media/" + name
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// linebreaks escapes text and turns newlines into <br>.
func linebreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}
