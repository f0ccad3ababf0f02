package controllers

import (
	"errors"
	"net/http"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// flashComment carries a rejected comment back to the detail page: the
// text first, then its error messages.
const flashComment = "comment"

// PostController handles HTTP requests for blog posts
type PostController struct {
	responder
	posts    *services.PostService
	comments *services.CommentService
	follows  *services.FollowService
	groups   *services.GroupService
	users    *services.UserService
	sessions *auth.Sessions
}

// NewPostController creates a new PostController
func NewPostController(svc *services.Services, sessions *auth.Sessions, renderer *views.Renderer, log logrus.FieldLogger) *PostController {
	return &PostController{
		responder: responder{views: renderer, log: log},
		posts:     svc.Posts,
		comments:  svc.Comments,
		follows:   svc.Follows,
		groups:    svc.Groups,
		users:     svc.Users,
		sessions:  sessions,
	}
}

// Index lists every post, newest first
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.posts.ListPosts(repositories.PostFilter{}, pageParam(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Index, &views.Context{
		Title: "Последние обновления на сайте",
		Page:  page,
	})
}

// GroupPosts lists the posts filed under the group in the URL
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, err := pc.groups.GetBySlug(mux.Vars(r)["slug"])
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	page, err := pc.posts.ListPosts(repositories.PostFilter{GroupID: group.ID}, pageParam(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.GroupList, &views.Context{
		Title: "Записи сообщества " + group.String(),
		Group: group,
		Page:  page,
	})
}

// Profile lists the posts of one author
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, err := pc.users.GetByUsername(mux.Vars(r)["username"])
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	page, err := pc.posts.ListPosts(repositories.PostFilter{AuthorID: author.ID}, pageParam(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	following, err := pc.follows.IsFollowing(auth.CurrentUser(r), author)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Profile, &views.Context{
		Title:     author.FullName() + " профайл пользователя",
		Author:    author,
		Page:      page,
		Following: following,
	})
}

// FollowIndex lists the posts of every author the current user follows
func (pc *PostController) FollowIndex(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)
	page, err := pc.posts.ListPosts(repositories.PostFilter{FollowerID: user.ID}, pageParam(r))
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.Follow, &views.Context{
		Title: "Избранные авторы",
		Page:  page,
	})
}

// Show displays a single post with its comments. A POST binds the comment
// form and shows its errors without storing anything.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}
	post, err := pc.posts.GetPost(id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	form := forms.NewCommentForm()
	if r.Method == http.MethodPost {
		form, err = forms.ParseCommentForm(r)
		if err != nil {
			pc.badRequest(w, r, err)
			return
		}
		if _, err := form.Validate(); err != nil {
			pc.sendError(w, r, err)
			return
		}
	} else if flash := pc.sessions.Flashes(w, r, flashComment); len(flash) > 0 {
		form.Text = flash[0]
		for _, message := range flash[1:] {
			form.Errors.Add(forms.CommentTextField.Name, message)
		}
	}

	pc.showPost(w, r, post, form)
}

func (pc *PostController) showPost(w http.ResponseWriter, r *http.Request, post *models.Post, form *forms.CommentForm) {
	count, err := pc.posts.CountByAuthor(post.AuthorID)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	comments, err := pc.comments.ListPostComments(post.ID)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.PostDetail, &views.Context{
		Title:       "Пост " + post.Excerpt(30),
		Post:        post,
		PostsCount:  count,
		Comments:    comments,
		CommentForm: form,
	})
}

// Create shows the new post form and stores submitted posts
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)
	form := forms.NewPostForm()

	if r.Method == http.MethodPost {
		var err error
		form, err = forms.ParsePostForm(r)
		if err != nil {
			pc.badRequest(w, r, err)
			return
		}
		_, err = pc.posts.CreatePost(user, form)
		if err == nil {
			http.Redirect(w, r, profileURL(user.Username), http.StatusFound)
			return
		}
		if !errors.Is(err, services.ErrInvalidForm) {
			pc.sendError(w, r, err)
			return
		}
	}

	pc.renderPostForm(w, r, form, nil)
}

// Edit lets the author change a post. Anyone else is sent back to the post.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}
	post, err := pc.posts.GetPost(id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	user := auth.CurrentUser(r)
	if !pc.posts.CanEdit(post, user) {
		pc.log.WithFields(logrus.Fields{
			"post_id": post.ID,
			"user":    user.Username,
		}).Debug("Edit by non-author redirected")
		http.Redirect(w, r, postURL(post.ID), http.StatusFound)
		return
	}

	form := forms.PostFormFor(post)
	if r.Method == http.MethodPost {
		form, err = forms.ParsePostForm(r)
		if err != nil {
			pc.badRequest(w, r, err)
			return
		}
		err = pc.posts.UpdatePost(post, form)
		if err == nil {
			http.Redirect(w, r, postURL(post.ID), http.StatusFound)
			return
		}
		if !errors.Is(err, services.ErrInvalidForm) {
			pc.sendError(w, r, err)
			return
		}
	}

	pc.renderPostForm(w, r, form, post)
}

// renderPostForm shows the create form, or the edit form when post is set.
func (pc *PostController) renderPostForm(w http.ResponseWriter, r *http.Request, form *forms.PostForm, post *models.Post) {
	groups, err := pc.groups.List()
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	data := &views.Context{
		Title:    "Новый пост",
		PostForm: form,
		Groups:   groups,
	}
	if post != nil {
		data.Title = "Редактировать пост"
		data.Post = post
		data.IsEdit = true
	}
	pc.render(w, r, http.StatusOK, views.CreatePost, data)
}
