package routes

import (
	"net/http"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/controllers"
	"yatube/app/metrics"
	"yatube/app/middleware"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// IndexCacheKey prefixes cached renders of the home page.
const IndexCacheKey = "index_page"

// Deps is everything the router needs to build the controllers.
type Deps struct {
	Services *services.Services
	Sessions *auth.Sessions
	Views    *views.Renderer
	Log      logrus.FieldLogger
	// Cache holds rendered home pages for CacheTTL. Nil disables caching.
	Cache    cache.Store
	CacheTTL time.Duration
	// Metrics enables /metrics when set.
	Metrics   *metrics.Metrics
	StaticDir string
	MediaRoot string
}

// Setup defines the application's routes and returns a router.
func Setup(d Deps) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	postController := controllers.NewPostController(d.Services, d.Sessions, d.Views, d.Log)
	commentController := controllers.NewCommentController(d.Services, d.Sessions, d.Views, d.Log)
	followController := controllers.NewFollowController(d.Services, d.Views, d.Log)
	userController := controllers.NewUserController(d.Services, d.Sessions, d.Views, d.Log)
	pageController := controllers.NewPageController(d.Views, d.Log)

	// Apply global middleware
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.Recoverer(d.Log, http.HandlerFunc(pageController.ServerError)))
	router.Use(d.Sessions.Middleware)

	router.NotFoundHandler = middleware.Logger(d.Log)(d.Sessions.Middleware(http.HandlerFunc(pageController.NotFound)))

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireLogin(h)
	}

	// Static and uploaded files
	if d.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir)))).Name("static")
	}
	if d.MediaRoot != "" {
		router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(d.MediaRoot)))).Name("media")
	}
	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler()).Methods("GET").Name("metrics")
	}

	// Posts
	var index http.Handler = http.HandlerFunc(postController.Index)
	if d.Cache != nil {
		index = cache.Page(d.Cache, IndexCacheKey, d.CacheTTL, d.Metrics, d.Log)(index)
	}
	router.Handle("/", index).Methods("GET", "HEAD").Name("index")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET").Name("group_posts")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET").Name("profile")
	router.HandleFunc("/posts/{id:[0-9]+}/", postController.Show).Methods("GET", "POST").Name("post_detail")
	router.Handle("/posts/{id:[0-9]+}/edit/", protected(postController.Edit)).Methods("GET", "POST").Name("post_edit")
	router.Handle("/create/", protected(postController.Create)).Methods("GET", "POST").Name("post_create")
	router.Handle("/follow/", protected(postController.FollowIndex)).Methods("GET").Name("follow_index")

	// Comments
	router.Handle("/posts/{id:[0-9]+}/add_comment/", protected(commentController.Create)).Methods("POST").Name("add_comment")

	// Follows
	router.Handle("/profile/{username}/follow/", protected(followController.Follow)).Methods("GET", "POST").Name("profile_follow")
	router.Handle("/profile/{username}/unfollow/", protected(followController.Unfollow)).Methods("GET", "POST").Name("profile_unfollow")

	// Accounts
	users := router.PathPrefix("/auth").Subrouter()
	users.HandleFunc("/signup/", userController.Signup).Methods("GET", "POST").Name("signup")
	users.HandleFunc("/login/", userController.Login).Methods("GET", "POST").Name("login")
	users.HandleFunc("/logout/", userController.Logout).Methods("GET", "POST").Name("logout")
	users.Handle("/password_change/", protected(userController.PasswordChange)).Methods("GET", "POST").Name("password_change")
	users.Handle("/password_change/done/", protected(userController.PasswordChangeDone)).Methods("GET").Name("password_change_done")

	// Static pages
	router.HandleFunc("/about/author/", pageController.AboutAuthor).Methods("GET").Name("about_author")
	router.HandleFunc("/about/tech/", pageController.AboutTech).Methods("GET").Name("about_tech")

	return router
}
