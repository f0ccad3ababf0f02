package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"yatube/app/auth"
	"yatube/app/repositories"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// responder renders pages and error pages for every controller.
type responder struct {
	views *views.Renderer
	log   logrus.FieldLogger
}

// render fills in the fields every page shows and writes the page.
func (rs *responder) render(w http.ResponseWriter, r *http.Request, status int, name string, data *views.Context) {
	data.CurrentUser = auth.CurrentUser(r)
	data.Path = r.URL.Path
	if err := rs.views.Render(w, status, name, data); err != nil {
		rs.log.WithError(err).WithField("template", name).Error("Template error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// NotFound renders the not found page.
func (rs *responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.render(w, r, http.StatusNotFound, views.NotFound, &views.Context{Title: "Страница не найдена"})
}

// ServerError renders the server error page.
func (rs *responder) ServerError(w http.ResponseWriter, r *http.Request) {
	rs.render(w, r, http.StatusInternalServerError, views.ServerError, &views.Context{Title: "Ошибка сервера"})
}

// sendError maps err onto the not found or server error page.
func (rs *responder) sendError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		rs.NotFound(w, r)
		return
	}
	rs.log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("Request failed")
	rs.ServerError(w, r)
}

func (rs *responder) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	rs.log.WithError(err).WithField("path", r.URL.Path).Warn("Malformed request body")
	http.Error(w, "Bad Request", http.StatusBadRequest)
}

// postID reads the {id} route variable.
func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

func pageParam(r *http.Request) string {
	return r.URL.Query().Get("page")
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
