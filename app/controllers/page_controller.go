package controllers

import (
	"net/http"

	"yatube/app/views"

	"github.com/sirupsen/logrus"
)

// PageController serves static pages and the error pages.
type PageController struct {
	responder
}

func NewPageController(renderer *views.Renderer, log logrus.FieldLogger) *PageController {
	return &PageController{responder: responder{views: renderer, log: log}}
}

func (pc *PageController) AboutAuthor(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.AboutAuthor, &views.Context{Title: "Об авторе проекта"})
}

func (pc *PageController) AboutTech(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.AboutTech, &views.Context{Title: "Технологии"})
}
