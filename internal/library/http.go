// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/zrecovery/library-sub000/internal/platform/request"
	"github.com/zrecovery/library-sub000/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes the catalogue over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler] over service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the article endpoints, mounted at /articles.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listArticles)
	router.Post("/", handler.createArticle)
	router.Get("/{id}", handler.getArticle)
	router.Patch("/{id}", handler.editArticle)
	router.Delete("/{id}", handler.removeArticle)

	return router
}

// AuthorRoutes returns the person endpoints, mounted at /authors.
func (handler *Handler) AuthorRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}", handler.getPerson)
	return router
}

// SeriesRoutes returns the series endpoints, mounted at /series.
func (handler *Handler) SeriesRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}", handler.getSeries)
	return router
}

// # Articles

func (handler *Handler) listArticles(writer http.ResponseWriter, request *http.Request) {
	params := requestutil.Page(request)
	query := ListQuery{
		Page:    params.Page,
		Size:    params.Size,
		Keyword: request.URL.Query().Get("keyword"),
	}

	list, err := handler.service.ListArticles(request.Context(), query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, list.Data, list.Pagination)
}

func (handler *Handler) getArticle(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetArticle(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

func (handler *Handler) createArticle(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := handler.service.CreateArticle(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, map[string]int64{"id": id})
}

func (handler *Handler) editArticle(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.EditArticle(request.Context(), id, patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetArticle(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

func (handler *Handler) removeArticle(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveArticle(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # People and Series

func (handler *Handler) getPerson(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetPerson(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

func (handler *Handler) getSeries(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetSeries(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}
