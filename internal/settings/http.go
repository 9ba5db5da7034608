// Copyright (c) 2026 Library. All rights reserved.

package settings

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/zrecovery/library-sub000/internal/platform/request"
	"github.com/zrecovery/library-sub000/internal/platform/respond"
)

// Handler exposes settings over HTTP. The optional ?user=ID query parameter
// selects a user scope; without it the system scope is used.
type Handler struct {
	service *Service
}

// NewHandler constructs a settings [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the settings endpoints, mounted at /settings.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listSettings)
	router.Get("/{key}", handler.getSetting)
	router.Put("/{key}", handler.putSetting)
	router.Delete("/{key}", handler.deleteSetting)

	return router
}

func scopeOf(request *http.Request) (Scope, error) {
	userID, ok, err := requestutil.QueryInt64(request, "user")
	if err != nil {
		return Scope{}, err
	}
	if !ok {
		return SystemScope(), nil
	}
	return UserScope(userID), nil
}

func (handler *Handler) listSettings(writer http.ResponseWriter, request *http.Request) {
	scope, err := scopeOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var keys []string
	if raw := request.URL.Query().Get("keys"); raw != "" {
		keys = strings.Split(raw, ",")
	}

	list, err := handler.service.List(request.Context(), scope, keys...)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, list)
}

func (handler *Handler) getSetting(writer http.ResponseWriter, request *http.Request) {
	scope, err := scopeOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.service.Get(request.Context(), scope, requestutil.Param(request, "key"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, setting)
}

func (handler *Handler) putSetting(writer http.ResponseWriter, request *http.Request) {
	scope, err := scopeOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	setting, err := handler.service.Set(request.Context(), scope, requestutil.Param(request, "key"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, setting)
}

func (handler *Handler) deleteSetting(writer http.ResponseWriter, request *http.Request) {
	scope, err := scopeOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Remove(request.Context(), scope, requestutil.Param(request, "key")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
