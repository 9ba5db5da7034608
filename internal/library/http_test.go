// Copyright (c) 2026 Library. All rights reserved.

package library_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrecovery/library-sub000/internal/library"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	service, _ := newTestService(t)
	handler := library.NewHandler(service)

	router := chi.NewRouter()
	router.Mount("/articles", handler.Routes())
	router.Mount("/authors", handler.AuthorRoutes())
	router.Mount("/series", handler.SeriesRoutes())
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_ArticleLifecycle(t *testing.T) {
	router := newTestRouter(t)

	created := serve(router, http.MethodPost, "/articles",
		`{"title":"T","body":"B","author":{"name":"A"},"chapter":{"title":"S","order":2}}`)
	require.Equal(t, http.StatusCreated, created.Code)

	var createdBody struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(created.Body).Decode(&createdBody))
	id := createdBody.Data.ID
	require.NotZero(t, id)

	path := "/articles/" + jsonID(id)

	edited := serve(router, http.MethodPatch, path, `{"author":{"name":"B"}}`)
	require.Equal(t, http.StatusOK, edited.Code)
	var editedBody struct {
		Data library.ArticleDetail `json:"data"`
	}
	require.NoError(t, json.NewDecoder(edited.Body).Decode(&editedBody))
	assert.Equal(t, "B", editedBody.Data.Author.Name)
	assert.Equal(t, 2.0, editedBody.Data.Chapter.Order)

	listed := serve(router, http.MethodGet, "/articles?page=1&size=5", "")
	require.Equal(t, http.StatusOK, listed.Code)
	var listBody map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(listed.Body).Decode(&listBody))
	assert.Contains(t, listBody, "data")
	assert.JSONEq(t, `{"current":1,"size":5,"items":1,"pages":1}`, string(listBody["pagination"]))
	assert.NotContains(t, string(listBody["data"]), `"body"`)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/authors/"+jsonID(editedBody.Data.Author.ID), "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/series/"+jsonID(editedBody.Data.Chapter.ID), "").Code)

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, path, "").Code)
}

func TestHandler_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"empty_title", http.MethodPost, "/articles", `{"title":"","body":"B","author":{"name":"A"}}`},
		{"invalid_json", http.MethodPost, "/articles", `{`},
		{"unknown_field", http.MethodPost, "/articles", `{"title":"T","colour":"red"}`},
		{"bad_id", http.MethodGet, "/articles/abc", ""},
		{"zero_id", http.MethodGet, "/authors/0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(router, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func jsonID(id int64) string {
	encoded, _ := json.Marshal(id)
	return string(encoded)
}
