// Copyright (c) 2026 Library. All rights reserved.

package api_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zrecovery/library-sub000/internal/api"
	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/config"
)

func newTestServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.DiscardHandler)
	liveness, readiness := api.NewHealthHandlers(deps, logger)
	service := library.NewService(library.NewMemoryRepository(), logger)

	cfg := &config.Config{ServerPort: "0", Environment: "development", MetricsEnabled: true}
	server := api.NewServer(ctx, cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Library:   library.NewHandler(service),
	})
	return server.Handler()
}

func TestServer_Routes(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	do := func(method, target, body string) int {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/ready", ""))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/v1/articles", `{"title":"T","body":"B","author":{"name":"A"}}`))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/articles", ""))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/metrics", ""))
	// Settings are not mounted without Redis.
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/v1/settings", ""))
}

func TestServer_ReadinessDegraded(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{
		CheckDatabase: func() error { return errors.New("down") },
	})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "degraded")
}
