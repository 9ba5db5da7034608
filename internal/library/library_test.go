// Copyright (c) 2026 Library. All rights reserved.

package library_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/pkg/pointer"
)

func newTestService(t *testing.T, options ...library.WriterOption) (*library.Service, *library.MemoryRepository) {
	t.Helper()
	repository := library.NewMemoryRepository()
	return library.NewService(repository, slog.New(slog.DiscardHandler), options...), repository
}

func mustCreate(t *testing.T, service *library.Service, title, author string, chapter *library.ChapterInput) int64 {
	t.Helper()
	id, err := service.CreateArticle(context.Background(), library.CreateInput{
		Title:   title,
		Body:    "body of " + title,
		Author:  library.AuthorInput{Name: author},
		Chapter: chapter,
	})
	require.NoError(t, err)
	return id
}

func chapter(title string, order float64) *library.ChapterInput {
	return &library.ChapterInput{Title: title, Order: pointer.To(order)}
}
