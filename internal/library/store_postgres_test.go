// Copyright (c) 2026 Library. All rights reserved.

package library_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/internal/platform/config"
	"github.com/zrecovery/library-sub000/internal/platform/migration"
	"github.com/zrecovery/library-sub000/internal/platform/postgres"
	"github.com/zrecovery/library-sub000/pkg/pointer"
)

const migrationsPath = "../../data/migrations"

// newPostgresService resets the schema of the database named by
// LIBRARY_TEST_DATABASE_URL. The database must be dedicated to tests.
func newPostgresService(t *testing.T) *library.Service {
	t.Helper()
	dsn := os.Getenv("LIBRARY_TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("LIBRARY_TEST_DATABASE_URL not set")
	}

	logger := slog.New(slog.DiscardHandler)
	require.NoError(t, migration.RunDown(dsn, migrationsPath, logger))
	require.NoError(t, migration.RunUp(dsn, migrationsPath, logger))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, dsn, config.PoolConfig{
		MaxConns:        8,
		MinConns:        1,
		ConnectTimeout:  5 * time.Second,
		MaxConnIdleTime: time.Minute,
		MaxConnLifetime: time.Hour,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return library.NewService(library.NewPostgresRepository(pool), logger)
}

func TestPostgres_CreateEditRemove(t *testing.T) {
	service := newPostgresService(t)
	ctx := context.Background()

	first, err := service.CreateArticle(ctx, library.CreateInput{
		Title: "T", Body: "needle in body", Author: library.AuthorInput{Name: "A"},
		Chapter: &library.ChapterInput{Title: "S", Order: pointer.To(1.0)},
	})
	require.NoError(t, err)
	second, err := service.CreateArticle(ctx, library.CreateInput{
		Title: "U", Body: "other", Author: library.AuthorInput{Name: "A"},
		Chapter: &library.ChapterInput{Title: "S"},
	})
	require.NoError(t, err)

	firstDetail, err := service.GetArticle(ctx, first)
	require.NoError(t, err)
	secondDetail, err := service.GetArticle(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, firstDetail.Chapter.ID, secondDetail.Chapter.ID)
	assert.Equal(t, firstDetail.Author.ID, secondDetail.Author.ID)

	require.NoError(t, service.EditArticle(ctx, first, library.Patch{
		Author:  &library.AuthorInput{Name: "NewPerson"},
		Chapter: &library.ChapterPatch{Order: pointer.To(5.0)},
	}))
	edited, err := service.GetArticle(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "NewPerson", edited.Author.Name)
	assert.Equal(t, 5.0, edited.Chapter.Order)

	list, err := service.ListArticles(ctx, library.ListQuery{Keyword: "needle"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, first, list.Data[0].ID)
	assert.Equal(t, 1, list.Pagination.Pages)

	require.NoError(t, service.RemoveArticle(ctx, first))
	_, err = service.GetArticle(ctx, first)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(service.RemoveArticle(ctx, first)))

	_, err = service.GetPerson(ctx, edited.Author.ID)
	assert.NoError(t, err)
}

func TestPostgres_ConcurrentDedup(t *testing.T) {
	service := newPostgresService(t)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateArticle(context.Background(), library.CreateInput{
				Title: "T", Body: "B", Author: library.AuthorInput{Name: "Shared"},
				Chapter: &library.ChapterInput{Title: "Saga"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := service.ListArticles(context.Background(), library.ListQuery{Size: 100})
	require.NoError(t, err)
	require.Len(t, list.Data, 6)
	for _, meta := range list.Data {
		assert.Equal(t, list.Data[0].Author.ID, meta.Author.ID)
		assert.Equal(t, list.Data[0].Chapter.ID, meta.Chapter.ID)
	}
}
