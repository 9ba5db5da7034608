// Copyright (c) 2026 Library. All rights reserved.

package library_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/pkg/pagination"
	"github.com/zrecovery/library-sub000/pkg/pointer"
)

func TestDetail_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.GetArticle(context.Background(), 42)

	assert.True(t, apperr.IsNotFound(err))
}

func TestDetail_MissingPersonIsIntegrityError(t *testing.T) {
	service, repository := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, service, "T", "A", nil)
	detail, err := service.GetArticle(ctx, id)
	require.NoError(t, err)
	repository.DropPerson(detail.Author.ID)

	_, err = service.GetArticle(ctx, id)

	assert.True(t, apperr.IsInternal(err))
}

func TestDetailFromRows(t *testing.T) {
	row := library.CatalogueRow{ArticleID: 1, Title: "T", Body: "B"}

	_, err := library.DetailFromRows(1, nil)
	assert.True(t, apperr.IsNotFound(err))

	_, err = library.DetailFromRows(1, []library.CatalogueRow{row, row})
	assert.True(t, apperr.IsInternal(err))

	// A chapter needs series id, title and order together.
	partial := row
	partial.SeriesID = pointer.To(int64(3))
	partial.ChapterOrder = pointer.To(1.0)
	detail, err := library.DetailFromRows(1, []library.CatalogueRow{partial})
	require.NoError(t, err)
	assert.Nil(t, detail.Chapter)
	assert.Nil(t, detail.Author)

	partial.SeriesTitle = pointer.To("S")
	detail, err = library.DetailFromRows(1, []library.CatalogueRow{partial})
	require.NoError(t, err)
	assert.Equal(t, &library.ChapterRef{ID: 3, Title: "S", Order: 1}, detail.Chapter)
}

func TestList_Pagination(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	empty, err := service.ListArticles(ctx, library.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.Pagination.Pages)
	assert.Equal(t, 1, empty.Pagination.Current)
	assert.Equal(t, 10, empty.Pagination.Size)

	for i := 0; i < 23; i++ {
		mustCreate(t, service, fmt.Sprintf("T%02d", i), "A", nil)
	}

	tests := []struct {
		page      int
		wantItems int
	}{
		{1, 10},
		{2, 10},
		{3, 3},
		{4, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page_%d", tt.page), func(t *testing.T) {
			list, err := service.ListArticles(ctx, library.ListQuery{Page: tt.page, Size: 10})
			require.NoError(t, err)
			assert.Len(t, list.Data, tt.wantItems)
			assert.Equal(t, 23, list.Pagination.Items)
			assert.Equal(t, 3, list.Pagination.Pages)
			assert.Equal(t, tt.page, list.Pagination.Current)
		})
	}
}

func TestList_HugePage(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, service, "T", "A", nil)

	list, err := service.ListArticles(ctx, library.ListQuery{Page: 1_000_000_000_000_000_000, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.Equal(t, pagination.MaxPage, list.Pagination.Current)
	assert.Equal(t, 1, list.Pagination.Items)
}

func TestMemoryRepository_NegativeOffset(t *testing.T) {
	service, repository := newTestService(t)
	mustCreate(t, service, "T", "A", nil)

	rows, err := repository.CatalogueRows(context.Background(), library.CatalogueFilter{Limit: 10, Offset: -5})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestList_KeywordAndOrder(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	create := func(title, body, author string, chapter *library.ChapterInput) {
		_, err := service.CreateArticle(ctx, library.CreateInput{
			Title: title, Body: body, Author: library.AuthorInput{Name: author}, Chapter: chapter,
		})
		require.NoError(t, err)
	}
	create("b2", "alpha text", "B", chapter("Saga", 2))
	create("b1", "gamma text", "B", chapter("Saga", 1))
	create("a1", "alpha again", "A", nil)
	create("skip", "Alpha capitalised", "A", nil)

	list, err := service.ListArticles(ctx, library.ListQuery{Keyword: " alpha | gamma "})
	require.NoError(t, err)

	titles := make([]string, 0, len(list.Data))
	for _, meta := range list.Data {
		titles = append(titles, meta.Title)
	}
	// Person B was created first, so B's articles sort first, by chapter order.
	assert.Equal(t, []string{"b1", "b2", "a1"}, titles)
	assert.Equal(t, 3, list.Pagination.Items)
}

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, library.SplitKeywords("  "))
	assert.Equal(t, []string{"a"}, library.SplitKeywords("a"))
	assert.Equal(t, []string{"a", "b"}, library.SplitKeywords("a||b|"))
}

func TestPersonAndSeriesDetail(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, service, "One", "A", chapter("S", 2))
	mustCreate(t, service, "Two", "A", chapter("S", 1))
	mustCreate(t, service, "Loose", "A", nil)
	mustCreate(t, service, "Elsewhere", "B", chapter("S", 3))

	detail, err := service.GetArticle(ctx, first)
	require.NoError(t, err)

	person, err := service.GetPerson(ctx, detail.Author.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", person.Name)
	require.Len(t, person.Articles, 3)
	assert.Equal(t, "Two", person.Articles[0].Title)
	assert.Equal(t, "One", person.Articles[1].Title)
	assert.Equal(t, []library.Series{{ID: detail.Chapter.ID, Title: "S"}}, person.Series)

	series, err := service.GetSeries(ctx, detail.Chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, "S", series.Title)
	assert.Len(t, series.Articles, 3)

	_, err = service.GetPerson(ctx, 9999)
	assert.True(t, apperr.IsNotFound(err))
	_, err = service.GetSeries(ctx, 9999)
	assert.True(t, apperr.IsNotFound(err))
}
