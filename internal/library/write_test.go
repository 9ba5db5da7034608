// Copyright (c) 2026 Library. All rights reserved.

package library_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/pkg/pointer"
)

func TestCreate_WithoutChapter(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	id, err := service.CreateArticle(ctx, library.CreateInput{
		Title:  "  T ",
		Body:   "B",
		Author: library.AuthorInput{Name: " A "},
	})
	require.NoError(t, err)

	detail, err := service.GetArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "T", detail.Title)
	assert.Equal(t, "B", detail.Body)
	require.NotNil(t, detail.Author)
	assert.Equal(t, "A", detail.Author.Name)
	assert.Nil(t, detail.Chapter)
}

func TestCreate_WithChapterSharesSeries(t *testing.T) {
	service, repository := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, service, "One", "A", chapter("S", 1))
	second := mustCreate(t, service, "Two", "A", &library.ChapterInput{Title: "S"})

	firstDetail, err := service.GetArticle(ctx, first)
	require.NoError(t, err)
	secondDetail, err := service.GetArticle(ctx, second)
	require.NoError(t, err)

	require.NotNil(t, firstDetail.Chapter)
	require.NotNil(t, secondDetail.Chapter)
	assert.Equal(t, "S", firstDetail.Chapter.Title)
	assert.Equal(t, 1.0, firstDetail.Chapter.Order)
	assert.Equal(t, library.DefaultChapterOrder, secondDetail.Chapter.Order)
	assert.Equal(t, firstDetail.Chapter.ID, secondDetail.Chapter.ID)
	assert.Equal(t, firstDetail.Author.ID, secondDetail.Author.ID)

	stats := repository.Stats()
	assert.Equal(t, 1, stats.People)
	assert.Equal(t, 1, stats.Series)
	assert.Equal(t, 2, stats.ChapterLinks)
}

func TestCreate_ValidationInsertsNothing(t *testing.T) {
	tests := []struct {
		name  string
		input library.CreateInput
		field string
	}{
		{"empty_title", library.CreateInput{Title: "", Body: "B", Author: library.AuthorInput{Name: "A"}}, library.FieldTitle},
		{"blank_body", library.CreateInput{Title: "T", Body: "  ", Author: library.AuthorInput{Name: "A"}}, library.FieldBody},
		{"blank_author", library.CreateInput{Title: "T", Body: "B", Author: library.AuthorInput{Name: " "}}, library.FieldAuthorName},
		{"blank_series", library.CreateInput{Title: "T", Body: "B", Author: library.AuthorInput{Name: "A"}, Chapter: &library.ChapterInput{Title: ""}}, library.FieldChapterTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository := newTestService(t)

			_, err := service.CreateArticle(context.Background(), tt.input)

			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
			assert.Equal(t, library.MemoryStats{}, repository.Stats())
		})
	}
}

func TestCreate_ConcurrentSameAuthor(t *testing.T) {
	service, repository := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateArticle(context.Background(), library.CreateInput{
				Title: "T", Body: "B", Author: library.AuthorInput{Name: "Same"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repository.Stats().People)
	assert.Equal(t, 8, repository.Stats().Articles)
}

func TestEdit_AuthorMatrix(t *testing.T) {
	tests := []struct {
		name       string
		newAuthor  string
		wantPeople int
	}{
		{"linked_to_existing", "Existing", 2},
		{"linked_to_missing", "Brand New", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository := newTestService(t)
			ctx := context.Background()

			id := mustCreate(t, service, "T", "Original", nil)
			mustCreate(t, service, "Other", "Existing", nil)

			err := service.EditArticle(ctx, id, library.Patch{Author: &library.AuthorInput{Name: tt.newAuthor}})
			require.NoError(t, err)

			detail, err := service.GetArticle(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.newAuthor, detail.Author.Name)
			assert.Equal(t, 1, repository.AuthorLinkCount(id))
			assert.Equal(t, tt.wantPeople, repository.Stats().People)
		})
	}
}

func TestEdit_MissingAuthorLinkIsIntegrityError(t *testing.T) {
	service, repository := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, service, "T", "A", nil)
	repository.DropAuthorLink(id)

	err := service.EditArticle(ctx, id, library.Patch{
		Title:  pointer.To("Changed"),
		Author: &library.AuthorInput{Name: "A"},
	})

	require.Error(t, err)
	assert.True(t, apperr.IsInternal(err))

	// The title change was rolled back with the failed author step.
	detail, err := service.GetArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "T", detail.Title)
	assert.Nil(t, detail.Author)
	assert.Equal(t, 0, repository.AuthorLinkCount(id))
}

func TestEdit_MissingAuthorLinkRepaired(t *testing.T) {
	tests := []struct {
		name   string
		author string
	}{
		{"unlinked_to_existing", "A"},
		{"unlinked_to_missing", "Someone Else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository := newTestService(t, library.WithAuthorLinkRepair())
			ctx := context.Background()

			id := mustCreate(t, service, "T", "A", nil)
			repository.DropAuthorLink(id)

			require.NoError(t, service.EditArticle(ctx, id, library.Patch{Author: &library.AuthorInput{Name: tt.author}}))

			detail, err := service.GetArticle(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, detail.Author)
			assert.Equal(t, tt.author, detail.Author.Name)
			assert.Equal(t, 1, repository.AuthorLinkCount(id))
		})
	}
}

func TestEdit_ChapterMatrix(t *testing.T) {
	tests := []struct {
		name        string
		initial     *library.ChapterInput
		patch       library.ChapterPatch
		wantTitle   string
		wantOrder   float64
		wantSeries  int
		wantChapter bool
	}{
		{
			name:        "linked_to_existing_keeps_order",
			initial:     chapter("First", 4),
			patch:       library.ChapterPatch{Title: pointer.To("Shared")},
			wantTitle:   "Shared",
			wantOrder:   4,
			wantSeries:  2,
			wantChapter: true,
		},
		{
			name:        "linked_to_missing_with_order",
			initial:     chapter("First", 4),
			patch:       library.ChapterPatch{Title: pointer.To("Fresh"), Order: pointer.To(2.5)},
			wantTitle:   "Fresh",
			wantOrder:   2.5,
			wantSeries:  3,
			wantChapter: true,
		},
		{
			name:        "unlinked_to_existing_defaults_order",
			patch:       library.ChapterPatch{Title: pointer.To("Shared")},
			wantTitle:   "Shared",
			wantOrder:   library.DefaultChapterOrder,
			wantSeries:  1,
			wantChapter: true,
		},
		{
			name:        "unlinked_to_missing",
			patch:       library.ChapterPatch{Title: pointer.To("Fresh"), Order: pointer.To(7.0)},
			wantTitle:   "Fresh",
			wantOrder:   7,
			wantSeries:  2,
			wantChapter: true,
		},
		{
			name:        "order_only",
			initial:     chapter("First", 4),
			patch:       library.ChapterPatch{Order: pointer.To(9.0)},
			wantTitle:   "First",
			wantOrder:   9,
			wantSeries:  2,
			wantChapter: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository := newTestService(t)
			ctx := context.Background()

			mustCreate(t, service, "Other", "A", chapter("Shared", 1))
			id := mustCreate(t, service, "T", "A", tt.initial)

			require.NoError(t, service.EditArticle(ctx, id, library.Patch{Chapter: &tt.patch}))

			detail, err := service.GetArticle(ctx, id)
			require.NoError(t, err)
			require.Equal(t, tt.wantChapter, detail.Chapter != nil)
			assert.Equal(t, tt.wantTitle, detail.Chapter.Title)
			assert.Equal(t, tt.wantOrder, detail.Chapter.Order)
			assert.Equal(t, tt.wantSeries, repository.Stats().Series)
			assert.Equal(t, 2, repository.Stats().ChapterLinks)
		})
	}
}

func TestEdit_OrderWithoutChapterIsValidationError(t *testing.T) {
	service, _ := newTestService(t)
	id := mustCreate(t, service, "T", "A", nil)

	err := service.EditArticle(context.Background(), id, library.Patch{
		Chapter: &library.ChapterPatch{Order: pointer.To(3.0)},
	})

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), library.FieldChapterTitle)
}

func TestEdit_Fields(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, service, "T", "A", nil)

	require.NoError(t, service.EditArticle(ctx, id, library.Patch{Body: pointer.To(" new body ")}))

	detail, err := service.GetArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "T", detail.Title)
	assert.Equal(t, "new body", detail.Body)
}

func TestEdit_Errors(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, service, "T", "A", nil)

	err := service.EditArticle(ctx, id+100, library.Patch{Title: pointer.To("X")})
	assert.True(t, apperr.IsNotFound(err))

	err = service.EditArticle(ctx, id, library.Patch{Title: pointer.To(" ")})
	assert.True(t, apperr.IsValidation(err))

	err = service.EditArticle(ctx, id, library.Patch{Author: &library.AuthorInput{}})
	assert.True(t, apperr.IsValidation(err))
}

func TestRemove(t *testing.T) {
	service, repository := newTestService(t)
	ctx := context.Background()

	id := mustCreate(t, service, "T", "A", chapter("S", 1))
	kept := mustCreate(t, service, "U", "A", chapter("S", 2))

	require.NoError(t, service.RemoveArticle(ctx, id))

	_, err := service.GetArticle(ctx, id)
	assert.True(t, apperr.IsNotFound(err))

	stats := repository.Stats()
	assert.Equal(t, library.MemoryStats{Articles: 1, People: 1, Series: 1, AuthorLinks: 1, ChapterLinks: 1}, stats)

	_, err = service.GetArticle(ctx, kept)
	assert.NoError(t, err)
}

func TestRemove_NotFoundDeletesNothing(t *testing.T) {
	service, repository := newTestService(t)
	mustCreate(t, service, "T", "A", chapter("S", 1))
	before := repository.Stats()

	err := service.RemoveArticle(context.Background(), 9999)

	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, before, repository.Stats())
}

func TestLinkState(t *testing.T) {
	assert.Equal(t, "linked_to_existing", library.LinkStateName(true, true))
	assert.Equal(t, "linked_to_missing", library.LinkStateName(true, false))
	assert.Equal(t, "unlinked_to_existing", library.LinkStateName(false, true))
	assert.Equal(t, "unlinked_to_missing", library.LinkStateName(false, false))
}

// conflictRepository fails every store call with a unique violation.
type conflictRepository struct {
	library.Repository
}

func (conflictRepository) InTx(context.Context, func(context.Context, library.Tx) error) error {
	return apperr.Conflict("Duplicate value violates authorlink_articleid_key")
}

func (conflictRepository) CatalogueRows(context.Context, library.CatalogueFilter) ([]library.CatalogueRow, error) {
	return nil, apperr.Conflict("Duplicate value violates authorlink_articleid_key")
}

func TestUniqueViolationIsIntegrityError(t *testing.T) {
	service := library.NewService(conflictRepository{}, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	_, err := service.CreateArticle(ctx, library.CreateInput{Title: "T", Body: "B", Author: library.AuthorInput{Name: "A"}})
	assert.True(t, apperr.IsInternal(err))

	err = service.EditArticle(ctx, 1, library.Patch{Title: pointer.To("T2")})
	assert.True(t, apperr.IsInternal(err))

	err = service.RemoveArticle(ctx, 1)
	assert.True(t, apperr.IsInternal(err))

	_, err = service.GetArticle(ctx, 1)
	assert.True(t, apperr.IsInternal(err))
	assert.False(t, apperr.HasCode(err, apperr.CodeConflict))
}
