// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zrecovery/library-sub000/internal/platform/constants"
	"github.com/zrecovery/library-sub000/internal/platform/validate"
	"github.com/zrecovery/library-sub000/pkg/pointer"
)

// Writer is the write side of the engine. Each call runs in one transaction.
type Writer struct {
	repository        Repository
	logger            *slog.Logger
	repairAuthorLinks bool
}

// WriterOption customises a [Writer].
type WriterOption func(*Writer)

// WithAuthorLinkRepair makes [Writer.Edit] create a missing author link
// instead of failing with an integrity error.
func WithAuthorLinkRepair() WriterOption {
	return func(writer *Writer) { writer.repairAuthorLinks = true }
}

// NewWriter builds a Writer over repository.
func NewWriter(repository Repository, logger *slog.Logger, options ...WriterOption) *Writer {
	writer := &Writer{repository: repository, logger: logger}
	for _, option := range options {
		option(writer)
	}
	return writer
}

/*
Create inserts an article together with its author link and, when given, its
chapter link.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - int64: id of the new article
  - error: VALIDATION_ERROR before any write, INTERNAL_ERROR on store failure
*/
func (writer *Writer) Create(ctx context.Context, input CreateInput) (int64, error) {
	if err := validateCreate(input); err != nil {
		return 0, err
	}

	var articleID int64
	err := writer.repository.InTx(ctx, func(ctx context.Context, tx Tx) error {
		id, err := tx.InsertArticle(ctx, strings.TrimSpace(input.Title), strings.TrimSpace(input.Body))
		if err != nil {
			return err
		}
		articleID = id

		personID, err := Resolve(ctx, tx, KindPerson, input.Author.Name)
		if err != nil {
			return err
		}
		if err := tx.InsertAuthorLink(ctx, articleID, personID); err != nil {
			return err
		}

		if input.Chapter == nil {
			return nil
		}
		seriesID, err := Resolve(ctx, tx, KindSeries, input.Chapter.Title)
		if err != nil {
			return err
		}
		return tx.InsertChapterLink(ctx, articleID, seriesID, pointer.Fallback(input.Chapter.Order, DefaultChapterOrder))
	})
	if err != nil {
		return 0, sealed(err)
	}

	writer.logger.InfoContext(ctx, "article_created", slog.Int64("article_id", articleID))
	return articleID, nil
}

/*
Edit applies a partial patch to an article and reconciles its author and
chapter links.

Parameters:
  - ctx: context.Context
  - id: int64 (article id)
  - patch: Patch

Returns:
  - error: NOT_FOUND, VALIDATION_ERROR or INTERNAL_ERROR
*/
func (writer *Writer) Edit(ctx context.Context, id int64, patch Patch) error {
	if err := validatePatch(patch); err != nil {
		return err
	}

	err := writer.repository.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.LockArticle(ctx, id); err != nil {
			return err
		}

		if patch.Title != nil || patch.Body != nil {
			writer.logger.Log(ctx, constants.LevelTrace, "article_fields_update", slog.Int64("article_id", id))
			if err := tx.UpdateArticle(ctx, id, pointer.Trimmed(patch.Title), pointer.Trimmed(patch.Body)); err != nil {
				return err
			}
		}

		if patch.Author != nil {
			if err := writer.applyAuthor(ctx, tx, id, patch.Author.Name); err != nil {
				return err
			}
		}

		if patch.Chapter != nil {
			return writer.applyChapter(ctx, tx, id, *patch.Chapter)
		}
		return nil
	})
	if err != nil {
		return sealed(err)
	}

	writer.logger.InfoContext(ctx, "article_edited", slog.Int64("article_id", id))
	return nil
}

// Remove deletes an article and its own links. People and series stay.
func (writer *Writer) Remove(ctx context.Context, id int64) error {
	err := writer.repository.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.LockArticle(ctx, id); err != nil {
			return err
		}
		if _, err := tx.DeleteAuthorLinks(ctx, id); err != nil {
			return err
		}
		if _, err := tx.DeleteChapterLinks(ctx, id); err != nil {
			return err
		}
		return tx.DeleteArticle(ctx, id)
	})
	if err != nil {
		return sealed(err)
	}

	writer.logger.InfoContext(ctx, "article_removed", slog.Int64("article_id", id))
	return nil
}

// # Validation

func validateCreate(input CreateInput) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, input.Title).
		Required(FieldBody, input.Body).
		Required(FieldAuthorName, input.Author.Name)

	if input.Chapter != nil {
		validator.Required(FieldChapterTitle, input.Chapter.Title)
		if input.Chapter.Order != nil {
			validator.Finite(FieldChapterOrder, *input.Chapter.Order)
		}
	}
	return validator.Err()
}

func validatePatch(patch Patch) error {
	validator := &validate.Validator{}
	validator.
		NotBlank(FieldTitle, patch.Title).
		NotBlank(FieldBody, patch.Body)

	if patch.Author != nil {
		validator.Required(FieldAuthorName, patch.Author.Name)
	}
	if patch.Chapter != nil {
		validator.NotBlank(FieldChapterTitle, patch.Chapter.Title)
		if patch.Chapter.Order != nil {
			validator.Finite(FieldChapterOrder, *patch.Chapter.Order)
		}
	}
	return validator.Err()
}
