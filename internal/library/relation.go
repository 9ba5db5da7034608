// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"log/slog"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/internal/platform/constants"
	"github.com/zrecovery/library-sub000/internal/platform/validate"
	"github.com/zrecovery/library-sub000/pkg/pointer"
)

// linkState is the (link exists, target exists) pair an edit must reconcile
// for one relation of an article.
type linkState int

const (
	// Article has a link and the named target already exists.
	linkedToExisting linkState = iota
	// Article has a link but the named target must be created.
	linkedToMissing
	// Article has no link and the named target already exists.
	unlinkedToExisting
	// Article has no link and the named target must be created.
	unlinkedToMissing
)

func classify(linkExists, targetExists bool) linkState {
	switch {
	case linkExists && targetExists:
		return linkedToExisting
	case linkExists:
		return linkedToMissing
	case targetExists:
		return unlinkedToExisting
	default:
		return unlinkedToMissing
	}
}

func (s linkState) String() string {
	switch s {
	case linkedToExisting:
		return "linked_to_existing"
	case linkedToMissing:
		return "linked_to_missing"
	case unlinkedToExisting:
		return "unlinked_to_existing"
	case unlinkedToMissing:
		return "unlinked_to_missing"
	}
	return "unknown"
}

// # Author

// applyAuthor points the article's author link at the person called name.
func (writer *Writer) applyAuthor(ctx context.Context, tx Tx, articleID int64, name string) error {
	link, err := tx.FindAuthorLink(ctx, articleID)
	if err != nil {
		return err
	}
	personID, found, err := Lookup(ctx, tx, KindPerson, name)
	if err != nil {
		return err
	}

	state := classify(link != nil, found)
	writer.logger.Log(ctx, constants.LevelTrace, "author_link_reconcile",
		slog.Int64("article_id", articleID), slog.String("state", state.String()))

	switch state {
	case linkedToExisting:
		return tx.RepointAuthorLink(ctx, link.ID, personID)
	case linkedToMissing:
		return writer.repointAuthorToNew(ctx, tx, link, name)
	case unlinkedToExisting:
		return writer.linkAuthor(ctx, tx, articleID, personID)
	default:
		return writer.linkNewAuthor(ctx, tx, articleID, name)
	}
}

func (writer *Writer) repointAuthorToNew(ctx context.Context, tx Tx, link *AuthorLink, name string) error {
	personID, err := Resolve(ctx, tx, KindPerson, name)
	if err != nil {
		return err
	}
	return tx.RepointAuthorLink(ctx, link.ID, personID)
}

// linkAuthor creates the author link of an article that lost it. Articles
// always get one on creation, so unless repair is enabled this is reported
// as corrupted state.
func (writer *Writer) linkAuthor(ctx context.Context, tx Tx, articleID, personID int64) error {
	if !writer.repairAuthorLinks {
		return apperr.Integrity("article %d has no author link", articleID)
	}
	writer.logger.WarnContext(ctx, "author_link_repaired", slog.Int64("article_id", articleID))
	return tx.InsertAuthorLink(ctx, articleID, personID)
}

func (writer *Writer) linkNewAuthor(ctx context.Context, tx Tx, articleID int64, name string) error {
	if !writer.repairAuthorLinks {
		return apperr.Integrity("article %d has no author link", articleID)
	}
	personID, err := Resolve(ctx, tx, KindPerson, name)
	if err != nil {
		return err
	}
	return writer.linkAuthor(ctx, tx, articleID, personID)
}

// # Chapter

// applyChapter moves the article to another series and/or position.
func (writer *Writer) applyChapter(ctx context.Context, tx Tx, articleID int64, patch ChapterPatch) error {
	link, err := tx.FindChapterLink(ctx, articleID)
	if err != nil {
		return err
	}

	if patch.Title == nil {
		if patch.Order == nil {
			return nil
		}
		if link == nil {
			return validate.FieldError(FieldChapterTitle, "Required when the article has no chapter")
		}
		return tx.UpdateChapterLink(ctx, link.ID, link.SeriesID, *patch.Order)
	}

	seriesID, found, err := Lookup(ctx, tx, KindSeries, *patch.Title)
	if err != nil {
		return err
	}

	state := classify(link != nil, found)
	writer.logger.Log(ctx, constants.LevelTrace, "chapter_link_reconcile",
		slog.Int64("article_id", articleID), slog.String("state", state.String()))

	switch state {
	case linkedToExisting:
		return tx.UpdateChapterLink(ctx, link.ID, seriesID, pointer.Fallback(patch.Order, link.Order))
	case linkedToMissing:
		return writer.moveChapterToNew(ctx, tx, link, *patch.Title, patch.Order)
	case unlinkedToExisting:
		return tx.InsertChapterLink(ctx, articleID, seriesID, pointer.Fallback(patch.Order, DefaultChapterOrder))
	default:
		return writer.placeInNewSeries(ctx, tx, articleID, *patch.Title, patch.Order)
	}
}

func (writer *Writer) moveChapterToNew(ctx context.Context, tx Tx, link *ChapterLink, title string, order *float64) error {
	seriesID, err := Resolve(ctx, tx, KindSeries, title)
	if err != nil {
		return err
	}
	return tx.UpdateChapterLink(ctx, link.ID, seriesID, pointer.Fallback(order, link.Order))
}

func (writer *Writer) placeInNewSeries(ctx context.Context, tx Tx, articleID int64, title string, order *float64) error {
	seriesID, err := Resolve(ctx, tx, KindSeries, title)
	if err != nil {
		return err
	}
	return tx.InsertChapterLink(ctx, articleID, seriesID, pointer.Fallback(order, DefaultChapterOrder))
}

