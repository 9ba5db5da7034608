// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"fmt"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
)

// Kind selects one of the deduplicated identifier tables.
type Kind int

const (
	KindPerson Kind = iota + 1
	KindSeries
)

// String returns the resource name used in errors and logs.
func (k Kind) String() string {
	switch k {
	case KindPerson:
		return "Person"
	case KindSeries:
		return "Series"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CatalogueRow is one article with its author and chapter left-joined in.
// Pointer fields are nil when the join found nothing.
type CatalogueRow struct {
	ArticleID    int64
	Title        string
	Body         string
	AuthorLinkID *int64
	PersonID     *int64
	PersonName   *string
	ChapterID    *int64
	SeriesID     *int64
	SeriesTitle  *string
	ChapterOrder *float64
}

// CatalogueFilter narrows a catalogue read. All set conditions must hold;
// Keywords match when the body contains any of them.
//
// Rows come back ordered by (person id, series id, chapter order, article id)
// with nulls last. A zero Limit means no limit.
type CatalogueFilter struct {
	ArticleID   *int64
	PersonID    *int64
	SeriesID    *int64
	Keywords    []string
	IncludeBody bool
	Limit       int
	Offset      int
}

// Repository is the store behind the engine. Implementations must run the
// function given to InTx inside one ACID transaction and roll back if it
// returns an error.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	CatalogueRows(ctx context.Context, filter CatalogueFilter) ([]CatalogueRow, error)
	CountCatalogue(ctx context.Context, filter CatalogueFilter) (int, error)

	// GetIdentifier returns the natural key of a person or series, or NOT_FOUND.
	GetIdentifier(ctx context.Context, kind Kind, id int64) (string, error)
}

// Tx holds the primitives of the identifier and relation stores, valid for
// the lifetime of one transaction.
type Tx interface {
	InsertArticle(ctx context.Context, title, body string) (int64, error)
	// LockArticle fails with NOT_FOUND when the article does not exist.
	LockArticle(ctx context.Context, id int64) error
	UpdateArticle(ctx context.Context, id int64, title, body *string) error
	DeleteArticle(ctx context.Context, id int64) error

	FindIdentifier(ctx context.Context, kind Kind, key string) (id int64, found bool, err error)
	// InsertIdentifier inserts key and silently ignores a uniqueness conflict.
	InsertIdentifier(ctx context.Context, kind Kind, key string) error

	// FindAuthorLink returns nil when the article has no author link.
	FindAuthorLink(ctx context.Context, articleID int64) (*AuthorLink, error)
	InsertAuthorLink(ctx context.Context, articleID, personID int64) error
	RepointAuthorLink(ctx context.Context, linkID, personID int64) error
	DeleteAuthorLinks(ctx context.Context, articleID int64) (int64, error)

	// FindChapterLink returns nil when the article has no chapter link.
	FindChapterLink(ctx context.Context, articleID int64) (*ChapterLink, error)
	InsertChapterLink(ctx context.Context, articleID, seriesID int64, order float64) error
	UpdateChapterLink(ctx context.Context, linkID, seriesID int64, order float64) error
	DeleteChapterLinks(ctx context.Context, articleID int64) (int64, error)
}

// sealed converts a store error into the engine's taxonomy. A unique
// violation that reaches this point means a lock or a dedup insert did not
// hold, so it is reported as an integrity fault.
func sealed(err error) error {
	if apperr.HasCode(err, apperr.CodeConflict) {
		return apperr.Integrity("unexpected unique violation: %w", err)
	}
	return apperr.Ensure(err)
}
