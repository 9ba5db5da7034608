// Copyright (c) 2026 Library. All rights reserved.

// Package schema holds table and column names of the catalogue schema so
// that SQL is assembled from one source of truth.
package schema

// ArticleTable represents the 'library.article' table.
type ArticleTable struct {
	Table     string
	ID        string
	Title     string
	Body      string
	CreatedAt string
	UpdatedAt string
}

// Article is the schema definition for library.article.
var Article = ArticleTable{
	Table:     "library.article",
	ID:        "id",
	Title:     "title",
	Body:      "body",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// IdentifierTable describes a deduplicated natural-key table: people are
// keyed by name, series by title.
type IdentifierTable struct {
	Table     string
	ID        string
	Key       string
	CreatedAt string
	UpdatedAt string
}

// Person is the schema definition for library.person.
var Person = IdentifierTable{
	Table:     "library.person",
	ID:        "id",
	Key:       "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Series is the schema definition for library.series.
var Series = IdentifierTable{
	Table:     "library.series",
	ID:        "id",
	Key:       "title",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// AuthorLinkTable represents the 'library.authorlink' join table.
type AuthorLinkTable struct {
	Table     string
	ID        string
	ArticleID string
	PersonID  string
	UpdatedAt string
}

// AuthorLink is the schema definition for library.authorlink.
var AuthorLink = AuthorLinkTable{
	Table:     "library.authorlink",
	ID:        "id",
	ArticleID: "articleid",
	PersonID:  "personid",
	UpdatedAt: "updatedat",
}

// ChapterLinkTable represents the 'library.chapterlink' join table.
type ChapterLinkTable struct {
	Table     string
	ID        string
	ArticleID string
	SeriesID  string
	Order     string
	UpdatedAt string
}

// ChapterLink is the schema definition for library.chapterlink.
var ChapterLink = ChapterLinkTable{
	Table:     "library.chapterlink",
	ID:        "id",
	ArticleID: "articleid",
	SeriesID:  "seriesid",
	Order:     "chapterorder",
	UpdatedAt: "updatedat",
}

// CatalogueView represents the 'library.catalogue' view: one row per article
// with its author and chapter placement left-joined in.
type CatalogueView struct {
	Table        string
	ID           string
	Title        string
	Body         string
	AuthorLinkID string
	PersonID     string
	PersonName   string
	ChapterID    string
	SeriesID     string
	SeriesTitle  string
	ChapterOrder string
}

// Catalogue is the schema definition for the library.catalogue view.
var Catalogue = CatalogueView{
	Table:        "library.catalogue",
	ID:           "id",
	Title:        "title",
	Body:         "body",
	AuthorLinkID: "authorlinkid",
	PersonID:     "personid",
	PersonName:   "personname",
	ChapterID:    "chapterid",
	SeriesID:     "seriesid",
	SeriesTitle:  "seriestitle",
	ChapterOrder: "chapterorder",
}

// Columns lists the view columns in the order stores scan them.
func (v CatalogueView) Columns() []string {
	return []string{
		v.ID, v.Title, v.Body, v.AuthorLinkID, v.PersonID, v.PersonName,
		v.ChapterID, v.SeriesID, v.SeriesTitle, v.ChapterOrder,
	}
}
