// Copyright (c) 2026 Library. All rights reserved.

/*
Package library is the content-graph engine of the catalogue: articles, the
people who wrote them and the series they belong to.

# Architecture

  - [Writer] creates, edits and removes an article together with its author
    and chapter links inside a single transaction.
  - [Resolve] deduplicates people and series by natural key (find-or-create).
  - [Projection] rebuilds the graph into the detail and list read models.
  - [Repository] is implemented by [PostgresRepository] and [MemoryRepository].

Every error leaving this package is an [*apperr.AppError].
*/
package library

import "github.com/zrecovery/library-sub000/pkg/pagination"

// DefaultChapterOrder is the position given to a chapter link when none is supplied.
const DefaultChapterOrder = 1.0

// # Stored Entities

// Article is a content item. It does not own its relations.
type Article struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Person is the canonical identity behind an author name.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Series is the canonical identity behind a chapter grouping.
type Series struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// AuthorLink binds an article to its author. At most one per article.
type AuthorLink struct {
	ID        int64
	ArticleID int64
	PersonID  int64
}

// ChapterLink places an article at Order within a series. At most one per article.
type ChapterLink struct {
	ID        int64
	ArticleID int64
	SeriesID  int64
	Order     float64
}

// # Write Inputs

// AuthorInput names the author of an article.
type AuthorInput struct {
	Name string `json:"name"`
}

// ChapterInput places a new article in a series.
type ChapterInput struct {
	Title string   `json:"title"`
	Order *float64 `json:"order,omitempty"`
}

// CreateInput is the payload of [Writer.Create].
type CreateInput struct {
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	Author  AuthorInput   `json:"author"`
	Chapter *ChapterInput `json:"chapter,omitempty"`
}

// ChapterPatch changes the series and/or position of an article.
type ChapterPatch struct {
	Title *string  `json:"title,omitempty"`
	Order *float64 `json:"order,omitempty"`
}

// Patch is the payload of [Writer.Edit]. Nil fields are left untouched.
type Patch struct {
	Title   *string       `json:"title,omitempty"`
	Body    *string       `json:"body,omitempty"`
	Author  *AuthorInput  `json:"author,omitempty"`
	Chapter *ChapterPatch `json:"chapter,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil && p.Author == nil && p.Chapter == nil
}

// # Read Models

// ChapterRef is the chapter placement as shown to readers. ID is the series id.
type ChapterRef struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Order float64 `json:"order"`
}

// ArticleDetail is a single article with its full body.
type ArticleDetail struct {
	ID      int64       `json:"id"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Author  *Person     `json:"author,omitempty"`
	Chapter *ChapterRef `json:"chapter,omitempty"`
}

// ArticleMeta is the summary shape used by listings. It never carries the body.
type ArticleMeta struct {
	ID      int64       `json:"id"`
	Title   string      `json:"title"`
	Author  *Person     `json:"author,omitempty"`
	Chapter *ChapterRef `json:"chapter,omitempty"`
}

// ListQuery selects one page of articles. Zero values fall back to defaults.
type ListQuery struct {
	Page    int    `json:"page"`
	Size    int    `json:"size"`
	Keyword string `json:"keyword"`
}

// ArticleList is one page of [ArticleMeta] with its pagination block.
type ArticleList struct {
	Data       []ArticleMeta   `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

// PersonDetail is a person with every article they wrote.
type PersonDetail struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Articles []ArticleMeta `json:"articles"`
	Series   []Series      `json:"series"`
}

// SeriesDetail is a series with every article placed in it.
type SeriesDetail struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Articles []ArticleMeta `json:"articles"`
}

// Field names used in validation errors.
const (
	FieldTitle        = "title"
	FieldBody         = "body"
	FieldAuthorName   = "author.name"
	FieldChapterTitle = "chapter.title"
	FieldChapterOrder = "chapter.order"
)
