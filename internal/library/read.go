// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/pkg/pagination"
)

// keywordSeparator splits alternatives in a list keyword: "a|b" matches
// bodies containing a or b.
const keywordSeparator = "|"

// Projection is the read side of the engine.
type Projection struct {
	repository Repository
}

// NewProjection builds a Projection over repository.
func NewProjection(repository Repository) *Projection {
	return &Projection{repository: repository}
}

/*
Detail returns one article with its full body, author and chapter.

Returns:
  - *ArticleDetail
  - error: NOT_FOUND for an unknown id, INTERNAL_ERROR when the joins fan out
    or a link points at a missing row
*/
func (projection *Projection) Detail(ctx context.Context, id int64) (*ArticleDetail, error) {
	rows, err := projection.repository.CatalogueRows(ctx, CatalogueFilter{
		ArticleID:   &id,
		IncludeBody: true,
	})
	if err != nil {
		return nil, sealed(err)
	}

	detail, err := detailFromRows(id, rows)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

/*
List returns one page of article summaries. The page and the total count are
read concurrently with the same filter.
*/
func (projection *Projection) List(ctx context.Context, query ListQuery) (*ArticleList, error) {
	params := pagination.New(query.Page, query.Size)
	filter := CatalogueFilter{
		Keywords: splitKeywords(query.Keyword),
		Limit:    params.Limit(),
		Offset:   params.Offset(),
	}

	var (
		rows  []CatalogueRow
		total int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		rows, err = projection.repository.CatalogueRows(groupCtx, filter)
		return err
	})
	group.Go(func() error {
		var err error
		total, err = projection.repository.CountCatalogue(groupCtx, filter)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, sealed(err)
	}

	data, err := metasFromRows(rows)
	if err != nil {
		return nil, err
	}
	return &ArticleList{Data: data, Pagination: pagination.NewMeta(params, total)}, nil
}

// PersonDetail returns a person with their articles and the series those
// articles belong to.
func (projection *Projection) PersonDetail(ctx context.Context, id int64) (*PersonDetail, error) {
	name, err := projection.repository.GetIdentifier(ctx, KindPerson, id)
	if err != nil {
		return nil, sealed(err)
	}

	rows, err := projection.repository.CatalogueRows(ctx, CatalogueFilter{PersonID: &id})
	if err != nil {
		return nil, sealed(err)
	}
	articles, err := metasFromRows(rows)
	if err != nil {
		return nil, err
	}

	series := make([]Series, 0)
	seen := make(map[int64]bool)
	for _, article := range articles {
		if article.Chapter == nil || seen[article.Chapter.ID] {
			continue
		}
		seen[article.Chapter.ID] = true
		series = append(series, Series{ID: article.Chapter.ID, Title: article.Chapter.Title})
	}

	return &PersonDetail{ID: id, Name: name, Articles: articles, Series: series}, nil
}

// SeriesDetail returns a series with the articles placed in it.
func (projection *Projection) SeriesDetail(ctx context.Context, id int64) (*SeriesDetail, error) {
	title, err := projection.repository.GetIdentifier(ctx, KindSeries, id)
	if err != nil {
		return nil, sealed(err)
	}

	rows, err := projection.repository.CatalogueRows(ctx, CatalogueFilter{SeriesID: &id})
	if err != nil {
		return nil, sealed(err)
	}
	articles, err := metasFromRows(rows)
	if err != nil {
		return nil, err
	}
	return &SeriesDetail{ID: id, Title: title, Articles: articles}, nil
}

// # Shaping

func detailFromRows(id int64, rows []CatalogueRow) (*ArticleDetail, error) {
	switch len(rows) {
	case 0:
		return nil, apperr.NotFound("Article")
	case 1:
	default:
		return nil, apperr.Integrity("article %d joins to %d rows", id, len(rows))
	}

	row := rows[0]
	author, err := authorOf(row)
	if err != nil {
		return nil, err
	}
	return &ArticleDetail{
		ID:      row.ArticleID,
		Title:   row.Title,
		Body:    row.Body,
		Author:  author,
		Chapter: chapterOf(row),
	}, nil
}

func metasFromRows(rows []CatalogueRow) ([]ArticleMeta, error) {
	metas := make([]ArticleMeta, 0, len(rows))
	for _, row := range rows {
		author, err := authorOf(row)
		if err != nil {
			return nil, err
		}
		metas = append(metas, ArticleMeta{
			ID:      row.ArticleID,
			Title:   row.Title,
			Author:  author,
			Chapter: chapterOf(row),
		})
	}
	return metas, nil
}

// authorOf is nil for an article without author link, and an integrity
// error when the link exists but its person does not.
func authorOf(row CatalogueRow) (*Person, error) {
	if row.AuthorLinkID == nil {
		return nil, nil
	}
	if row.PersonID == nil || row.PersonName == nil {
		return nil, apperr.Integrity("author link %d of article %d has no person", *row.AuthorLinkID, row.ArticleID)
	}
	return &Person{ID: *row.PersonID, Name: *row.PersonName}, nil
}

// chapterOf is set only when series id, title and order are all present.
func chapterOf(row CatalogueRow) *ChapterRef {
	if row.SeriesID == nil || row.SeriesTitle == nil || row.ChapterOrder == nil {
		return nil
	}
	return &ChapterRef{ID: *row.SeriesID, Title: *row.SeriesTitle, Order: *row.ChapterOrder}
}

func splitKeywords(keyword string) []string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	var keywords []string
	for _, part := range strings.Split(keyword, keywordSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}
