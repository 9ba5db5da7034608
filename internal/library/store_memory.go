// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
)

// MemoryRepository is a process-local [Repository]. It enforces the same
// uniqueness rules as the relational schema and applies a transaction only
// when its function succeeds. Transactions are serialized.
//
// It backs STORE_DRIVER=memory and dry-run imports.
type MemoryRepository struct {
	mu    sync.RWMutex
	state *memoryState
}

// MemoryStats counts the rows of each table.
type MemoryStats struct {
	Articles     int
	People       int
	Series       int
	AuthorLinks  int
	ChapterLinks int
}

type memoryState struct {
	lastID int64

	articles     map[int64]Article
	identifiers  map[Kind]map[int64]string
	authorLinks  map[int64]AuthorLink  // by article id
	chapterLinks map[int64]ChapterLink // by article id
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{state: &memoryState{
		articles: make(map[int64]Article),
		identifiers: map[Kind]map[int64]string{
			KindPerson: make(map[int64]string),
			KindSeries: make(map[int64]string),
		},
		authorLinks:  make(map[int64]AuthorLink),
		chapterLinks: make(map[int64]ChapterLink),
	}}
}

func (state *memoryState) clone() *memoryState {
	return &memoryState{
		lastID:   state.lastID,
		articles: maps.Clone(state.articles),
		identifiers: map[Kind]map[int64]string{
			KindPerson: maps.Clone(state.identifiers[KindPerson]),
			KindSeries: maps.Clone(state.identifiers[KindSeries]),
		},
		authorLinks:  maps.Clone(state.authorLinks),
		chapterLinks: maps.Clone(state.chapterLinks),
	}
}

func (state *memoryState) nextID() int64 {
	state.lastID++
	return state.lastID
}

// Stats returns the committed row counts.
func (repository *MemoryRepository) Stats() MemoryStats {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	state := repository.state
	return MemoryStats{
		Articles:     len(state.articles),
		People:       len(state.identifiers[KindPerson]),
		Series:       len(state.identifiers[KindSeries]),
		AuthorLinks:  len(state.authorLinks),
		ChapterLinks: len(state.chapterLinks),
	}
}

// InTx runs fn against a copy of the state and publishes the copy on success.
func (repository *MemoryRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	working := repository.state.clone()
	if err := fn(ctx, &memoryTx{state: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperr.Internal(err)
	}
	repository.state = working
	return nil
}

// # Reads

// CatalogueRows implements [Repository].
func (repository *MemoryRepository) CatalogueRows(ctx context.Context, filter CatalogueFilter) ([]CatalogueRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	rows := repository.state.catalogue(filter)
	if filter.Offset < 0 || filter.Offset >= len(rows) {
		return []CatalogueRow{}, nil
	}
	rows = rows[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

// CountCatalogue implements [Repository].
func (repository *MemoryRepository) CountCatalogue(ctx context.Context, filter CatalogueFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Internal(err)
	}
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	return len(repository.state.catalogue(filter)), nil
}

// GetIdentifier implements [Repository].
func (repository *MemoryRepository) GetIdentifier(ctx context.Context, kind Kind, id int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Internal(err)
	}
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	key, ok := repository.state.identifiers[kind][id]
	if !ok {
		return "", apperr.NotFound(kind.String())
	}
	return key, nil
}

func (state *memoryState) catalogue(filter CatalogueFilter) []CatalogueRow {
	rows := make([]CatalogueRow, 0, len(state.articles))
	for _, article := range state.articles {
		row := state.row(article, filter.IncludeBody)
		if !matches(row, article.Body, filter) {
			continue
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, compareRows)
	return rows
}

func (state *memoryState) row(article Article, includeBody bool) CatalogueRow {
	row := CatalogueRow{ArticleID: article.ID, Title: article.Title}
	if includeBody {
		row.Body = article.Body
	}

	if link, ok := state.authorLinks[article.ID]; ok {
		row.AuthorLinkID = &link.ID
		if name, ok := state.identifiers[KindPerson][link.PersonID]; ok {
			row.PersonID = &link.PersonID
			row.PersonName = &name
		}
	}

	if link, ok := state.chapterLinks[article.ID]; ok {
		row.ChapterID = &link.ID
		row.ChapterOrder = &link.Order
		if title, ok := state.identifiers[KindSeries][link.SeriesID]; ok {
			row.SeriesID = &link.SeriesID
			row.SeriesTitle = &title
		}
	}
	return row
}

func matches(row CatalogueRow, body string, filter CatalogueFilter) bool {
	if filter.ArticleID != nil && row.ArticleID != *filter.ArticleID {
		return false
	}
	if filter.PersonID != nil && (row.PersonID == nil || *row.PersonID != *filter.PersonID) {
		return false
	}
	if filter.SeriesID != nil && (row.SeriesID == nil || *row.SeriesID != *filter.SeriesID) {
		return false
	}
	if len(filter.Keywords) == 0 {
		return true
	}
	for _, keyword := range filter.Keywords {
		if strings.Contains(body, keyword) {
			return true
		}
	}
	return false
}

// compareRows orders by person, series, chapter order, then article id, with
// nulls last as in PostgreSQL's default ascending order.
func compareRows(a, b CatalogueRow) int {
	if c := compareNullable(a.PersonID, b.PersonID); c != 0 {
		return c
	}
	if c := compareNullable(a.SeriesID, b.SeriesID); c != 0 {
		return c
	}
	if c := compareNullable(a.ChapterOrder, b.ChapterOrder); c != 0 {
		return c
	}
	switch {
	case a.ArticleID < b.ArticleID:
		return -1
	case a.ArticleID > b.ArticleID:
		return 1
	}
	return 0
}

func compareNullable[T int64 | float64](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// # Transaction

type memoryTx struct {
	state *memoryState
}

func (tx *memoryTx) InsertArticle(ctx context.Context, title, body string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Internal(err)
	}
	id := tx.state.nextID()
	tx.state.articles[id] = Article{ID: id, Title: title, Body: body}
	return id, nil
}

func (tx *memoryTx) LockArticle(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return apperr.Internal(err)
	}
	if _, ok := tx.state.articles[id]; !ok {
		return apperr.NotFound("Article")
	}
	return nil
}

func (tx *memoryTx) UpdateArticle(ctx context.Context, id int64, title, body *string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Internal(err)
	}
	article, ok := tx.state.articles[id]
	if !ok {
		return apperr.NotFound("Article")
	}
	if title != nil {
		article.Title = *title
	}
	if body != nil {
		article.Body = *body
	}
	tx.state.articles[id] = article
	return nil
}

func (tx *memoryTx) DeleteArticle(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return apperr.Internal(err)
	}
	if _, ok := tx.state.articles[id]; !ok {
		return apperr.NotFound("Article")
	}
	if _, linked := tx.state.authorLinks[id]; linked {
		return apperr.Integrity("article %d still referenced by an author link", id)
	}
	if _, linked := tx.state.chapterLinks[id]; linked {
		return apperr.Integrity("article %d still referenced by a chapter link", id)
	}
	delete(tx.state.articles, id)
	return nil
}

func (tx *memoryTx) FindIdentifier(ctx context.Context, kind Kind, key string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, apperr.Internal(err)
	}
	for id, existing := range tx.state.identifiers[kind] {
		if existing == key {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (tx *memoryTx) InsertIdentifier(ctx context.Context, kind Kind, key string) error {
	_, found, err := tx.FindIdentifier(ctx, kind, key)
	if err != nil || found {
		return err
	}
	tx.state.identifiers[kind][tx.state.nextID()] = key
	return nil
}

func (tx *memoryTx) FindAuthorLink(ctx context.Context, articleID int64) (*AuthorLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	link, ok := tx.state.authorLinks[articleID]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (tx *memoryTx) InsertAuthorLink(ctx context.Context, articleID, personID int64) error {
	if err := tx.checkReferences(ctx, articleID, KindPerson, personID); err != nil {
		return err
	}
	if _, exists := tx.state.authorLinks[articleID]; exists {
		return apperr.Conflict("Duplicate value violates authorlink_articleid_key")
	}
	tx.state.authorLinks[articleID] = AuthorLink{ID: tx.state.nextID(), ArticleID: articleID, PersonID: personID}
	return nil
}

func (tx *memoryTx) RepointAuthorLink(ctx context.Context, linkID, personID int64) error {
	for articleID, link := range tx.state.authorLinks {
		if link.ID != linkID {
			continue
		}
		if err := tx.checkReferences(ctx, articleID, KindPerson, personID); err != nil {
			return err
		}
		link.PersonID = personID
		tx.state.authorLinks[articleID] = link
		return nil
	}
	return apperr.NotFound("Author link")
}

func (tx *memoryTx) DeleteAuthorLinks(ctx context.Context, articleID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Internal(err)
	}
	if _, ok := tx.state.authorLinks[articleID]; !ok {
		return 0, nil
	}
	delete(tx.state.authorLinks, articleID)
	return 1, nil
}

func (tx *memoryTx) FindChapterLink(ctx context.Context, articleID int64) (*ChapterLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	link, ok := tx.state.chapterLinks[articleID]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (tx *memoryTx) InsertChapterLink(ctx context.Context, articleID, seriesID int64, order float64) error {
	if err := tx.checkReferences(ctx, articleID, KindSeries, seriesID); err != nil {
		return err
	}
	if _, exists := tx.state.chapterLinks[articleID]; exists {
		return apperr.Conflict("Duplicate value violates chapterlink_articleid_key")
	}
	tx.state.chapterLinks[articleID] = ChapterLink{
		ID:        tx.state.nextID(),
		ArticleID: articleID,
		SeriesID:  seriesID,
		Order:     order,
	}
	return nil
}

func (tx *memoryTx) UpdateChapterLink(ctx context.Context, linkID, seriesID int64, order float64) error {
	for articleID, link := range tx.state.chapterLinks {
		if link.ID != linkID {
			continue
		}
		if err := tx.checkReferences(ctx, articleID, KindSeries, seriesID); err != nil {
			return err
		}
		link.SeriesID = seriesID
		link.Order = order
		tx.state.chapterLinks[articleID] = link
		return nil
	}
	return apperr.NotFound("Chapter link")
}

func (tx *memoryTx) DeleteChapterLinks(ctx context.Context, articleID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Internal(err)
	}
	if _, ok := tx.state.chapterLinks[articleID]; !ok {
		return 0, nil
	}
	delete(tx.state.chapterLinks, articleID)
	return 1, nil
}

// checkReferences mirrors the foreign keys of the link tables.
func (tx *memoryTx) checkReferences(ctx context.Context, articleID int64, kind Kind, targetID int64) error {
	if err := ctx.Err(); err != nil {
		return apperr.Internal(err)
	}
	if _, ok := tx.state.articles[articleID]; !ok {
		return apperr.Integrity("link references missing article %d", articleID)
	}
	if _, ok := tx.state.identifiers[kind][targetID]; !ok {
		return apperr.Integrity("link references missing %s %d", kind, targetID)
	}
	return nil
}
