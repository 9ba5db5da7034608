// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/internal/platform/database/schema"
	"github.com/zrecovery/library-sub000/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository wraps an open pool. The caller owns its lifecycle.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InTx runs fn in a read-committed transaction. Link and article rows touched
// by an edit are locked with SELECT ... FOR UPDATE.
func (repository *PostgresRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	transaction, err := repository.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return dberr.Wrap(err, "begin_tx")
	}
	// Covers panics; a no-op once committed or rolled back.
	defer transaction.Rollback(ctx)

	if err := fn(ctx, &postgresTx{tx: transaction}); err != nil {
		if rollbackErr := transaction.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			return errors.Join(err, dberr.Wrap(rollbackErr, "rollback_tx"))
		}
		return err
	}

	return dberr.Wrap(transaction.Commit(ctx), "commit_tx")
}

// # Reads

// CatalogueRows implements [Repository].
func (repository *PostgresRepository) CatalogueRows(ctx context.Context, filter CatalogueFilter) ([]CatalogueRow, error) {
	view := schema.Catalogue
	bodyColumn := "''"
	if filter.IncludeBody {
		bodyColumn = view.Body
	}

	where, args := catalogueWhere(filter)
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		%s
		ORDER BY %s, %s, %s, %s
	`,
		view.ID, view.Title, bodyColumn, view.AuthorLinkID, view.PersonID, view.PersonName,
		view.ChapterID, view.SeriesID, view.SeriesTitle, view.ChapterOrder,
		view.Table,
		where,
		view.PersonID, view.SeriesID, view.ChapterOrder, view.ID,
	)

	if filter.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(len(args)+1)
		args = append(args, filter.Offset)
	}

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_catalogue")
	}
	defer rows.Close()

	result := make([]CatalogueRow, 0)
	for rows.Next() {
		var row CatalogueRow
		if err := rows.Scan(
			&row.ArticleID, &row.Title, &row.Body, &row.AuthorLinkID, &row.PersonID, &row.PersonName,
			&row.ChapterID, &row.SeriesID, &row.SeriesTitle, &row.ChapterOrder,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_catalogue")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_catalogue")
	}
	return result, nil
}

// CountCatalogue implements [Repository].
func (repository *PostgresRepository) CountCatalogue(ctx context.Context, filter CatalogueFilter) (int, error) {
	where, args := catalogueWhere(filter)
	query := fmt.Sprintf(`SELECT count(*) FROM %s %s`, schema.Catalogue.Table, where)

	var total int
	if err := repository.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_catalogue")
	}
	return total, nil
}

// GetIdentifier implements [Repository].
func (repository *PostgresRepository) GetIdentifier(ctx context.Context, kind Kind, id int64) (string, error) {
	table := identifierTable(kind)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, table.Key, table.Table, table.ID)

	var key string
	err := repository.db.QueryRow(ctx, query, id).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound(kind.String())
	}
	return key, dberr.Wrap(err, "get_"+strings.ToLower(kind.String()))
}

// catalogueWhere renders the filter as a WHERE clause with positional args.
func catalogueWhere(filter CatalogueFilter) (string, []any) {
	view := schema.Catalogue
	var (
		conditions []string
		args       []any
	)
	next := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ArticleID != nil {
		conditions = append(conditions, view.ID+" = "+next(*filter.ArticleID))
	}
	if filter.PersonID != nil {
		conditions = append(conditions, view.PersonID+" = "+next(*filter.PersonID))
	}
	if filter.SeriesID != nil {
		conditions = append(conditions, view.SeriesID+" = "+next(*filter.SeriesID))
	}
	if len(filter.Keywords) > 0 {
		alternatives := make([]string, 0, len(filter.Keywords))
		for _, keyword := range filter.Keywords {
			// strpos keeps the match case-sensitive and free of LIKE wildcards.
			alternatives = append(alternatives, "strpos("+view.Body+", "+next(keyword)+") > 0")
		}
		conditions = append(conditions, "("+strings.Join(alternatives, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func identifierTable(kind Kind) schema.IdentifierTable {
	if kind == KindSeries {
		return schema.Series
	}
	return schema.Person
}

// # Transaction

type postgresTx struct {
	tx pgx.Tx
}

func (store *postgresTx) InsertArticle(ctx context.Context, title, body string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING %s
	`,
		schema.Article.Table, schema.Article.Title, schema.Article.Body,
		schema.Article.CreatedAt, schema.Article.UpdatedAt,
		schema.Article.ID,
	)

	var id int64
	err := store.tx.QueryRow(ctx, query, title, body).Scan(&id)
	return id, dberr.Wrap(err, "insert_article")
}

func (store *postgresTx) LockArticle(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.Article.ID, schema.Article.Table, schema.Article.ID,
	)

	var locked int64
	err := store.tx.QueryRow(ctx, query, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Article")
	}
	return dberr.Wrap(err, "lock_article")
}

func (store *postgresTx) UpdateArticle(ctx context.Context, id int64, title, body *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = COALESCE($2, %s), %s = COALESCE($3, %s), %s = NOW()
		WHERE %s = $1
	`,
		schema.Article.Table,
		schema.Article.Title, schema.Article.Title,
		schema.Article.Body, schema.Article.Body,
		schema.Article.UpdatedAt,
		schema.Article.ID,
	)

	cmd, err := store.tx.Exec(ctx, query, id, title, body)
	if err != nil {
		return dberr.Wrap(err, "update_article")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Article")
	}
	return nil
}

func (store *postgresTx) DeleteArticle(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Article.Table, schema.Article.ID)

	cmd, err := store.tx.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_article")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Article")
	}
	return nil
}

func (store *postgresTx) FindIdentifier(ctx context.Context, kind Kind, key string) (int64, bool, error) {
	table := identifierTable(kind)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, table.ID, table.Table, table.Key)

	var id int64
	err := store.tx.QueryRow(ctx, query, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dberr.Wrap(err, "find_"+strings.ToLower(kind.String()))
	}
	return id, true, nil
}

func (store *postgresTx) InsertIdentifier(ctx context.Context, kind Kind, key string) error {
	table := identifierTable(kind)
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (%s) DO NOTHING
	`,
		table.Table, table.Key, table.CreatedAt, table.UpdatedAt,
		table.Key,
	)

	_, err := store.tx.Exec(ctx, query, key)
	return dberr.Wrap(err, "insert_"+strings.ToLower(kind.String()))
}

func (store *postgresTx) FindAuthorLink(ctx context.Context, articleID int64) (*AuthorLink, error) {
	link := schema.AuthorLink
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
		link.ID, link.ArticleID, link.PersonID, link.Table, link.ArticleID,
	)

	found := &AuthorLink{}
	err := store.tx.QueryRow(ctx, query, articleID).Scan(&found.ID, &found.ArticleID, &found.PersonID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_author_link")
	}
	return found, nil
}

func (store *postgresTx) InsertAuthorLink(ctx context.Context, articleID, personID int64) error {
	link := schema.AuthorLink
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())`,
		link.Table, link.ArticleID, link.PersonID, link.UpdatedAt,
	)

	_, err := store.tx.Exec(ctx, query, articleID, personID)
	return dberr.Wrap(err, "insert_author_link")
}

func (store *postgresTx) RepointAuthorLink(ctx context.Context, linkID, personID int64) error {
	link := schema.AuthorLink
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		link.Table, link.PersonID, link.UpdatedAt, link.ID,
	)

	cmd, err := store.tx.Exec(ctx, query, linkID, personID)
	if err != nil {
		return dberr.Wrap(err, "repoint_author_link")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Author link")
	}
	return nil
}

func (store *postgresTx) DeleteAuthorLinks(ctx context.Context, articleID int64) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.AuthorLink.Table, schema.AuthorLink.ArticleID)

	cmd, err := store.tx.Exec(ctx, query, articleID)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_author_links")
	}
	return cmd.RowsAffected(), nil
}

func (store *postgresTx) FindChapterLink(ctx context.Context, articleID int64) (*ChapterLink, error) {
	link := schema.ChapterLink
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
		link.ID, link.ArticleID, link.SeriesID, link.Order, link.Table, link.ArticleID,
	)

	found := &ChapterLink{}
	err := store.tx.QueryRow(ctx, query, articleID).Scan(&found.ID, &found.ArticleID, &found.SeriesID, &found.Order)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_chapter_link")
	}
	return found, nil
}

func (store *postgresTx) InsertChapterLink(ctx context.Context, articleID, seriesID int64, order float64) error {
	link := schema.ChapterLink
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, NOW())`,
		link.Table, link.ArticleID, link.SeriesID, link.Order, link.UpdatedAt,
	)

	_, err := store.tx.Exec(ctx, query, articleID, seriesID, order)
	return dberr.Wrap(err, "insert_chapter_link")
}

func (store *postgresTx) UpdateChapterLink(ctx context.Context, linkID, seriesID int64, order float64) error {
	link := schema.ChapterLink
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		link.Table, link.SeriesID, link.Order, link.UpdatedAt, link.ID,
	)

	cmd, err := store.tx.Exec(ctx, query, linkID, seriesID, order)
	if err != nil {
		return dberr.Wrap(err, "update_chapter_link")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Chapter link")
	}
	return nil
}

func (store *postgresTx) DeleteChapterLinks(ctx context.Context, articleID int64) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.ChapterLink.Table, schema.ChapterLink.ArticleID)

	cmd, err := store.tx.Exec(ctx, query, articleID)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_chapter_links")
	}
	return cmd.RowsAffected(), nil
}
