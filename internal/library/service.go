// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/internal/platform/metrics"
)

// Service is the entry point used by transports and the import tool. It
// pairs the [Writer] and [Projection] over one repository and records the
// outcome of every operation.
type Service struct {
	writer     *Writer
	projection *Projection
	logger     *slog.Logger
}

// NewService builds the engine over repository.
func NewService(repository Repository, logger *slog.Logger, options ...WriterOption) *Service {
	return &Service{
		writer:     NewWriter(repository, logger, options...),
		projection: NewProjection(repository),
		logger:     logger,
	}
}

// CreateArticle inserts an article with its author and optional chapter.
func (service *Service) CreateArticle(ctx context.Context, input CreateInput) (int64, error) {
	id, err := service.writer.Create(ctx, input)
	service.record(ctx, "create", err)
	return id, err
}

// EditArticle applies a partial patch to an article.
func (service *Service) EditArticle(ctx context.Context, id int64, patch Patch) error {
	err := service.writer.Edit(ctx, id, patch)
	service.record(ctx, "edit", err)
	return err
}

// RemoveArticle deletes an article and its links.
func (service *Service) RemoveArticle(ctx context.Context, id int64) error {
	err := service.writer.Remove(ctx, id)
	service.record(ctx, "remove", err)
	return err
}

// GetArticle returns the detail view of one article.
func (service *Service) GetArticle(ctx context.Context, id int64) (*ArticleDetail, error) {
	detail, err := service.projection.Detail(ctx, id)
	service.record(ctx, "detail", err)
	return detail, err
}

// ListArticles returns one page of article summaries.
func (service *Service) ListArticles(ctx context.Context, query ListQuery) (*ArticleList, error) {
	list, err := service.projection.List(ctx, query)
	service.record(ctx, "list", err)
	return list, err
}

// GetPerson returns a person with their articles.
func (service *Service) GetPerson(ctx context.Context, id int64) (*PersonDetail, error) {
	detail, err := service.projection.PersonDetail(ctx, id)
	service.record(ctx, "person_detail", err)
	return detail, err
}

// GetSeries returns a series with its articles.
func (service *Service) GetSeries(ctx context.Context, id int64) (*SeriesDetail, error) {
	detail, err := service.projection.SeriesDetail(ctx, id)
	service.record(ctx, "series_detail", err)
	return detail, err
}

func (service *Service) record(ctx context.Context, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(apperr.CodeInternal)
		if appError := apperr.As(err); appError != nil {
			outcome = strings.ToLower(appError.Code)
		}
	}
	metrics.OperationsTotal.WithLabelValues(operation, outcome).Inc()

	if apperr.IsInternal(err) {
		service.logger.ErrorContext(ctx, "catalogue_operation_failed",
			slog.String("operation", operation),
			slog.Any("cause", apperr.As(err).Cause),
		)
	}
}
