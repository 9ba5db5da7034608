// Copyright (c) 2026 Library. All rights reserved.

// Package dberr translates low-level database errors into [apperr.AppError]
// values. Store code calls [Wrap] exactly once per failing statement so that
// callers above the store never see raw driver errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes the store cares about.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	NotNullViolation    = "23502"
)

// ErrNotFound is the generic not-found error for rows with no better name.
var ErrNotFound = apperr.NotFound("Resource")

// Wrap inspects a database error and classifies it.
//
//   - pgx.ErrNoRows        → NOT_FOUND
//   - unique violation     → CONFLICT
//   - foreign key / not null violation → INTERNAL (integrity)
//   - anything else        → INTERNAL
//
// The action names the failing statement (e.g. "insert_article") and is kept
// in the cause for logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified further down.
	if ae := apperr.As(err); ae != nil {
		return ae
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case UniqueViolation:
			conflict := apperr.Conflict("Duplicate value violates " + pgErr.ConstraintName)
			conflict.Cause = fmt.Errorf("%s: %w", action, err)
			return conflict
		case ForeignKeyViolation, NotNullViolation:
			return apperr.Integrity("%s: %w", action, err)
		}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
