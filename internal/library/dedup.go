// Copyright (c) 2026 Library. All rights reserved.

package library

import (
	"context"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/internal/platform/validate"
	"github.com/zrecovery/library-sub000/pkg/natkey"
)

/*
Resolve returns the id of the person or series identified by key, creating
the row when it does not exist yet.

It inserts with conflict-ignore and then re-selects, so two writers racing on
the same key both end up with the one surviving row. Calling it twice with the
same key inside one transaction returns the same id.

Parameters:
  - ctx: context.Context
  - tx: Tx (open transaction)
  - kind: Kind (KindPerson or KindSeries)
  - key: string (name or title; normalized before use)

Returns:
  - int64: identifier id
  - error: VALIDATION_ERROR for a blank key, INTERNAL_ERROR on store failure
*/
func Resolve(ctx context.Context, tx Tx, kind Kind, key string) (int64, error) {
	key = natkey.Normalize(key)
	if key == "" {
		return 0, validate.FieldError(keyField(kind), "This field is required")
	}

	if err := tx.InsertIdentifier(ctx, kind, key); err != nil {
		return 0, err
	}

	id, found, err := tx.FindIdentifier(ctx, kind, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperr.Integrity("%s %q missing right after insert", kind, key)
	}
	return id, nil
}

// Lookup finds an existing identifier without creating one.
func Lookup(ctx context.Context, tx Tx, kind Kind, key string) (int64, bool, error) {
	key = natkey.Normalize(key)
	if key == "" {
		return 0, false, nil
	}
	return tx.FindIdentifier(ctx, kind, key)
}

func keyField(kind Kind) string {
	if kind == KindSeries {
		return FieldChapterTitle
	}
	return FieldAuthorName
}
