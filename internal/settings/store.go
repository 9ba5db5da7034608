// Copyright (c) 2026 Library. All rights reserved.

package settings

import "context"

// Repository persists settings per scope.
type Repository interface {
	// Get returns NOT_FOUND when key is not set in scope.
	Get(ctx context.Context, scope Scope, key string) (*Setting, error)
	Put(ctx context.Context, scope Scope, setting Setting) error
	// List returns the settings named by keys, or all of them when keys is empty.
	// Missing keys are skipped.
	List(ctx context.Context, scope Scope, keys []string) ([]Setting, error)
	// Delete returns NOT_FOUND when key is not set in scope.
	Delete(ctx context.Context, scope Scope, key string) error
}
