// Copyright (c) 2026 Library. All rights reserved.

/*
Package pointer provides generic helpers for optional values.

Partial updates model "field absent" as a nil pointer, so these helpers keep
patch construction and application terse.
*/
package pointer

import "strings"

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Fallback dereferences p, returning fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Trimmed returns a pointer to the whitespace-trimmed copy of *p, or nil.
func Trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*p)
	return &trimmed
}
