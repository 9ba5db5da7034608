// Copyright (c) 2026 Library. All rights reserved.

// Package natkey normalises natural keys (person names, series titles) before
// they are used for find-or-create.
//
// Two spellings that differ only in surrounding whitespace or in Unicode
// composition ("é" as one code point versus "e" + combining acute) resolve to
// the same key, so they can never produce two rows.
package natkey

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims surrounding whitespace and converts s to Unicode NFC.
// Interior whitespace and letter case are preserved.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Equal reports whether a and b normalise to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
