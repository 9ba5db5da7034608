// Copyright (c) 2026 Library. All rights reserved.

// Package pagination provides page-based navigation helpers for list
// endpoints.
//
// # Overview
//
// Pages are 1-indexed. A request asks for (page, size); the response carries
// the current page, the page size, the total number of matching items and the
// number of pages, computed from the total count rather than the page itself.
package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	// DefaultSize is the number of items per page if not specified.
	DefaultSize = 10
	// MaxSize is the upper bound for items per page.
	MaxSize = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
	// MaxPage keeps (page - 1) * MaxSize within int.
	MaxPage = math.MaxInt / MaxSize
)

// Params holds a normalised page and size.
type Params struct {
	Page int
	Size int
}

// New clamps page and size into their valid ranges.
//
// # Clamping
//
// page < 1 becomes [DefaultPage]; page above [MaxPage] becomes [MaxPage];
// size < 1 becomes [DefaultSize]; size above [MaxSize] becomes [MaxSize].
func New(page, size int) Params {
	switch {
	case page < 1:
		page = DefaultPage
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case size < 1:
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}
	return Params{Page: page, Size: size}
}

// Offset returns the SQL OFFSET value, (page - 1) * size.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// Limit returns the SQL LIMIT value.
func (p Params) Limit() int {
	return p.Size
}

// Meta is the pagination block included in list responses.
type Meta struct {
	Current int `json:"current"`
	Size    int `json:"size"`
	Items   int `json:"items"`
	Pages   int `json:"pages"`
}

// NewMeta builds the pagination block for items matching rows.
func NewMeta(p Params, items int) Meta {
	return Meta{
		Current: p.Page,
		Size:    p.Size,
		Items:   items,
		Pages:   Pages(items, p.Size),
	}
}

// Pages returns ceil(items / size), or 0 when either is not positive.
func Pages(items, size int) int {
	if items <= 0 || size <= 0 {
		return 0
	}
	return (items + size - 1) / size
}

// FromRequest parses the "page" and "size" query parameters.
// Malformed values fall back to the defaults before clamping.
func FromRequest(r *http.Request) Params {
	return New(
		parseIntParam(r, "page", DefaultPage),
		parseIntParam(r, "size", DefaultSize),
	)
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
