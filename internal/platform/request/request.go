// Copyright (c) 2026 Library. All rights reserved.

/*
Package requestutil extracts data from HTTP requests: JSON bodies and URL
parameters, with errors already classified as validation failures.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zrecovery/library-sub000/internal/platform/validate"
	"github.com/zrecovery/library-sub000/pkg/pagination"
)

// DecodeJSON decodes the request body into target, rejecting unknown fields.
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Int64 parses a named URL parameter as a positive 64-bit identifier.
func Int64(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, validate.FieldError(name, "Must be a positive integer")
	}
	return id, nil
}

// QueryInt64 parses an optional query parameter. ok is false when absent.
func QueryInt64(request *http.Request, name string) (value int64, ok bool, err error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return 0, false, validate.FieldError(name, "Must be a positive integer")
	}
	return value, true, nil
}

// Page reads the "page" and "size" query parameters, clamped to valid ranges.
func Page(request *http.Request) pagination.Params {
	return pagination.FromRequest(request)
}
