// Copyright (c) 2026 Library. All rights reserved.

/*
Package settings is a small key/value store for system-wide and per-user
preferences, kept in Redis hashes.

Values are arbitrary JSON scalars or objects tagged with their type, so a
client reading "itemsPerPage" gets back a number and not a string.
*/
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueType tags the JSON kind of a stored value.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeJSON    ValueType = "json"
)

// Limits on stored settings.
const (
	MaxKeyLength         = 100
	MaxValueBytes        = 5000
	MaxDescriptionLength = 500
)

// Field names used in validation errors.
const (
	FieldKey         = "key"
	FieldValue       = "value"
	FieldType        = "type"
	FieldDescription = "description"
)

// Scope selects the system-wide settings or those of one user.
type Scope struct {
	UserID *int64
}

// SystemScope is the scope shared by every user.
func SystemScope() Scope { return Scope{} }

// UserScope is the scope of a single user.
func UserScope(userID int64) Scope { return Scope{UserID: &userID} }

// String returns the hash suffix of the scope ("system" or "user:<id>").
func (s Scope) String() string {
	if s.UserID == nil {
		return "system"
	}
	return "user:" + strconv.FormatInt(*s.UserID, 10)
}

// Setting is one stored key with its typed value.
type Setting struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Type        ValueType       `json:"type"`
	Description string          `json:"description,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Input is the payload of [Service.Set].
type Input struct {
	Value       json.RawMessage `json:"value"`
	Type        ValueType       `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
}

// detectType infers the tag of a raw JSON value. Arrays count as json.
func detectType(value json.RawMessage) (ValueType, error) {
	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		return "", fmt.Errorf("invalid JSON value: %w", err)
	}
	switch decoded.(type) {
	case string:
		return TypeString, nil
	case float64:
		return TypeNumber, nil
	case bool:
		return TypeBoolean, nil
	case map[string]any, []any:
		return TypeJSON, nil
	default:
		return "", fmt.Errorf("null is not a valid setting value")
	}
}
