// Copyright (c) 2026 Library. All rights reserved.

package settings

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/zrecovery/library-sub000/internal/platform/validate"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Service validates and stores settings.
type Service struct {
	repository Repository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a settings [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger, now: time.Now}
}

// Get returns one setting, or NOT_FOUND.
func (service *Service) Get(ctx context.Context, scope Scope, key string) (*Setting, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return service.repository.Get(ctx, scope, key)
}

// List returns the settings of scope, restricted to keys when given.
func (service *Service) List(ctx context.Context, scope Scope, keys ...string) ([]Setting, error) {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return nil, err
		}
	}
	return service.repository.List(ctx, scope, keys)
}

/*
Set creates or replaces a setting.

The type is inferred from the JSON value when not supplied; a supplied type
must agree with the value.

Returns:
  - *Setting: the stored setting
  - error: VALIDATION_ERROR or INTERNAL_ERROR
*/
func (service *Service) Set(ctx context.Context, scope Scope, key string, input Input) (*Setting, error) {
	value := bytes.TrimSpace(input.Value)

	validator := &validate.Validator{}
	validator.
		Matches(FieldKey, key, keyPattern, "Must start with a letter and contain only letters, numbers, hyphens and underscores").
		MaxLen(FieldKey, key, MaxKeyLength).
		MaxLen(FieldDescription, input.Description, MaxDescriptionLength).
		Custom(FieldValue, len(value) > MaxValueBytes, "Value is too large")

	detected, err := detectType(value)
	validator.Custom(FieldValue, err != nil, "Must be a string, number, boolean or object")
	if input.Type != "" {
		validator.OneOf(FieldType, string(input.Type), string(TypeString), string(TypeNumber), string(TypeBoolean), string(TypeJSON))
		validator.Custom(FieldType, err == nil && input.Type != detected, "Does not match the value")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	setting := Setting{
		Key:         key,
		Value:       value,
		Type:        detected,
		Description: input.Description,
		UpdatedAt:   service.now().UTC(),
	}
	if err := service.repository.Put(ctx, scope, setting); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "setting_saved",
		slog.String("scope", scope.String()),
		slog.String("key", key),
		slog.String("type", string(detected)),
	)
	return &setting, nil
}

// Remove deletes a setting, or returns NOT_FOUND.
func (service *Service) Remove(ctx context.Context, scope Scope, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := service.repository.Delete(ctx, scope, key); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "setting_removed", slog.String("scope", scope.String()), slog.String("key", key))
	return nil
}

func validateKey(key string) error {
	validator := &validate.Validator{}
	return validator.
		Matches(FieldKey, key, keyPattern, "Must start with a letter and contain only letters, numbers, hyphens and underscores").
		MaxLen(FieldKey, key, MaxKeyLength).
		Err()
}
