// Copyright (c) 2026 Library. All rights reserved.

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/zrecovery/library-sub000/internal/platform/apperr"
	"github.com/zrecovery/library-sub000/internal/platform/constants"
)

// RedisRepository stores each scope as one hash: field = key, value = JSON
// encoded [Setting].
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a Redis-backed [Repository].
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func hashKey(scope Scope) string {
	return constants.RedisPrefixSettings + scope.String()
}

/*
Get retrieves one setting.

Parameters:
  - ctx: context.Context
  - scope: Scope
  - key: string

Returns:
  - *Setting
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisRepository) Get(ctx context.Context, scope Scope, key string) (*Setting, error) {
	raw, err := repository.client.HGet(ctx, hashKey(scope), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Setting")
		}
		return nil, apperr.Internal(fmt.Errorf("redis_settings_get_failed: %w", err))
	}
	return decode(raw)
}

// Put writes setting under its key, replacing any previous value.
func (repository *RedisRepository) Put(ctx context.Context, scope Scope, setting Setting) error {
	encoded, err := json.Marshal(setting)
	if err != nil {
		return apperr.Internal(fmt.Errorf("settings_encode_failed: %w", err))
	}
	if err := repository.client.HSet(ctx, hashKey(scope), setting.Key, encoded).Err(); err != nil {
		return apperr.Internal(fmt.Errorf("redis_settings_set_failed: %w", err))
	}
	return nil
}

// List returns settings sorted by key.
func (repository *RedisRepository) List(ctx context.Context, scope Scope, keys []string) ([]Setting, error) {
	var raws []string
	if len(keys) == 0 {
		all, err := repository.client.HGetAll(ctx, hashKey(scope)).Result()
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("redis_settings_list_failed: %w", err))
		}
		for _, raw := range all {
			raws = append(raws, raw)
		}
	} else {
		values, err := repository.client.HMGet(ctx, hashKey(scope), keys...).Result()
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("redis_settings_list_failed: %w", err))
		}
		for _, value := range values {
			// HMGET yields nil for missing fields.
			if raw, ok := value.(string); ok {
				raws = append(raws, raw)
			}
		}
	}

	result := make([]Setting, 0, len(raws))
	for _, raw := range raws {
		setting, err := decode(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, *setting)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// Delete removes one setting.
func (repository *RedisRepository) Delete(ctx context.Context, scope Scope, key string) error {
	removed, err := repository.client.HDel(ctx, hashKey(scope), key).Result()
	if err != nil {
		return apperr.Internal(fmt.Errorf("redis_settings_delete_failed: %w", err))
	}
	if removed == 0 {
		return apperr.NotFound("Setting")
	}
	return nil
}

func decode(raw string) (*Setting, error) {
	var setting Setting
	if err := json.Unmarshal([]byte(raw), &setting); err != nil {
		return nil, apperr.Integrity("undecodable setting: %v", err)
	}
	return &setting, nil
}
