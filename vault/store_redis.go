// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements SessionStore on top of a Redis client, for hosts
// that need session state shared across multiple processes or survivable
// across a restart.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a RedisStore. keyPrefix namespaces all keys this
// store writes, e.g. "wardauth:session:".
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, prefix: keyPrefix}
}

func (r *RedisStore) key(key uint64) string {
	return r.prefix + strconv.FormatUint(key, 10)
}

// Store persists value under key with no expiry; callers that want expiry
// enforcement should prune using RefreshRecord.ExpiresAt, matching the
// rest of the session store's digest-keyed, host-pruned design.
func (r *RedisStore) Store(ctx context.Context, key uint64, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return newError(PersistenceError, "store", "redis SET failed", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, key uint64) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, newError(PersistenceError, "load", "redis GET failed", err)
	}
	return v, true, nil
}

func (r *RedisStore) Remove(ctx context.Context, key uint64) ([]byte, bool, error) {
	v, loaded, err := r.Load(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !loaded {
		return nil, false, nil
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return nil, false, newError(PersistenceError, "remove", "redis DEL failed", err)
	}
	return v, true, nil
}

var _ SessionStore = (*RedisStore)(nil)
