package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores settings as plain keys under a namespace. A zero ttl keeps
// keys until they are deleted.
type RedisKV struct {
	client    redis.Cmdable
	namespace string
	ttl       time.Duration
}

func NewRedisKV(client redis.Cmdable, namespace string, ttl time.Duration) *RedisKV {
	if namespace == "" {
		namespace = "archedit:settings"
	}
	return &RedisKV{client: client, namespace: namespace, ttl: ttl}
}

func (r *RedisKV) key(k string) string { return r.namespace + ":" + k }

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}
