package credentials

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"archedit/internal/infra"
)

// SettingsFile is the document FileKV uses under the storage path.
const SettingsFile = "settings.json"

// Open builds the settings backend selected by cfg.CredentialBackend. The
// returned close func releases any pool or client it opened.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (KV, func(), error) {
	noop := func() {}
	switch cfg.CredentialBackend {
	case infra.BackendPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		kv := NewPostgresKV(infra.NewSQLRunner(pool, logger.With().Str("component", "credentials").Logger()))
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("credentials: ensure schema: %w", err)
		}
		return kv, pool.Close, nil
	case infra.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("credentials: ping redis: %w", err)
		}
		return NewRedisKV(client, "", Validity), func() { _ = client.Close() }, nil
	case infra.BackendFile, "":
		kv, err := NewFileKV(filepath.Join(cfg.StoragePath, SettingsFile))
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	default:
		return nil, noop, fmt.Errorf("credentials: unknown backend %q", cfg.CredentialBackend)
	}
}
