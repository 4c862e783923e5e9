package credentials

import (
	"context"

	"archedit/internal/infra"
	"archedit/internal/sqlinline"
)

// PostgresKV stores settings rows in app_settings.
type PostgresKV struct {
	sql infra.SQLExecutor
}

func NewPostgresKV(sql infra.SQLExecutor) *PostgresKV {
	return &PostgresKV{sql: sql}
}

// EnsureSchema creates app_settings if needed.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := p.sql.Exec(ctx, sqlinline.QCreateAppSettings)
	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := p.sql.QueryRow(ctx, sqlinline.QSelectSetting, key).Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.sql.Exec(ctx, sqlinline.QUpsertSetting, key, value)
	return err
}

func (p *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := p.sql.Exec(ctx, sqlinline.QDeleteSettings, keys)
	return err
}
