package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-picking-backend/internal/domains/settings/model"
)

type postgresSettingsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &postgresSettingsRepository{pool: pool}
}

func (r *postgresSettingsRepository) Get(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, nil
}

func (r *postgresSettingsRepository) Upsert(ctx context.Context, name string, value []byte) error {
	query := `
		INSERT INTO settings (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", name, err)
	}
	return nil
}
