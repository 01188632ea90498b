package repository

import "context"

// SettingsRepository stores raw JSON documents keyed by setting name.
type SettingsRepository interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Upsert(ctx context.Context, name string, value []byte) error
}
