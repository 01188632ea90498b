package service

import (
	"context"

	"warehouse-picking-backend/internal/domains/importer/model"
)

// ImporterService runs feed syncs and exposes their history.
type ImporterService interface {
	// Sync runs one full import. Only one sync runs at a time; a second
	// caller gets ErrSyncBusy. triggeredBy is nil for scheduled runs.
	Sync(ctx context.Context, triggeredBy *int64) (*model.SyncLog, error)
	Status(ctx context.Context) (*model.SyncStatus, error)
	ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)
}
