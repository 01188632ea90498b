package job

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"warehouse-picking-backend/internal/domains/importer/model"
	"warehouse-picking-backend/internal/domains/importer/service"
	settingsservice "warehouse-picking-backend/internal/domains/settings/service"
	"warehouse-picking-backend/pkg/logger"
)

const TypeSyncTick = "importer:sync_tick"

// NewSyncTickTask builds the once-a-minute scheduler tick. The tick is cheap;
// the handler decides whether a sync is actually due.
func NewSyncTickTask() *asynq.Task {
	return asynq.NewTask(TypeSyncTick, nil)
}

type SyncTickHandler struct {
	importerService service.ImporterService
	settings        settingsservice.SettingsService
	now             func() time.Time
}

func NewSyncTickHandler(importerService service.ImporterService, settings settingsservice.SettingsService) *SyncTickHandler {
	return &SyncTickHandler{
		importerService: importerService,
		settings:        settings,
		now:             time.Now,
	}
}

// ProcessTask runs a sync when auto sync is on and the configured interval
// has elapsed since the last run. A concurrent sync is not an error; the
// next tick will catch up.
func (h *SyncTickHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	cfg, err := h.settings.GetAPIConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.AutoSyncEnabled {
		return nil
	}

	if cfg.LastSyncAt != nil {
		due := cfg.LastSyncAt.Add(time.Duration(cfg.SyncIntervalMinutes) * time.Minute)
		if h.now().Before(due) {
			return nil
		}
	}

	if _, err := h.importerService.Sync(ctx, nil); err != nil {
		if errors.Is(err, model.ErrSyncBusy) {
			return nil
		}
		logger.Error("scheduled sync failed", err)
		return err
	}
	return nil
}
