package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"warehouse-picking-backend/internal/domains/picking/service"
	"warehouse-picking-backend/pkg/logger"
)

const TypePickEventCleanup = "picking:event_cleanup"

type CleanupPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewCleanupTask builds the periodic retention task for old pick events.
func NewCleanupTask(retentionDays int) (*asynq.Task, error) {
	payload, err := json.Marshal(CleanupPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cleanup payload: %w", err)
	}
	return asynq.NewTask(TypePickEventCleanup, payload), nil
}

type CleanupHandler struct {
	pickingService service.PickingService
}

func NewCleanupHandler(pickingService service.PickingService) *CleanupHandler {
	return &CleanupHandler{pickingService: pickingService}
}

func (h *CleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal cleanup payload: %w", err)
	}

	deleted, err := h.pickingService.CleanupEvents(ctx, payload.RetentionDays)
	if err != nil {
		return fmt.Errorf("pick event cleanup failed: %w", err)
	}

	logger.Info("pick event cleanup finished", map[string]interface{}{
		"deleted":        deleted,
		"retention_days": payload.RetentionDays,
	})
	return nil
}
