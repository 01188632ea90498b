package job

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"warehouse-picking-backend/internal/domains/notification/model"
	"warehouse-picking-backend/internal/domains/notification/service"
	settingsservice "warehouse-picking-backend/internal/domains/settings/service"
	"warehouse-picking-backend/pkg/logger"
)

const TypeOutOfStockReport = "notification:out_of_stock_report"

// NewReportTask builds the scheduled shortage report task.
func NewReportTask() *asynq.Task {
	return asynq.NewTask(TypeOutOfStockReport, nil)
}

type ReportHandler struct {
	notificationService service.NotificationService
	settings            settingsservice.SettingsService
}

func NewReportHandler(notificationService service.NotificationService, settings settingsservice.SettingsService) *ReportHandler {
	return &ReportHandler{notificationService: notificationService, settings: settings}
}

// ProcessTask sends the report on every enabled channel with the configured
// recipients. An empty shortage list or a disabled channel is a quiet no-op.
func (h *ReportHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	cfg, err := h.settings.GetNotifierConfig(ctx)
	if err != nil {
		return err
	}

	channels := []string{}
	if cfg.EmailEnabled {
		channels = append(channels, model.ChannelEmail)
	}
	if cfg.SMSEnabled {
		channels = append(channels, model.ChannelSMS)
	}

	for _, channel := range channels {
		result, err := h.notificationService.SendReport(ctx, model.SendReportRequest{Channel: channel})
		if errors.Is(err, model.ErrNothingToReport) || errors.Is(err, model.ErrNoRecipients) {
			continue
		}
		if err != nil {
			logger.Error("scheduled report failed", err)
			return err
		}
		logger.Info("scheduled report sent", map[string]interface{}{
			"channel":    result.Channel,
			"recipients": len(result.Recipients),
		})
	}
	return nil
}
