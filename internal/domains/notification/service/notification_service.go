package service

import (
	"context"
	"time"

	"warehouse-picking-backend/internal/domains/notification/model"
	settingsmodel "warehouse-picking-backend/internal/domains/settings/model"
	settingsservice "warehouse-picking-backend/internal/domains/settings/service"
	sxrepo "warehouse-picking-backend/internal/domains/stockexception/repository"
	"warehouse-picking-backend/internal/infrastructure/email"
	"warehouse-picking-backend/internal/infrastructure/sms"
	"warehouse-picking-backend/pkg/logger"
)

// NotificationService sends the out-of-stock report and the settings test
// messages.
type NotificationService interface {
	SendReport(ctx context.Context, req model.SendReportRequest) (*model.SendResult, error)
	TestEmail(ctx context.Context, recipient string) error
	TestSMS(ctx context.Context, phone string) error
}

// =====================================================
// NOTIFICATION SERVICE IMPLEMENTATION
// =====================================================
type notificationService struct {
	exceptionRepo sxrepo.StockExceptionRepository
	settings      settingsservice.SettingsService
	emailSender   email.Sender
	smsSender     sms.Sender
	now           func() time.Time
}

func NewNotificationService(
	exceptionRepo sxrepo.StockExceptionRepository,
	settings settingsservice.SettingsService,
	emailSender email.Sender,
	smsSender sms.Sender,
) NotificationService {
	return &notificationService{
		exceptionRepo: exceptionRepo,
		settings:      settings,
		emailSender:   emailSender,
		smsSender:     smsSender,
		now:           time.Now,
	}
}

func (s *notificationService) SendReport(ctx context.Context, req model.SendReportRequest) (*model.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.settings.GetNotifierConfig(ctx)
	if err != nil {
		return nil, err
	}

	exceptions, err := s.exceptionRepo.ListUnresolved(ctx)
	if err != nil {
		return nil, err
	}
	if len(exceptions) == 0 {
		return nil, model.ErrNothingToReport
	}

	at := s.now()
	body := req.Message
	if body == "" {
		body = model.BuildReport(exceptions, at)
	}

	var recipients []string
	switch req.Channel {
	case model.ChannelEmail:
		if !cfg.EmailEnabled {
			return nil, model.ErrChannelDisabled
		}
		recipients = req.Recipients
		if len(recipients) == 0 {
			recipients = cfg.EmailRecipients
		}
		if len(recipients) == 0 {
			return nil, model.ErrNoRecipients
		}
		if err := s.emailSender.Send(ctx, smtpConfig(cfg), recipients, model.ReportSubject, body); err != nil {
			return nil, err
		}

	case model.ChannelSMS:
		if !cfg.SMSEnabled {
			return nil, model.ErrChannelDisabled
		}
		recipients = req.Recipients
		if len(recipients) == 0 {
			recipients = cfg.SMSRecipients
		}
		if len(recipients) == 0 {
			return nil, model.ErrNoRecipients
		}
		for _, to := range recipients {
			if err := s.smsSender.Send(ctx, twilioConfig(cfg), to, body); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("out-of-stock report sent", map[string]interface{}{
		"channel":    req.Channel,
		"recipients": len(recipients),
		"exceptions": len(exceptions),
	})

	return &model.SendResult{
		Channel:    req.Channel,
		Recipients: recipients,
		Exceptions: len(exceptions),
		SentAt:     at.Format(time.RFC3339),
	}, nil
}

func (s *notificationService) TestEmail(ctx context.Context, recipient string) error {
	cfg, err := s.settings.GetNotifierConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.EmailEnabled {
		return model.ErrChannelDisabled
	}
	return s.emailSender.Send(ctx, smtpConfig(cfg), []string{recipient},
		"Test Email", "SMTP settings are working.")
}

func (s *notificationService) TestSMS(ctx context.Context, phone string) error {
	cfg, err := s.settings.GetNotifierConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.SMSEnabled {
		return model.ErrChannelDisabled
	}
	return s.smsSender.Send(ctx, twilioConfig(cfg), phone, "SMS settings are working.")
}

func smtpConfig(cfg *settingsmodel.NotifierConfig) email.SMTPConfig {
	return email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
		UseTLS:   cfg.UseTLS,
		UseSSL:   cfg.UseSSL,
	}
}

func twilioConfig(cfg *settingsmodel.NotifierConfig) sms.TwilioConfig {
	return sms.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	}
}
