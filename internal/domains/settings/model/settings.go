package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Setting names. Each is one row in the settings table holding a JSON
// document; there is exactly one of each.
const (
	NameAPIConfig      = "api_config"
	NameNotifierConfig = "notifier_config"
)

// APIConfig drives the upstream sync. last_sync_* are stamped by the import
// engine after every run.
type APIConfig struct {
	APIBaseURL          string     `json:"api_base_url"`
	APIKey              string     `json:"api_key"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes"`
	AutoSyncEnabled     bool       `json:"auto_sync_enabled"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus      string     `json:"last_sync_status,omitempty"`
}

func (c APIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIBaseURL, validation.Required, is.URL),
		validation.Field(&c.SyncIntervalMinutes, validation.Required, validation.Min(1), validation.Max(1440)),
	)
}

// DefaultAPIConfig seeds the first boot.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		APIBaseURL:          "http://localhost:9000/feed",
		SyncIntervalMinutes: 15,
		AutoSyncEnabled:     false,
	}
}

// NotifierConfig holds SMTP and SMS delivery settings for the out-of-stock
// report.
type NotifierConfig struct {
	EmailEnabled    bool     `json:"email_enabled"`
	SMTPHost        string   `json:"smtp_host"`
	SMTPPort        int      `json:"smtp_port"`
	SMTPUsername    string   `json:"smtp_username"`
	SMTPPassword    string   `json:"smtp_password"`
	FromEmail       string   `json:"from_email"`
	UseTLS          bool     `json:"use_tls"`
	UseSSL          bool     `json:"use_ssl"`
	EmailRecipients []string `json:"email_recipients"`

	SMSEnabled       bool     `json:"sms_enabled"`
	TwilioAccountSID string   `json:"twilio_account_sid"`
	TwilioAuthToken  string   `json:"twilio_auth_token"`
	TwilioFromNumber string   `json:"twilio_from_number"`
	SMSRecipients    []string `json:"sms_recipients"`
}

func (c NotifierConfig) Validate() error {
	if c.EmailEnabled {
		if err := validation.ValidateStruct(&c,
			validation.Field(&c.SMTPHost, validation.Required),
			validation.Field(&c.SMTPPort, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.FromEmail, validation.Required, is.Email),
		); err != nil {
			return err
		}
	}
	if c.SMSEnabled {
		if err := validation.ValidateStruct(&c,
			validation.Field(&c.TwilioAccountSID, validation.Required),
			validation.Field(&c.TwilioAuthToken, validation.Required),
			validation.Field(&c.TwilioFromNumber, validation.Required),
		); err != nil {
			return err
		}
	}
	return nil
}

// DefaultNotifierConfig seeds the first boot with both channels off.
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		SMTPPort: 587,
		UseTLS:   true,
	}
}
