package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"warehouse-picking-backend/pkg/logger"
)

// TwilioConfig is resolved from the stored notifier settings at send time.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Sender delivers a text message to one phone number.
type Sender interface {
	Send(ctx context.Context, cfg TwilioConfig, to, body string) error
}

type twilioSender struct {
	httpClient *http.Client
	baseURL    string
}

// NewTwilioSender builds the production sender against the Twilio REST API.
func NewTwilioSender() Sender {
	return &twilioSender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.twilio.com",
	}
}

func (t *twilioSender) Send(ctx context.Context, cfg TwilioConfig, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, cfg.AccountSID)

	form := url.Values{}
	form.Set("From", cfg.FromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(cfg.AccountSID, cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, string(respBody))
	}

	logger.Info("sms sent", map[string]interface{}{"to": to})
	return nil
}
