package sms

import (
	"context"

	"warehouse-picking-backend/pkg/logger"
)

// mockSender logs instead of sending. Used in development so the picking
// flow can be exercised without Twilio credentials.
type mockSender struct{}

func NewMockSender() Sender {
	return &mockSender{}
}

func (m *mockSender) Send(ctx context.Context, cfg TwilioConfig, to, body string) error {
	logger.Info("mock sms", map[string]interface{}{
		"to":   to,
		"body": body,
	})
	return nil
}
