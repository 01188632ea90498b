package model

import "errors"

// =====================================================
// NOTIFICATION ERRORS
// =====================================================
var (
	ErrChannelDisabled = errors.New("notification channel is disabled")
	ErrNoRecipients    = errors.New("no recipients configured")
	ErrNothingToReport = errors.New("no unresolved shortages to report")
)

// Error codes for API responses
const (
	ErrCodeChannelDisabled = "NTF001"
	ErrCodeNoRecipients    = "NTF002"
	ErrCodeNothingToReport = "NTF003"
)
