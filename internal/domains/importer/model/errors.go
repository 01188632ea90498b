package model

import "errors"

// =====================================================
// IMPORTER ERRORS
// =====================================================
var (
	ErrSyncBusy        = errors.New("a sync is already in progress")
	ErrSyncLogNotFound = errors.New("sync log not found")
)

// Error codes for API responses
const (
	ErrCodeSyncBusy        = "IMP001"
	ErrCodeSyncLogNotFound = "IMP002"
)
