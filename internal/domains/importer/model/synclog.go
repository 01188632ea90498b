package model

import "time"

// =====================================================
// SYNC LOG STATUSES
// =====================================================
const (
	SyncStatusInProgress = "in_progress"
	SyncStatusSuccess    = "success"
	SyncStatusError      = "error"
)

// StaleSyncAfter is how long an in_progress run may sit before a new sync
// declares it crashed and takes over.
const StaleSyncAfter = 15 * time.Minute

// SyncLog is one row in sync_logs. A row is created, and committed, before
// the import starts so concurrent syncs can see each other.
type SyncLog struct {
	ID              int64      `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Status          string     `json:"status"`
	OrdersFetched   int        `json:"orders_fetched"`
	OrdersCreated   int        `json:"orders_created"`
	OrdersUpdated   int        `json:"orders_updated"`
	OrdersPacked    int        `json:"orders_packed"`
	ProductsCreated int        `json:"products_created"`
	ProductsUpdated int        `json:"products_updated"`
	LinesCreated    int        `json:"lines_created"`
	LinesUpdated    int        `json:"lines_updated"`
	Warnings        []string   `json:"warnings"`
	ErrorMessage    string     `json:"error_message"`
	TriggeredBy     *int64     `json:"triggered_by,omitempty"`
}

// SyncStatus is the dashboard summary: latest run plus the schedule state.
type SyncStatus struct {
	AutoSyncEnabled     bool       `json:"auto_sync_enabled"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus      string     `json:"last_sync_status"`
	InProgress          bool       `json:"in_progress"`
	LatestLog           *SyncLog   `json:"latest_log,omitempty"`
}
