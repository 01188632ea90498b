package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// REQUESTS
// =====================================================

type ChangeStateRequest struct {
	Status string `json:"status"`
}

func (r ChangeStateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(StatusOpen, StatusPicking, StatusReadyToPack, StatusPacked),
		),
	)
}

type UpdateMessageRequest struct {
	CustomerMessage *string `json:"customer_message"`
	EmailSent       *bool   `json:"email_sent"`
}

func (r UpdateMessageRequest) Validate() error {
	if r.CustomerMessage == nil && r.EmailSent == nil {
		return validation.NewError("validation_empty", "at least one field must be provided")
	}
	return nil
}

type SplitAssignment struct {
	LineID int64 `json:"line_id"`
	Batch  int   `json:"batch"`
}

type SplitRequest struct {
	Assignments []SplitAssignment `json:"assignments"`
}

func (r SplitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Assignments, validation.Required, validation.Length(1, 0)),
	)
}

// =====================================================
// LISTING FILTERS
// =====================================================

type PackedFilter struct {
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// =====================================================
// RESPONSES
// =====================================================

// StatusRow is one row of the order status board.
type StatusRow struct {
	Order
	TotalLines int `json:"total_lines"`
	DoneLines  int `json:"done_lines"`
	TotalQty   int `json:"total_qty"`
	PickedQty  int `json:"picked_qty"`
	ShortQty   int `json:"short_qty"`
}

// Detail is an order with its lines.
type Detail struct {
	Order
	Lines []OrderLine `json:"lines"`
}
