package model

import "time"

// StockException is a snapshot of a shortage report. Product title, category
// and the affected order numbers are copied at reporting time so the record
// stays meaningful after later imports change the catalog.
type StockException struct {
	ID                 int64     `json:"id"`
	SKU                string    `json:"sku"`
	ProductTitle       string    `json:"product_title"`
	Category           string    `json:"category"`
	QtyShort           int       `json:"qty_short"`
	OrderNumbers       []string  `json:"order_numbers"`
	ReportedBy         *int64    `json:"reported_by,omitempty"`
	ReportedByUsername string    `json:"reported_by_username,omitempty"`
	Resolved           bool      `json:"resolved"`
	OrderedFromCompany bool      `json:"ordered_from_company"`
	NaCancel           bool      `json:"na_cancel"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Filter narrows the exception listing.
type Filter struct {
	Resolved *bool
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	SortBy   string // created_at | sku | qty_short | vendor
	SortDesc bool
}

// AggregateRow sums unresolved shortages per SKU for the overview board.
type AggregateRow struct {
	SKU          string    `json:"sku"`
	ProductTitle string    `json:"product_title"`
	Category     string    `json:"category"`
	TotalShort   int       `json:"total_short"`
	Reports      int       `json:"reports"`
	LastReported time.Time `json:"last_reported"`
}
