package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// =====================================================
// PICK EVENT
// =====================================================

// Pick event kinds. Events are append-only; reverts are recorded as new
// events with a negative delta, never by mutating history.
const (
	EventPick   = "pick"
	EventShort  = "short"
	EventRevert = "revert"
)

type PickEvent struct {
	ID          int64     `json:"id"`
	OrderLineID int64     `json:"order_line_id"`
	DeltaQty    int       `json:"delta_qty"`
	Kind        string    `json:"kind"`
	UserID      *int64    `json:"user_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PickEventRow is an audit listing row with join context.
type PickEventRow struct {
	PickEvent
	SKU         string `json:"sku"`
	OrderNumber string `json:"order_number"`
	Username    string `json:"username,omitempty"`
}

type PickEventFilter struct {
	SKU      string
	Kind     string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// =====================================================
// PICK LIST
// =====================================================

// PickRow is one SKU on the pick list, aggregated across the current
// shipment batches of all active orders.
type PickRow struct {
	SKU                    string           `json:"sku"`
	Title                  string           `json:"title"`
	Category               string           `json:"category"`
	Subcategory            string           `json:"subcategory"`
	VendorName             string           `json:"vendor_name"`
	VariationDetails       string           `json:"variation_details"`
	ImageURL               string           `json:"image_url"`
	Price                  *decimal.Decimal `json:"price,omitempty"`
	StoreQuantityAvailable int              `json:"store_quantity_available"`
	Needed                 int              `json:"needed"`
	Picked                 int              `json:"picked"`
	Short                  int              `json:"short"`
	Remaining              int              `json:"remaining"`
	OrderCount             int              `json:"order_count"`
}

type PickListStats struct {
	TotalSKUs      int `json:"total_skus"`
	TotalRemaining int `json:"total_remaining"`
	TotalPicked    int `json:"total_picked"`
	TotalShort     int `json:"total_short"`
	OpenOrders     int `json:"open_orders"`
	PickingOrders  int `json:"picking_orders"`
}

// SKUOrder is one outstanding order line for a SKU, in FIFO position.
type SKUOrder struct {
	LineID       int64     `json:"line_id"`
	OrderID      int64     `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerName string    `json:"customer_name"`
	OrderedAt    time.Time `json:"ordered_at"`
	QtyOrdered   int       `json:"qty_ordered"`
	QtyPicked    int       `json:"qty_picked"`
	QtyShort     int       `json:"qty_short"`
	Remaining    int       `json:"remaining"`
}

// =====================================================
// PICKED ITEMS VIEW
// =====================================================

// PickedItem is a line with picking progress, shown on the picked-items
// board until its order leaves picking.
type PickedItem struct {
	LineID       int64      `json:"line_id"`
	OrderID      int64      `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerName string     `json:"customer_name"`
	SKU          string     `json:"sku"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory"`
	ImageURL     string     `json:"image_url"`
	QtyOrdered   int        `json:"qty_ordered"`
	QtyPicked    int        `json:"qty_picked"`
	QtyShort     int        `json:"qty_short"`
	LastPickedAt *time.Time `json:"last_picked_at,omitempty"`
	LastPickedBy string     `json:"last_picked_by,omitempty"`
}

type PickedItemFilter struct {
	Search      string
	Category    string
	Subcategory string
	SortBy      string // picked_at | sku | order_number
	SortDesc    bool
}

// =====================================================
// REQUESTS / RESULTS
// =====================================================

type PickRequest struct {
	SKU   string `json:"sku"`
	Qty   int    `json:"qty"`
	Notes string `json:"notes"`
}

func (r PickRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SKU, validation.Required),
		validation.Field(&r.Qty, validation.Required, validation.Min(1)),
	)
}

type ShortAllocation struct {
	OrderID  int64 `json:"order_id"`
	QtyShort int   `json:"qty_short"`
}

type MarkShortRequest struct {
	SKU         string            `json:"sku"`
	Allocations []ShortAllocation `json:"allocations"`
	Notes       string            `json:"notes"`
}

func (r MarkShortRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.SKU, validation.Required),
		validation.Field(&r.Allocations, validation.Required, validation.Length(1, 0)),
	); err != nil {
		return err
	}
	for _, a := range r.Allocations {
		if a.QtyShort < 1 {
			return validation.NewError("validation_qty", "qty_short must be at least 1")
		}
	}
	return nil
}

type RevertRequest struct {
	Qty *int `json:"qty"`
}

func (r RevertRequest) Validate() error {
	if r.Qty != nil && *r.Qty < 1 {
		return validation.NewError("validation_qty", "qty must be at least 1")
	}
	return nil
}

// PickResult reports how a pick was distributed.
type PickResult struct {
	SKU         string       `json:"sku"`
	Qty         int          `json:"qty"`
	Allocations []Allocation `json:"allocations"`
	OrdersReady []int64      `json:"orders_ready,omitempty"`
}

// ShortResult reports a shortage action and its exception snapshot id.
type ShortResult struct {
	SKU              string  `json:"sku"`
	TotalShort       int     `json:"total_short"`
	StockExceptionID int64   `json:"stock_exception_id"`
	OrdersAffected   []int64 `json:"orders_affected"`
}

// RevertResult reports an undo on one line.
type RevertResult struct {
	LineID    int64 `json:"line_id"`
	OrderID   int64 `json:"order_id"`
	Reverted  int   `json:"reverted"`
	QtyPicked int   `json:"qty_picked"`
}
