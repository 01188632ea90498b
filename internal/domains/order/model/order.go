package model

import "time"

// =====================================================
// ORDER STATUSES
// =====================================================
const (
	StatusOpen        = "open"
	StatusPicking     = "picking"
	StatusReadyToPack = "ready_to_pack"
	StatusPacked      = "packed"
	StatusCancelled   = "cancelled"
)

// MaxShipments is the ceiling on split batches per order.
const MaxShipments = 5

// Order is one customer order imported from the upstream feed.
// status and ready_to_pack are derived caches; outside explicit transitions
// only Derive writes them.
type Order struct {
	ID              int64      `json:"id"`
	ExternalID      string     `json:"external_id"`
	Number          string     `json:"number"`
	CustomerName    string     `json:"customer_name"`
	Status          string     `json:"status"`
	ReadyToPack     bool       `json:"ready_to_pack"`
	TotalShipments  int        `json:"total_shipments"`
	CurrentShipment int        `json:"current_shipment"`
	CustomerMessage string     `json:"customer_message"`
	EmailSent       bool       `json:"email_sent"`
	PackedAt        *time.Time `json:"packed_at,omitempty"`
	PackedBy        *int64     `json:"packed_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OrderLine joins an order to a product, with denormalized product snapshots
// so listings survive later catalog edits.
type OrderLine struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id"`
	ProductID     int64     `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"image_url"`
	QtyOrdered    int       `json:"qty_ordered"`
	QtyPicked     int       `json:"qty_picked"`
	QtyShort      int       `json:"qty_short"`
	ShipmentBatch int       `json:"shipment_batch"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Remaining is the quantity still to pick or short on this line.
func (l *OrderLine) Remaining() int {
	return l.QtyOrdered - l.QtyPicked - l.QtyShort
}

// Done reports whether the line is fully accounted for.
func (l *OrderLine) Done() bool {
	return l.Remaining() == 0
}
