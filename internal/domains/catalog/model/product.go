package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the SKU master. Created or updated on every import, never
// deleted; order lines keep a denormalized snapshot and reference it.
type Product struct {
	ID                     int64            `json:"id"`
	SKU                    string           `json:"sku"`
	Title                  string           `json:"title"`
	Category               string           `json:"category"`
	Subcategory            string           `json:"subcategory"`
	VendorName             string           `json:"vendor_name"`
	VariationDetails       string           `json:"variation_details"`
	ImageURL               string           `json:"image_url"`
	Price                  *decimal.Decimal `json:"price,omitempty"`
	Weight                 float64          `json:"weight"`
	ItemType               string           `json:"item_type"`
	StoreQuantityAvailable int              `json:"store_quantity_available"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}
