package upstream

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the catalog/orders tree served by the upstream API:
// categories -> subcategories -> items -> orders. The same external order id
// appears once per item it contains; flattening is the importer's job, so the
// client hands the tree over verbatim.
type Document struct {
	Categories []Category `json:"categories"`
}

type Category struct {
	Name          string        `json:"category"`
	Subcategories []Subcategory `json:"subcategories"`
}

type Subcategory struct {
	Name  string `json:"subcategory"`
	Items []Item `json:"items"`
}

// Item carries the product fields plus the order leaves referencing it.
// Unknown keys end up in Extra so a feed change shows up in logs instead of
// silently disappearing.
type Item struct {
	SKU                    string           `json:"sku"`
	Title                  string           `json:"title"`
	ImageURL               string           `json:"image_url"`
	VendorName             string           `json:"vendor_name"`
	VariationDetails       string           `json:"variation_details"`
	Price                  *decimal.Decimal `json:"price"`
	Weight                 float64          `json:"weight"`
	ItemType               string           `json:"item_type"`
	StoreQuantityAvailable int              `json:"store_quantity_available"`
	Orders                 []ItemOrder      `json:"orders"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownItemKeys = map[string]struct{}{
	"sku": {}, "title": {}, "image_url": {}, "vendor_name": {},
	"variation_details": {}, "price": {}, "weight": {}, "item_type": {},
	"store_quantity_available": {}, "orders": {},
}

// UnmarshalJSON decodes the known fields and collects everything else into
// Extra.
func (i *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range knownItemKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*i = Item(a)
	return nil
}

// ItemOrder is one order leaf under an item.
type ItemOrder struct {
	ExternalOrderID string    `json:"external_order_id"`
	Number          string    `json:"order_number"`
	CustomerName    string    `json:"customer_name"`
	Qty             int       `json:"qty"`
	CreatedAt       time.Time `json:"created_at"`
	CustomerMessage string    `json:"customer_message"`
}

// envelope is the upstream response wrapper.
type envelope struct {
	Success bool      `json:"success"`
	Data    *Document `json:"data"`
	Error   string    `json:"error"`
}
