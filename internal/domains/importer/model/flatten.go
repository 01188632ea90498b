package model

import (
	"fmt"
	"time"

	catalogmodel "warehouse-picking-backend/internal/domains/catalog/model"
	"warehouse-picking-backend/internal/infrastructure/upstream"
)

// FlatOrder is one distinct order pulled out of the upstream tree.
type FlatOrder struct {
	ExternalID      string
	Number          string
	CustomerName    string
	CustomerMessage string
	CreatedAt       time.Time
}

// FlatLine is one (order, sku) pair with the quantities summed across every
// leaf that referenced it.
type FlatLine struct {
	ExternalID string
	SKU        string
	Qty        int
}

// FlatDocument is the upstream tree reduced to the three row sets the import
// transaction writes. Slices preserve encounter order so runs are
// deterministic.
type FlatDocument struct {
	Products []catalogmodel.Product
	Orders   []FlatOrder
	Lines    []FlatLine
	Warnings []string
}

// Flatten walks the category tree and deduplicates products by SKU, orders by
// external id, and lines by (external id, sku). Malformed leaves are dropped
// with a warning instead of failing the whole run.
func Flatten(doc *upstream.Document) *FlatDocument {
	flat := &FlatDocument{}

	seenProducts := make(map[string]int)
	seenOrders := make(map[string]int)
	seenLines := make(map[string]int)

	for _, cat := range doc.Categories {
		for _, sub := range cat.Subcategories {
			for _, item := range sub.Items {
				if item.SKU == "" {
					flat.Warnings = append(flat.Warnings, fmt.Sprintf(
						"item %q in %s/%s has no sku, skipped", item.Title, cat.Name, sub.Name))
					continue
				}

				if _, ok := seenProducts[item.SKU]; !ok {
					seenProducts[item.SKU] = len(flat.Products)
					flat.Products = append(flat.Products, catalogmodel.Product{
						SKU:                    item.SKU,
						Title:                  item.Title,
						Category:               cat.Name,
						Subcategory:            sub.Name,
						VendorName:             item.VendorName,
						VariationDetails:       item.VariationDetails,
						ImageURL:               item.ImageURL,
						Price:                  item.Price,
						Weight:                 item.Weight,
						ItemType:               item.ItemType,
						StoreQuantityAvailable: item.StoreQuantityAvailable,
					})
				}

				for _, leaf := range item.Orders {
					if leaf.ExternalOrderID == "" {
						flat.Warnings = append(flat.Warnings, fmt.Sprintf(
							"order leaf under sku %s has no external id, skipped", item.SKU))
						continue
					}
					if leaf.Qty < 1 {
						flat.Warnings = append(flat.Warnings, fmt.Sprintf(
							"order %s sku %s has qty %d, skipped", leaf.ExternalOrderID, item.SKU, leaf.Qty))
						continue
					}

					if idx, ok := seenOrders[leaf.ExternalOrderID]; ok {
						if flat.Orders[idx].Number != leaf.Number {
							flat.Warnings = append(flat.Warnings, fmt.Sprintf(
								"order %s appears with numbers %q and %q, kept first",
								leaf.ExternalOrderID, flat.Orders[idx].Number, leaf.Number))
						}
					} else {
						seenOrders[leaf.ExternalOrderID] = len(flat.Orders)
						flat.Orders = append(flat.Orders, FlatOrder{
							ExternalID:      leaf.ExternalOrderID,
							Number:          leaf.Number,
							CustomerName:    leaf.CustomerName,
							CustomerMessage: leaf.CustomerMessage,
							CreatedAt:       leaf.CreatedAt,
						})
					}

					lineKey := leaf.ExternalOrderID + "\x00" + item.SKU
					if idx, ok := seenLines[lineKey]; ok {
						flat.Lines[idx].Qty += leaf.Qty
					} else {
						seenLines[lineKey] = len(flat.Lines)
						flat.Lines = append(flat.Lines, FlatLine{
							ExternalID: leaf.ExternalOrderID,
							SKU:        item.SKU,
							Qty:        leaf.Qty,
						})
					}
				}
			}
		}
	}

	return flat
}
