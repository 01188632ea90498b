package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-picking-backend/internal/infrastructure/upstream"
)

func feedTime(day int) time.Time {
	return time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC)
}

func TestFlatten(t *testing.T) {
	doc := &upstream.Document{
		Categories: []upstream.Category{
			{
				Name: "Toys",
				Subcategories: []upstream.Subcategory{
					{
						Name: "Plush",
						Items: []upstream.Item{
							{
								SKU:   "PLUSH-1",
								Title: "Bear",
								Orders: []upstream.ItemOrder{
									{ExternalOrderID: "ext-1", Number: "1001", CustomerName: "A", Qty: 2, CreatedAt: feedTime(1)},
									{ExternalOrderID: "ext-2", Number: "1002", CustomerName: "B", Qty: 1, CreatedAt: feedTime(2)},
								},
							},
							{
								SKU:   "PLUSH-2",
								Title: "Fox",
								Orders: []upstream.ItemOrder{
									{ExternalOrderID: "ext-1", Number: "1001", CustomerName: "A", Qty: 3, CreatedAt: feedTime(1)},
								},
							},
						},
					},
				},
			},
			{
				Name: "Games",
				Subcategories: []upstream.Subcategory{
					{
						Name: "Board",
						Items: []upstream.Item{
							{
								// Same SKU under a second category: product kept once,
								// quantities merge into the same line.
								SKU:   "PLUSH-1",
								Title: "Bear",
								Orders: []upstream.ItemOrder{
									{ExternalOrderID: "ext-1", Number: "1001", CustomerName: "A", Qty: 1, CreatedAt: feedTime(1)},
								},
							},
						},
					},
				},
			},
		},
	}

	flat := Flatten(doc)

	require.Len(t, flat.Products, 2)
	assert.Equal(t, "PLUSH-1", flat.Products[0].SKU)
	assert.Equal(t, "Toys", flat.Products[0].Category)
	assert.Equal(t, "Plush", flat.Products[0].Subcategory)

	require.Len(t, flat.Orders, 2)
	assert.Equal(t, "ext-1", flat.Orders[0].ExternalID)
	assert.Equal(t, "1001", flat.Orders[0].Number)

	require.Len(t, flat.Lines, 3)
	assert.Equal(t, FlatLine{ExternalID: "ext-1", SKU: "PLUSH-1", Qty: 3}, flat.Lines[0])
	assert.Equal(t, FlatLine{ExternalID: "ext-2", SKU: "PLUSH-1", Qty: 1}, flat.Lines[1])
	assert.Equal(t, FlatLine{ExternalID: "ext-1", SKU: "PLUSH-2", Qty: 3}, flat.Lines[2])

	assert.Empty(t, flat.Warnings)
}

func TestFlattenWarnsOnMalformedLeaves(t *testing.T) {
	doc := &upstream.Document{
		Categories: []upstream.Category{
			{
				Name: "Toys",
				Subcategories: []upstream.Subcategory{
					{
						Name: "Plush",
						Items: []upstream.Item{
							{Title: "No SKU"},
							{
								SKU: "OK-1",
								Orders: []upstream.ItemOrder{
									{Number: "1001", Qty: 2},
									{ExternalOrderID: "ext-1", Number: "1002", Qty: 0},
									{ExternalOrderID: "ext-2", Number: "1003", Qty: 1},
								},
							},
						},
					},
				},
			},
		},
	}

	flat := Flatten(doc)

	require.Len(t, flat.Products, 1)
	require.Len(t, flat.Orders, 1)
	assert.Equal(t, "ext-2", flat.Orders[0].ExternalID)
	require.Len(t, flat.Lines, 1)

	// Item without sku, leaf without external id, leaf with qty 0.
	assert.Len(t, flat.Warnings, 3)
}

func TestFlattenWarnsOnConflictingOrderNumbers(t *testing.T) {
	doc := &upstream.Document{
		Categories: []upstream.Category{
			{
				Name: "Toys",
				Subcategories: []upstream.Subcategory{
					{
						Name: "Plush",
						Items: []upstream.Item{
							{
								SKU: "A",
								Orders: []upstream.ItemOrder{
									{ExternalOrderID: "ext-1", Number: "1001", Qty: 1},
								},
							},
							{
								SKU: "B",
								Orders: []upstream.ItemOrder{
									{ExternalOrderID: "ext-1", Number: "9999", Qty: 1},
								},
							},
						},
					},
				},
			},
		},
	}

	flat := Flatten(doc)

	require.Len(t, flat.Orders, 1)
	assert.Equal(t, "1001", flat.Orders[0].Number)
	require.Len(t, flat.Warnings, 1)
	assert.Contains(t, flat.Warnings[0], "ext-1")
}

func TestFlattenEmptyDocument(t *testing.T) {
	flat := Flatten(&upstream.Document{})

	assert.Empty(t, flat.Products)
	assert.Empty(t, flat.Orders)
	assert.Empty(t, flat.Lines)
	assert.Empty(t, flat.Warnings)
}
