package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedBody = `{
	"success": true,
	"data": {
		"categories": [
			{
				"category": "Toys",
				"subcategories": [
					{
						"subcategory": "Plush",
						"items": [
							{
								"sku": "PLUSH-1",
								"title": "Bear",
								"price": "12.50",
								"weight": 0.4,
								"store_quantity_available": 7,
								"orders": [
									{
										"external_order_id": "ext-1",
										"order_number": "1001",
										"customer_name": "Alice",
										"qty": 2,
										"created_at": "2026-08-01T10:00:00Z"
									}
								]
							}
						]
					}
				]
			}
		]
	}
}`

func TestFetchDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	doc, err := NewClient().FetchDocument(context.Background(), srv.URL, "test-key")
	require.NoError(t, err)

	require.Len(t, doc.Categories, 1)
	assert.Equal(t, "Toys", doc.Categories[0].Name)

	items := doc.Categories[0].Subcategories[0].Items
	require.Len(t, items, 1)
	assert.Equal(t, "PLUSH-1", items[0].SKU)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, "12.5", items[0].Price.String())
	assert.Equal(t, 7, items[0].StoreQuantityAvailable)

	orders := items[0].Orders
	require.Len(t, orders, 1)
	assert.Equal(t, "ext-1", orders[0].ExternalOrderID)
	assert.Equal(t, 2, orders[0].Qty)
}

func TestFetchDocumentCollectsUnknownFields(t *testing.T) {
	body := `{"success":true,"data":{"categories":[{"category":"C","subcategories":[{"subcategory":"S","items":[{"sku":"X","mystery_field":1}]}]}]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	doc, err := NewClient().FetchDocument(context.Background(), srv.URL, "k")
	require.NoError(t, err)

	item := doc.Categories[0].Subcategories[0].Items[0]
	assert.Contains(t, item.Extra, "mystery_field")
}

func TestFetchDocumentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient().FetchDocument(context.Background(), srv.URL, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchDocumentConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := NewClient().FetchDocument(context.Background(), srv.URL, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchDocumentMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"success": tru`},
		{"success false", `{"success": false, "error": "key revoked"}`},
		{"missing data", `{"success": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient().FetchDocument(context.Background(), srv.URL, "k")
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
