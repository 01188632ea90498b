package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"warehouse-picking-backend/internal/domains/catalog/model"
)

// ProductRepository owns all SQL against the products table.
type ProductRepository interface {
	// UpsertTx inserts or updates a product by SKU inside the caller's
	// transaction. The update only fires when a field actually differs, so
	// re-importing an unchanged feed produces no writes. Returns
	// (created, changed).
	UpsertTx(ctx context.Context, tx pgx.Tx, product *model.Product) (bool, bool, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	GetBySKUs(ctx context.Context, skus []string) (map[string]*model.Product, error)
}
