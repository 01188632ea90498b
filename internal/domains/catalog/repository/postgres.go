package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-picking-backend/internal/domains/catalog/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresProductRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &postgresProductRepository{pool: pool}
}

func (r *postgresProductRepository) UpsertTx(ctx context.Context, tx pgx.Tx, product *model.Product) (bool, bool, error) {
	// The WHERE clause keeps an identical re-import write-free.
	query := `
		INSERT INTO products (
			sku, title, category, subcategory, vendor_name,
			variation_details, image_url, price, weight, item_type,
			store_quantity_available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (sku) DO UPDATE SET
			title                    = EXCLUDED.title,
			category                 = EXCLUDED.category,
			subcategory              = EXCLUDED.subcategory,
			vendor_name              = EXCLUDED.vendor_name,
			variation_details        = EXCLUDED.variation_details,
			image_url                = EXCLUDED.image_url,
			price                    = EXCLUDED.price,
			weight                   = EXCLUDED.weight,
			item_type                = EXCLUDED.item_type,
			store_quantity_available = EXCLUDED.store_quantity_available,
			updated_at               = now()
		WHERE (products.title, products.category, products.subcategory,
		       products.vendor_name, products.variation_details, products.image_url,
		       products.price, products.weight, products.item_type,
		       products.store_quantity_available)
		      IS DISTINCT FROM
		      (EXCLUDED.title, EXCLUDED.category, EXCLUDED.subcategory,
		       EXCLUDED.vendor_name, EXCLUDED.variation_details, EXCLUDED.image_url,
		       EXCLUDED.price, EXCLUDED.weight, EXCLUDED.item_type,
		       EXCLUDED.store_quantity_available)
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := tx.QueryRow(ctx, query,
		product.SKU,
		product.Title,
		product.Category,
		product.Subcategory,
		product.VendorName,
		product.VariationDetails,
		product.ImageURL,
		product.Price,
		product.Weight,
		product.ItemType,
		product.StoreQuantityAvailable,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt, &inserted)

	if errors.Is(err, pgx.ErrNoRows) {
		// Nothing changed; fetch the id of the existing row.
		err = tx.QueryRow(ctx, `SELECT id, created_at, updated_at FROM products WHERE sku = $1`, product.SKU).
			Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return false, false, fmt.Errorf("failed to load unchanged product %s: %w", product.SKU, err)
		}
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to upsert product %s: %w", product.SKU, err)
	}

	return inserted, !inserted, nil
}

func (r *postgresProductRepository) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	query := `
		SELECT id, sku, title, category, subcategory, vendor_name,
		       variation_details, image_url, price, weight, item_type,
		       store_quantity_available, created_at, updated_at
		FROM products
		WHERE sku = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Title, &p.Category, &p.Subcategory, &p.VendorName,
		&p.VariationDetails, &p.ImageURL, &p.Price, &p.Weight, &p.ItemType,
		&p.StoreQuantityAvailable, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", sku, err)
	}

	return &p, nil
}

func (r *postgresProductRepository) GetBySKUs(ctx context.Context, skus []string) (map[string]*model.Product, error) {
	if len(skus) == 0 {
		return map[string]*model.Product{}, nil
	}

	query := `
		SELECT id, sku, title, category, subcategory, vendor_name,
		       variation_details, image_url, price, weight, item_type,
		       store_quantity_available, created_at, updated_at
		FROM products
		WHERE sku = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, skus)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*model.Product, len(skus))
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Title, &p.Category, &p.Subcategory, &p.VendorName,
			&p.VariationDetails, &p.ImageURL, &p.Price, &p.Weight, &p.ItemType,
			&p.StoreQuantityAvailable, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result[p.SKU] = &p
	}

	return result, rows.Err()
}
