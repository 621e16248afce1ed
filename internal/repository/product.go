package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	createProductSQL = `INSERT INTO products
		(id, category_id, brand_id, name, description, thumbnail, photos, status,
		 available_count, price, discount_type, discount_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateProductSQL = `UPDATE products SET
		category_id = $2, brand_id = $3, name = $4, description = $5,
		thumbnail = $6, photos = $7, status = $8, available_count = $9,
		price = $10, discount_type = $11, discount_value = $12, updated_at = NOW()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	getProductByIDSQL = `SELECT id, category_id, brand_id, name, description, thumbnail, photos,
		status, available_count, price, discount_type, discount_value, created_at, updated_at
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, category_id, brand_id, name, description, thumbnail, photos,
		status, available_count, price, discount_type, discount_value, created_at, updated_at
		FROM products WHERE id = ANY($1)`

	productViewSQL = `SELECT p.id, p.category_id, p.brand_id, p.name, p.description, p.thumbnail,
		p.photos, p.status, p.available_count, p.price, p.discount_type, p.discount_value,
		p.created_at, p.updated_at,
		COALESCE(c.name, '') AS category_name,
		COALESCE(b.name, '') AS brand_name,
		COALESCE(AVG(r.star_point), 0)::NUMERIC AS rating,
		COUNT(r.id) AS review_count
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN reviews r ON r.product_id = p.id`

	productViewGroupSQL = ` GROUP BY p.id, c.name, b.name`

	getProductViewByIDSQL = productViewSQL + ` WHERE p.id = $1` + productViewGroupSQL

	listProductViewsSQL = productViewSQL + productViewGroupSQL +
		` ORDER BY p.created_at DESC, p.id LIMIT $1 OFFSET $2`

	countProductsSQL = `SELECT COUNT(*) FROM products`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new catalog product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, nullable(p.CategoryID), nullable(p.BrandID), p.Name, p.Description,
		p.Thumbnail, textArray(p.Photos), p.Status, p.AvailableCount,
		p.Price, p.DiscountType, p.DiscountValue,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, refErr(err))
	}
	return nil
}

// Update overwrites the catalog fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, nullable(p.CategoryID), nullable(p.BrandID), p.Name, p.Description,
		p.Thumbnail, textArray(p.Photos), p.Status, p.AvailableCount,
		p.Price, p.DiscountType, p.DiscountValue,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, refErr(err))
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetViewByID returns the read-side projection of one product. The discounted
// price is recomputed from the current price and discount rule on every call.
func (r *ProductRepository) GetViewByID(ctx context.Context, id string) (*product.View, error) {
	rows, err := r.pool.Query(ctx, getProductViewByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product view %q: %w", id, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanProductView)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product view %q: %w", id, err)
	}
	return &v, nil
}

// List returns one page of product views, newest first.
func (r *ProductRepository) List(ctx context.Context, params pagination.Params) (pagination.Page[product.View], error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, countProductsSQL).Scan(&total); err != nil {
		return pagination.Page[product.View]{}, fmt.Errorf("counting products: %w", err)
	}

	rows, err := r.pool.Query(ctx, listProductViewsSQL, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[product.View]{}, fmt.Errorf("listing products: %w", err)
	}
	views, err := pgx.CollectRows(rows, scanProductView)
	if err != nil {
		return pagination.Page[product.View]{}, fmt.Errorf("listing products: %w", err)
	}
	return pagination.NewPage(views, params, total), nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p          product.Product
		categoryID *string
		brandID    *string
	)
	err := row.Scan(
		&p.ID, &categoryID, &brandID, &p.Name, &p.Description, &p.Thumbnail, &p.Photos,
		&p.Status, &p.AvailableCount, &p.Price, &p.DiscountType, &p.DiscountValue,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if categoryID != nil {
		p.CategoryID = *categoryID
	}
	if brandID != nil {
		p.BrandID = *brandID
	}
	return p, err
}

func scanProductView(row pgx.CollectableRow) (product.View, error) {
	var (
		v          product.View
		categoryID *string
		brandID    *string
	)
	err := row.Scan(
		&v.ID, &categoryID, &brandID, &v.Name, &v.Description, &v.Thumbnail, &v.Photos,
		&v.Status, &v.AvailableCount, &v.Price, &v.DiscountType, &v.DiscountValue,
		&v.CreatedAt, &v.UpdatedAt,
		&v.CategoryName, &v.BrandName, &v.Rating, &v.ReviewCount,
	)
	if categoryID != nil {
		v.CategoryID = *categoryID
	}
	if brandID != nil {
		v.BrandID = *brandID
	}
	v.PriceAfterDiscount = v.EffectivePrice()
	return v, err
}

// refErr maps foreign-key violations on product references to domain errors.
func refErr(err error) error {
	if pgErrCode(err, codeForeignKeyViolation) {
		switch pgConstraint(err) {
		case "products_category_id_fkey":
			return product.ErrCategoryNotFound
		case "products_brand_id_fkey":
			return product.ErrBrandNotFound
		}
	}
	return err
}
