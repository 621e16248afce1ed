package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	createCategorySQL = `INSERT INTO categories (id, name) VALUES ($1, $2)`
	updateCategorySQL = `UPDATE categories SET name = $2, updated_at = NOW() WHERE id = $1`
	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`
	listCategoriesSQL = `SELECT id, name, created_at, updated_at FROM categories
		ORDER BY name LIMIT $1 OFFSET $2`
	countCategoriesSQL = `SELECT COUNT(*) FROM categories`

	createBrandSQL = `INSERT INTO brands (id, name) VALUES ($1, $2)`
	updateBrandSQL = `UPDATE brands SET name = $2, updated_at = NOW() WHERE id = $1`
	deleteBrandSQL = `DELETE FROM brands WHERE id = $1`
	listBrandsSQL  = `SELECT id, name, created_at, updated_at FROM brands
		ORDER BY name LIMIT $1 OFFSET $2`
	countBrandsSQL = `SELECT COUNT(*) FROM brands`
)

var _ product.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements product.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *product.Category) error {
	_, err := r.pool.Exec(ctx, createCategorySQL, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *product.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) List(ctx context.Context, params pagination.Params) (pagination.Page[product.Category], error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, countCategoriesSQL).Scan(&total); err != nil {
		return pagination.Page[product.Category]{}, fmt.Errorf("counting categories: %w", err)
	}

	rows, err := r.pool.Query(ctx, listCategoriesSQL, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[product.Category]{}, fmt.Errorf("listing categories: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var c product.Category
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return pagination.Page[product.Category]{}, fmt.Errorf("listing categories: %w", err)
	}
	return pagination.NewPage(items, params, total), nil
}

var _ product.BrandRepository = (*BrandRepository)(nil)

// BrandRepository implements product.BrandRepository backed by PostgreSQL.
type BrandRepository struct {
	pool *pgxpool.Pool
}

// NewBrandRepository returns a BrandRepository that uses the given pool.
func NewBrandRepository(pool *pgxpool.Pool) *BrandRepository {
	return &BrandRepository{pool: pool}
}

func (r *BrandRepository) Create(ctx context.Context, b *product.Brand) error {
	_, err := r.pool.Exec(ctx, createBrandSQL, b.ID, b.Name)
	if err != nil {
		return fmt.Errorf("creating brand %q: %w", b.ID, err)
	}
	return nil
}

func (r *BrandRepository) Update(ctx context.Context, b *product.Brand) error {
	tag, err := r.pool.Exec(ctx, updateBrandSQL, b.ID, b.Name)
	if err != nil {
		return fmt.Errorf("updating brand %q: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrBrandNotFound
	}
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteBrandSQL, id)
	if err != nil {
		return fmt.Errorf("deleting brand %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrBrandNotFound
	}
	return nil
}

func (r *BrandRepository) List(ctx context.Context, params pagination.Params) (pagination.Page[product.Brand], error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, countBrandsSQL).Scan(&total); err != nil {
		return pagination.Page[product.Brand]{}, fmt.Errorf("counting brands: %w", err)
	}

	rows, err := r.pool.Query(ctx, listBrandsSQL, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[product.Brand]{}, fmt.Errorf("listing brands: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Brand, error) {
		var b product.Brand
		err := row.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
		return b, err
	})
	if err != nil {
		return pagination.Page[product.Brand]{}, fmt.Errorf("listing brands: %w", err)
	}
	return pagination.NewPage(items, params, total), nil
}
