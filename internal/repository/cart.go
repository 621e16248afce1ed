package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/pricing"
	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	// The conflict target is the partial unique index on active lines, so a
	// repeat add lands on the existing in_cart row and increments it. One
	// statement, no read-then-write window.
	upsertCartItemSQL = `INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) WHERE status = 'in_cart'
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, user_id, product_id, quantity, status, created_at, updated_at`

	getCartItemByIDSQL = `SELECT id, user_id, product_id, quantity, status, created_at, updated_at
		FROM cart_items WHERE id = $1`

	updateCartQuantitySQL = `UPDATE cart_items SET quantity = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'in_cart'
		RETURNING id, user_id, product_id, quantity, status, created_at, updated_at`

	deleteCartItemSQL = `DELETE FROM cart_items
		WHERE user_id = $1 AND id = $2 AND status = 'in_cart'`

	deleteAllCartItemsSQL = `DELETE FROM cart_items WHERE user_id = $1 AND status = 'in_cart'`

	listCartLinesSQL = `SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.status,
		ci.created_at, ci.updated_at,
		p.name, p.thumbnail, p.price, p.discount_type, p.discount_value
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1 AND ci.status = 'in_cart'
		ORDER BY ci.updated_at DESC, ci.id LIMIT $2 OFFSET $3`

	activeCartItemsSQL = `SELECT id, user_id, product_id, quantity, status, created_at, updated_at
		FROM cart_items WHERE user_id = $1 AND status = 'in_cart'
		ORDER BY created_at, id`

	countActiveCartItemsSQL = `SELECT COUNT(*) FROM cart_items
		WHERE user_id = $1 AND status = 'in_cart'`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Upsert merges quantity into the user's active line for the product, creating
// the line with the given ID when none exists. The merge is a single atomic
// statement.
func (r *CartRepository) Upsert(ctx context.Context, userID, productID string, quantity int64) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, upsertCartItemSQL, newID(), userID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("upserting cart item: %w", err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if pgErrCode(err, codeForeignKeyViolation) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("upserting cart item: %w", err)
	}
	return &item, nil
}

// GetByID returns a single cart line by its identifier.
func (r *CartRepository) GetByID(ctx context.Context, id string) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, getCartItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting cart item %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart item %q: %w", id, err)
	}
	return &item, nil
}

// UpdateQuantity overwrites the quantity of an active cart line.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id string, quantity int64) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, updateCartQuantitySQL, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("updating cart item %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("updating cart item %q: %w", id, err)
	}
	return &item, nil
}

// DeleteOne removes one active cart line owned by the user.
func (r *CartRepository) DeleteOne(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCartItemSQL, userID, id)
	if err != nil {
		return fmt.Errorf("deleting cart item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

// DeleteAll removes every active cart line of the user and reports how many
// lines were removed.
func (r *CartRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteAllCartItemsSQL, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListActive returns one page of the user's cart joined with live product
// data. The discounted price is recomputed per line on every call.
func (r *CartRepository) ListActive(ctx context.Context, userID string, params pagination.Params) (pagination.Page[cart.Line], error) {
	params = params.Normalize()

	total, err := r.CountActive(ctx, userID)
	if err != nil {
		return pagination.Page[cart.Line]{}, err
	}

	rows, err := r.pool.Query(ctx, listCartLinesSQL, userID, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[cart.Line]{}, fmt.Errorf("listing cart: %w", err)
	}
	lines, err := pgx.CollectRows(rows, scanCartLine)
	if err != nil {
		return pagination.Page[cart.Line]{}, fmt.Errorf("listing cart: %w", err)
	}
	return pagination.NewPage(lines, params, total), nil
}

// ActiveItems returns every active cart line of the user, oldest first.
func (r *CartRepository) ActiveItems(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, activeCartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting active cart items: %w", err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// CountActive returns the number of active cart lines of the user.
func (r *CartRepository) CountActive(ctx context.Context, userID string) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, countActiveCartItemsSQL, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting cart items: %w", err)
	}
	return total, nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var item cart.Item
	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.Status,
		&item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var line cart.Line
	err := row.Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.Quantity, &line.Status,
		&line.CreatedAt, &line.UpdatedAt,
		&line.ProductName, &line.Thumbnail, &line.Price, &line.DiscountType, &line.DiscountValue,
	)
	line.PriceAfterDiscount = pricing.EffectivePrice(line.Price, line.DiscountType, line.DiscountValue)
	return line, err
}
