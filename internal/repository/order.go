package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/pagination"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, user_id, voucher_id, status, items, total_amount, total_amount_reduced,
		 total_payment, total_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	consumeCartItemsSQL = `UPDATE cart_items SET status = 'not_in_cart', updated_at = NOW()
		WHERE id = ANY($1) AND status = 'in_cart'`

	getOrderByIDSQL = `SELECT id, user_id, voucher_id, status, items, total_amount,
		total_amount_reduced, total_payment, total_quantity, created_at, updated_at
		FROM orders WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, voucher_id, status, items, total_amount,
		total_amount_reduced, total_payment, total_quantity, created_at, updated_at`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, user_id, voucher_id, status, items, total_amount,
		total_amount_reduced, total_payment, total_quantity, created_at, updated_at
		FROM orders WHERE user_id = $1
		ORDER BY updated_at DESC, id LIMIT $2 OFFSET $3`

	countOrdersByUserSQL = `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	listAllOrdersSQL = `SELECT id, user_id, voucher_id, status, items, total_amount,
		total_amount_reduced, total_payment, total_quantity, created_at, updated_at
		FROM orders ORDER BY updated_at DESC, id LIMIT $1 OFFSET $2`

	countAllOrdersSQL = `SELECT COUNT(*) FROM orders`

	orderProductNamesSQL = `SELECT id, name, thumbnail FROM products WHERE id = ANY($1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateAndConsume persists the order snapshot and marks the originating cart
// lines consumed in a single transaction. If any cart line was already
// consumed by a concurrent checkout, the whole transaction rolls back.
func (r *OrderRepository) CreateAndConsume(ctx context.Context, o *order.Order, cartItemIDs []string) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.VoucherID, o.Status, itemsJSON,
		o.TotalAmount, o.TotalAmountReduced, o.TotalPayment, o.TotalQuantity,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	tag, err := tx.Exec(ctx, consumeCartItemsSQL, cartItemIDs)
	if err != nil {
		return fmt.Errorf("consuming cart items: %w", err)
	}
	if got := tag.RowsAffected(); got != int64(len(cartItemIDs)) {
		return fmt.Errorf("consuming cart items: %d of %d still active", got, len(cartItemIDs))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout transaction: %w", err)
	}
	return nil
}

// GetByID returns a single order with product display fields attached.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.attachProductInfo(ctx, []order.Order{o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus sets the order status and returns the updated order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}
	return &o, nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListByUser returns one page of the user's orders, most recently updated first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, params pagination.Params) (pagination.Page[order.Order], error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, countOrdersByUserSQL, userID).Scan(&total); err != nil {
		return pagination.Page[order.Order]{}, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[order.Order]{}, fmt.Errorf("listing orders: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return pagination.Page[order.Order]{}, fmt.Errorf("listing orders: %w", err)
	}

	if err := r.attachProductInfo(ctx, items); err != nil {
		return pagination.Page[order.Order]{}, err
	}
	return pagination.NewPage(items, params, total), nil
}

// ListAll returns one page over every order, most recently updated first.
func (r *OrderRepository) ListAll(ctx context.Context, params pagination.Params) (pagination.Page[order.Order], error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, countAllOrdersSQL).Scan(&total); err != nil {
		return pagination.Page[order.Order]{}, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, listAllOrdersSQL, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[order.Order]{}, fmt.Errorf("listing orders: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return pagination.Page[order.Order]{}, fmt.Errorf("listing orders: %w", err)
	}

	if err := r.attachProductInfo(ctx, items); err != nil {
		return pagination.Page[order.Order]{}, err
	}
	return pagination.NewPage(items, params, total), nil
}

// attachProductInfo fills the display fields of the frozen order lines from
// the live catalog. Lines whose product is gone keep empty display fields;
// the frozen price and quantity are never touched.
func (r *OrderRepository) attachProductInfo(ctx context.Context, orders []order.Order) error {
	ids := make([]string, 0, len(orders))
	seen := make(map[string]struct{})
	for _, o := range orders {
		for _, item := range o.Items {
			if _, ok := seen[item.ProductID]; !ok {
				seen[item.ProductID] = struct{}{}
				ids = append(ids, item.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.pool.Query(ctx, orderProductNamesSQL, ids)
	if err != nil {
		return fmt.Errorf("getting order product info: %w", err)
	}

	type info struct {
		name      string
		thumbnail string
	}
	infos := make(map[string]info, len(ids))
	_, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (struct{}, error) {
		var (
			id string
			pi info
		)
		err := row.Scan(&id, &pi.name, &pi.thumbnail)
		infos[id] = pi
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("getting order product info: %w", err)
	}

	for i := range orders {
		for j := range orders[i].Items {
			if pi, ok := infos[orders[i].Items[j].ProductID]; ok {
				orders[i].Items[j].ProductName = pi.name
				orders[i].Items[j].Thumbnail = pi.thumbnail
			}
		}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.VoucherID, &o.Status, &itemsJSON,
		&o.TotalAmount, &o.TotalAmountReduced, &o.TotalPayment, &o.TotalQuantity,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return o, nil
}
