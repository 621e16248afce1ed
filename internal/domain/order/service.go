package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/pricing"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// CheckoutRequest holds the input for converting a cart into an order.
type CheckoutRequest struct {
	UserID             string
	VoucherID          string
	TotalAmountReduced int64
}

// Service orchestrates checkout and the order status lifecycle.
type Service struct {
	orders   Repository
	carts    cart.Repository
	products product.Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, carts cart.Repository, products product.Repository) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
	}
}

// Checkout converts the user's active cart lines into a new immutable order.
//
// Every line is priced through the pricing calculator at this moment; the
// resulting unit prices are frozen into the order and survive any later
// product edits or deletions. The requested reduction is validated against
// the server-recomputed total, and order creation plus cart consumption
// commit in a single transaction.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.TotalAmountReduced < 0 {
		return nil, ErrNegativeReduction
	}

	lines, err := s.carts.ActiveItems(ctx, req.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart lines")
	}
	if len(lines) == 0 {
		return nil, cart.ErrCartEmpty
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	var (
		items         = make([]Item, 0, len(lines))
		cartItemIDs   = make([]string, 0, len(lines))
		totalAmount   int64
		totalQuantity int64
	)
	for _, l := range lines {
		p, ok := productMap[l.ProductID]
		if !ok {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", l.ProductID)
		}

		unitPrice := pricing.EffectivePrice(p.Price, p.DiscountType, p.DiscountValue)
		items = append(items, Item{
			CartItemID: l.ID,
			ProductID:  l.ProductID,
			UnitPrice:  unitPrice,
			Quantity:   l.Quantity,
		})
		cartItemIDs = append(cartItemIDs, l.ID)
		totalAmount += unitPrice * l.Quantity
		totalQuantity += l.Quantity
	}

	// The reduction is bounded by the total this service just computed, not
	// by anything the client declared.
	if req.TotalAmountReduced > totalAmount {
		return nil, ErrReductionTooLarge
	}

	o := &Order{
		ID:                 uuid.New().String(),
		UserID:             req.UserID,
		VoucherID:          req.VoucherID,
		Status:             StatusWaitForConfirmation,
		Items:              items,
		TotalAmount:        totalAmount,
		TotalAmountReduced: req.TotalAmountReduced,
		TotalPayment:       totalAmount - req.TotalAmountReduced,
		TotalQuantity:      totalQuantity,
	}

	if err := s.orders.CreateAndConsume(ctx, o, cartItemIDs); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get returns one order. Non-admin requesters may only read their own orders.
func (s *Service) Get(ctx context.Context, orderID, requesterID string, admin bool) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}
	if !admin && o.UserID != requesterID {
		return nil, ErrPermissionDenied
	}
	return o, nil
}

// Cancel transitions an order to Cancelled. Only the owner may cancel, and
// only while the order still waits for confirmation.
func (s *Service) Cancel(ctx context.Context, orderID, requesterID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if o.UserID != requesterID {
		return nil, ErrPermissionDenied
	}
	if o.Status != StatusWaitForConfirmation {
		return nil, ErrCannotCancel
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, StatusCancelled)
	if err != nil {
		return nil, errors.Wrapf(err, "cancel order %s", orderID)
	}
	return updated, nil
}

// UpdateStatus overwrites the order status. Admin-only; the handler enforces
// the role, this layer validates the target status. No forward-only rule is
// applied, matching the storefront's admin workflow.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "update status of order %s", orderID)
	}
	return updated, nil
}

// Delete removes an order entirely. Admin-only.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "delete order %s", orderID)
	}
	return nil
}

// GetMyOrders returns the requester's orders, newest first.
func (s *Service) GetMyOrders(ctx context.Context, userID string, p pagination.Params) (pagination.Page[Order], error) {
	page, err := s.orders.ListByUser(ctx, userID, p)
	if err != nil {
		return pagination.Page[Order]{}, errors.Wrap(err, "list orders")
	}
	return page, nil
}

// GetAllOrders returns every order, newest first. Admin-only.
func (s *Service) GetAllOrders(ctx context.Context, p pagination.Params) (pagination.Page[Order], error) {
	page, err := s.orders.ListAll(ctx, p)
	if err != nil {
		return pagination.Page[Order]{}, errors.Wrap(err, "list orders")
	}
	return page, nil
}
