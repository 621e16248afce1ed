package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/pricing"
)

var (
	// ErrNotFound is returned when a referenced cart item does not exist.
	ErrNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrCartEmpty is returned when checkout is attempted on an empty cart.
	ErrCartEmpty = errors.New("cart is empty")
)

// Status marks whether a cart line is part of the user's working set.
type Status string

const (
	// StatusInCart marks an active cart line.
	StatusInCart Status = "in_cart"
	// StatusNotInCart marks a line consumed by checkout. Kept for order
	// provenance rather than deleted.
	StatusNotInCart Status = "not_in_cart"
)

// Item is one cart line. At most one in_cart line exists per
// (UserID, ProductID) pair; repeat adds merge into it.
type Item struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line is the read-side projection of an active cart line joined with its
// product. PriceAfterDiscount is recomputed from the live product on every
// read, never trusted from storage.
type Line struct {
	Item
	ProductName        string
	Thumbnail          string
	Price              int64
	DiscountType       pricing.DiscountType
	DiscountValue      int64
	PriceAfterDiscount int64
}

// Repository defines persistence operations for cart lines.
//
// Upsert must be a single atomic increment-or-insert keyed on the active
// (user, product) pair, so concurrent adds for the same product cannot create
// two in_cart lines.
type Repository interface {
	Upsert(ctx context.Context, userID, productID string, quantity int64) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	UpdateQuantity(ctx context.Context, id string, quantity int64) (*Item, error)
	DeleteOne(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
	ListActive(ctx context.Context, userID string, p pagination.Params) (pagination.Page[Line], error)
	// ActiveItems returns every in_cart line of the user, oldest first.
	// Checkout consumes this snapshot.
	ActiveItems(ctx context.Context, userID string) ([]Item, error)
	CountActive(ctx context.Context, userID string) (int64, error)
}
