package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/pagination"
)

var (
	// ErrNotFound is returned when a referenced order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrCannotCancel is returned when an order is past the cancellable state.
	ErrCannotCancel = errors.New("order can no longer be cancelled")
	// ErrPermissionDenied is returned when the requester does not own the order.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrReductionTooLarge is returned when the requested reduction exceeds
	// the computed order total.
	ErrReductionTooLarge = errors.New("reduction must not exceed total amount")
	// ErrNegativeReduction is returned for negative reduction amounts.
	ErrNegativeReduction = errors.New("reduction must not be negative")
)

// Status is the order state machine position. Only WaitForConfirmation and
// Cancelled carry hard-coded transition rules; the remaining states are
// admin-settable waypoints.
type Status int

const (
	StatusWaitForConfirmation Status = iota
	StatusProcessing
	StatusDelivering
	StatusCompleted
	StatusCancelled
)

// Valid reports whether s is a member of the known status set.
func (s Status) Valid() bool {
	return s >= StatusWaitForConfirmation && s <= StatusCancelled
}

func (s Status) String() string {
	switch s {
	case StatusWaitForConfirmation:
		return "wait_for_confirmation"
	case StatusProcessing:
		return "processing"
	case StatusDelivering:
		return "delivering"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Item is a frozen order line. UnitPrice is the discounted price captured at
// checkout; later product edits never touch it. CartItemID records which cart
// line produced this snapshot.
type Item struct {
	CartItemID string `json:"cartItemId"`
	ProductID  string `json:"productId"`
	UnitPrice  int64  `json:"unitPrice"`
	Quantity   int64  `json:"quantity"`

	// Display fields attached by read-side joins; empty when the product
	// was hard-deleted after the order was placed.
	ProductName string `json:"productName,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// Order is an immutable purchase snapshot. After creation only Status and
// UpdatedAt change; the financial fields are frozen.
type Order struct {
	ID                 string
	UserID             string
	VoucherID          string
	Status             Status
	Items              []Item
	TotalAmount        int64
	TotalAmountReduced int64
	TotalPayment       int64
	TotalQuantity      int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateAndConsume persists the order and flips the originating cart
	// lines out of the active cart in one transaction, so a failure between
	// the two steps cannot leave a paid order with a still-full cart.
	CreateAndConsume(ctx context.Context, o *Order, cartItemIDs []string) error
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, p pagination.Params) (pagination.Page[Order], error)
	ListAll(ctx context.Context, p pagination.Params) (pagination.Page[Order], error)
}
