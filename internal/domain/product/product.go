package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/pricing"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a referenced category does not exist.
	ErrCategoryNotFound = errors.New("product category not found")
	// ErrBrandNotFound is returned when a referenced brand does not exist.
	ErrBrandNotFound = errors.New("brand not found")
	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")
)

// Status enumerates product visibility states.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Product is a catalog item available for purchase. Price is an integral
// amount in the minor currency unit.
type Product struct {
	ID             string
	CategoryID     string
	BrandID        string
	Name           string
	Description    string
	Thumbnail      string
	Photos         []string
	Status         Status
	AvailableCount int64
	Price          int64
	DiscountType   pricing.DiscountType
	DiscountValue  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectivePrice returns the product price after its discount rule.
func (p Product) EffectivePrice() int64 {
	return pricing.EffectivePrice(p.Price, p.DiscountType, p.DiscountValue)
}

// Validate checks the catalog invariants before a create or update.
func (p Product) Validate() error {
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return pricing.ValidateDiscount(p.Price, p.DiscountType, p.DiscountValue)
}

// Category groups products for browsing.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Brand identifies a product manufacturer.
type Brand struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View is the read-side projection of a product: joined display fields plus
// the recomputed discounted price. PriceAfterDiscount is never read from
// storage; it is derived on every read via the pricing calculator.
type View struct {
	Product
	CategoryName       string
	BrandName          string
	PriceAfterDiscount int64
	Rating             decimal.Decimal
	ReviewCount        int64
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	GetViewByID(ctx context.Context, id string) (*View, error)
	List(ctx context.Context, p pagination.Params) (pagination.Page[View], error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p pagination.Params) (pagination.Page[Category], error)
}

// BrandRepository defines persistence operations for brands.
type BrandRepository interface {
	Create(ctx context.Context, b *Brand) error
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p pagination.Params) (pagination.Page[Brand], error)
}
