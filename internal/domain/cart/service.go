package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// Service encapsulates cart mutations and listing.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{
		carts:    carts,
		products: products,
	}
}

// AddToCart merges quantity into the user's active line for the product,
// creating the line when none exists. The repository performs the merge as a
// single atomic upsert.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, quantity int64) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// The product must exist before a line can reference it.
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", productID)
	}

	item, err := s.carts.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		return nil, errors.Wrap(err, "upsert cart line")
	}
	return item, nil
}

// Get returns one cart line by ID.
func (s *Service) Get(ctx context.Context, cartItemID string) (*Item, error) {
	item, err := s.carts.GetByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get cart line %s", cartItemID)
	}
	return item, nil
}

// UpdateQuantity overwrites the quantity of a cart line. Ownership is checked
// upstream by the handler guards; this layer only validates the input shape.
func (s *Service) UpdateQuantity(ctx context.Context, cartItemID string, quantity int64) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.carts.UpdateQuantity(ctx, cartItemID, quantity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "update quantity of cart line %s", cartItemID)
	}
	return item, nil
}

// Remove deletes a single cart line scoped to the user, or every line of the
// user when cartItemID is empty. Returns the number of deleted lines.
func (s *Service) Remove(ctx context.Context, userID, cartItemID string) (int64, error) {
	if cartItemID == "" {
		n, err := s.carts.DeleteAll(ctx, userID)
		if err != nil {
			return 0, errors.Wrap(err, "clear cart")
		}
		return n, nil
	}

	if err := s.carts.DeleteOne(ctx, userID, cartItemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, errors.Wrapf(err, "delete cart line %s", cartItemID)
	}
	return 1, nil
}

// ListActive returns the user's in_cart lines, newest updated first, joined
// with live product data and the recomputed discounted price. An empty page
// is a valid empty cart.
func (s *Service) ListActive(ctx context.Context, userID string, p pagination.Params) (pagination.Page[Line], error) {
	page, err := s.carts.ListActive(ctx, userID, p)
	if err != nil {
		return pagination.Page[Line]{}, errors.Wrap(err, "list cart lines")
	}
	return page, nil
}
