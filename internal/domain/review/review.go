package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/pagination"
)

var (
	// ErrNotFound is returned when a referenced review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrAlreadyReviewed is returned when a user reviews a product twice.
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	// ErrInvalidStarPoint is returned for ratings outside 1..5.
	ErrInvalidStarPoint = errors.New("star point must be between 1 and 5")
)

// Review is a customer rating of a product. One review per (user, product).
type Review struct {
	ID        string
	UserID    string
	ProductID string
	StarPoint int
	Content   string
	Photos    []string
	Replies   []Reply
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the rating bounds.
func (r Review) Validate() error {
	if r.StarPoint < 1 || r.StarPoint > 5 {
		return ErrInvalidStarPoint
	}
	return nil
}

// Reply is an admin response attached to a review.
type Reply struct {
	ID        string
	ReviewID  string
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence operations for reviews and replies.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByProduct(ctx context.Context, productID string, p pagination.Params) (pagination.Page[Review], error)
	AddReply(ctx context.Context, reply *Reply) error
}
