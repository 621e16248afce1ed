package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/review"
)

const (
	createReviewSQL = `INSERT INTO reviews (id, user_id, product_id, star_point, content, photos)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getReviewByIDSQL = `SELECT id, user_id, product_id, star_point, content, photos,
		created_at, updated_at
		FROM reviews WHERE id = $1`

	listReviewsByProductSQL = `SELECT id, user_id, product_id, star_point, content, photos,
		created_at, updated_at
		FROM reviews WHERE product_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	countReviewsByProductSQL = `SELECT COUNT(*) FROM reviews WHERE product_id = $1`

	createReviewReplySQL = `INSERT INTO review_replies (id, review_id, user_id, content)
		VALUES ($1, $2, $3, $4)`

	listRepliesByReviewsSQL = `SELECT id, review_id, user_id, content, created_at, updated_at
		FROM review_replies WHERE review_id = ANY($1)
		ORDER BY created_at, id`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create persists a new review. The unique index on (user, product) rejects a
// second review of the same product by the same user.
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	_, err := r.pool.Exec(ctx, createReviewSQL,
		rev.ID, rev.UserID, rev.ProductID, rev.StarPoint, rev.Content, textArray(rev.Photos),
	)
	if err != nil {
		if pgErrCode(err, codeUniqueViolation) {
			return review.ErrAlreadyReviewed
		}
		if pgErrCode(err, codeForeignKeyViolation) {
			return product.ErrNotFound
		}
		return fmt.Errorf("creating review %q: %w", rev.ID, err)
	}
	return nil
}

// GetByID returns a single review with its replies.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*review.Review, error) {
	rows, err := r.pool.Query(ctx, getReviewByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting review %q: %w", id, err)
	}

	rev, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrNotFound
		}
		return nil, fmt.Errorf("getting review %q: %w", id, err)
	}

	reviews := []review.Review{rev}
	if err := r.attachReplies(ctx, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

// ListByProduct returns one page of a product's reviews, newest first, with
// replies attached.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, params pagination.Params) (pagination.Page[review.Review], error) {
	params = params.Normalize()

	var total int64
	if err := r.pool.QueryRow(ctx, countReviewsByProductSQL, productID).Scan(&total); err != nil {
		return pagination.Page[review.Review]{}, fmt.Errorf("counting reviews: %w", err)
	}

	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[review.Review]{}, fmt.Errorf("listing reviews: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return pagination.Page[review.Review]{}, fmt.Errorf("listing reviews: %w", err)
	}

	if err := r.attachReplies(ctx, reviews); err != nil {
		return pagination.Page[review.Review]{}, err
	}
	return pagination.NewPage(reviews, params, total), nil
}

// AddReply attaches an admin reply to a review.
func (r *ReviewRepository) AddReply(ctx context.Context, reply *review.Reply) error {
	_, err := r.pool.Exec(ctx, createReviewReplySQL,
		reply.ID, reply.ReviewID, reply.UserID, reply.Content,
	)
	if err != nil {
		if pgErrCode(err, codeForeignKeyViolation) {
			return review.ErrNotFound
		}
		return fmt.Errorf("creating review reply %q: %w", reply.ID, err)
	}
	return nil
}

// attachReplies loads the replies of the given reviews in one query.
func (r *ReviewRepository) attachReplies(ctx context.Context, reviews []review.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]string, len(reviews))
	for i, rev := range reviews {
		ids[i] = rev.ID
	}

	rows, err := r.pool.Query(ctx, listRepliesByReviewsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing review replies: %w", err)
	}
	replies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (review.Reply, error) {
		var rep review.Reply
		err := row.Scan(&rep.ID, &rep.ReviewID, &rep.UserID, &rep.Content,
			&rep.CreatedAt, &rep.UpdatedAt)
		return rep, err
	})
	if err != nil {
		return fmt.Errorf("listing review replies: %w", err)
	}

	byReview := make(map[string][]review.Reply, len(reviews))
	for _, rep := range replies {
		byReview[rep.ReviewID] = append(byReview[rep.ReviewID], rep)
	}
	for i := range reviews {
		reviews[i].Replies = byReview[reviews[i].ID]
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rev review.Review
	err := row.Scan(
		&rev.ID, &rev.UserID, &rev.ProductID, &rev.StarPoint, &rev.Content, &rev.Photos,
		&rev.CreatedAt, &rev.UpdatedAt,
	)
	return rev, err
}
