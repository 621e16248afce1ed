package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/storefront-api/internal/domain/review"
)

type createReviewRequest struct {
	StarPoint int      `json:"starPoint"`
	Content   string   `json:"content"`
	Photos    []string `json:"photos"`
}

type replyRequest struct {
	Content string `json:"content"`
}

type replyResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type reviewResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	StarPoint int             `json:"starPoint"`
	Content   string          `json:"content"`
	Photos    []string        `json:"photos"`
	Replies   []replyResponse `json:"replies"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (h *Handler) toReviewResponse(rev review.Review) reviewResponse {
	replies := make([]replyResponse, len(rev.Replies))
	for i, rep := range rev.Replies {
		replies[i] = replyResponse{
			ID:        rep.ID,
			UserID:    rep.UserID,
			Content:   rep.Content,
			CreatedAt: rep.CreatedAt,
		}
	}
	return reviewResponse{
		ID:        rev.ID,
		UserID:    rev.UserID,
		ProductID: rev.ProductID,
		StarPoint: rev.StarPoint,
		Content:   rev.Content,
		Photos:    h.mediaURLs(rev.Photos),
		Replies:   replies,
		CreatedAt: rev.CreatedAt,
		UpdatedAt: rev.UpdatedAt,
	}
}

// ListReviews handles GET /api/products/{id}/reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, err := h.reviews.ListByProduct(r.Context(), r.PathValue("id"), pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, h.toReviewResponse))
}

// CreateReview handles POST /api/products/{id}/reviews. One review per user
// per product.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	rev := review.Review{
		ID:        uuid.New().String(),
		UserID:    claims.UserID,
		ProductID: r.PathValue("id"),
		StarPoint: req.StarPoint,
		Content:   req.Content,
		Photos:    req.Photos,
	}
	if err := rev.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.reviews.Create(r.Context(), &rev); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toReviewResponse(rev))
}

// ReplyToReview handles POST /api/reviews/{id}/replies.
func (h *Handler) ReplyToReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req replyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	reply := review.Reply{
		ID:       uuid.New().String(),
		ReviewID: r.PathValue("id"),
		UserID:   claims.UserID,
		Content:  req.Content,
	}
	if err := h.reviews.AddReply(r.Context(), &reply); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	rev, err := h.reviews.GetByID(r.Context(), reply.ReviewID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toReviewResponse(*rev))
}
