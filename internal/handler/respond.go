package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/address"
	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/pagination"
	"github.com/xenking/storefront-api/internal/domain/pricing"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/review"
	"github.com/xenking/storefront-api/internal/domain/user"
)

// errorResponse is the JSON error envelope shared by every endpoint.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// pageResponse is the JSON pagination envelope shared by every listing.
type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalRows  int64 `json:"totalRows"`
	TotalPages int64 `json:"totalPages"`
}

func newPageResponse[T, S any](p pagination.Page[S], convert func(S) T) pageResponse[T] {
	items := make([]T, len(p.Items))
	for i, item := range p.Items {
		items[i] = convert(item)
	}
	return pageResponse[T]{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalRows:  p.TotalRows,
		TotalPages: p.TotalPages(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses and writes the JSON error
// envelope. Unrecognized errors are logged and reported as 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zctx.From(ctx).Error("Internal error", zap.Error(err))
		writeJSON(w, status, errorResponse{Code: status, Message: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Code: status, Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrNegativeReduction),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, pricing.ErrDiscountExceedsPrice),
		errors.Is(err, pricing.ErrPercentOutOfRange),
		errors.Is(err, pricing.ErrNegativeDiscount),
		errors.Is(err, review.ErrInvalidStarPoint),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrInvalidToken),
		errors.Is(err, user.ErrTokenNotFound):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrPermissionDenied),
		errors.Is(err, address.ErrPermissionDenied),
		errors.Is(err, user.ErrNotVerified):
		return http.StatusForbidden

	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, product.ErrBrandNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, address.ErrProvinceNotFound),
		errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrAlreadyVerified),
		errors.Is(err, review.ErrAlreadyReviewed):
		return http.StatusConflict

	case errors.Is(err, cart.ErrCartEmpty),
		errors.Is(err, order.ErrReductionTooLarge),
		errors.Is(err, order.ErrCannotCancel):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// errBadRequest is the sentinel wrapped by request decoding and validation
// failures.
var errBadRequest = errors.New("bad request")

// decodeBody decodes a JSON request body into v, mapping failures to 400.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errBadRequest, "invalid request body")
	}
	return nil
}

// pageParams extracts the page and limit query parameters. Malformed values
// fall back to the defaults.
func pageParams(r *http.Request) pagination.Params {
	var p pagination.Params
	q := r.URL.Query()
	if v, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil {
		p.Page = v
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil {
		p.Limit = v
	}
	return p.Normalize()
}
