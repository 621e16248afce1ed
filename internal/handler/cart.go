package handler

import (
	"net/http"
	"time"

	"github.com/xenking/storefront-api/internal/domain/cart"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int64 `json:"quantity"`
}

type cartItemResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int64     `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type cartLineResponse struct {
	cartItemResponse
	ProductName        string `json:"productName"`
	Thumbnail          string `json:"thumbnail"`
	Price              int64  `json:"price"`
	DiscountType       string `json:"discountType,omitempty"`
	DiscountValue      int64  `json:"discountValue,omitempty"`
	PriceAfterDiscount int64  `json:"priceAfterDiscount"`
}

func toCartItemResponse(item *cart.Item) cartItemResponse {
	return cartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func (h *Handler) toCartLineResponse(line cart.Line) cartLineResponse {
	return cartLineResponse{
		cartItemResponse:   toCartItemResponse(&line.Item),
		ProductName:        line.ProductName,
		Thumbnail:          h.mediaURL(line.Thumbnail),
		Price:              line.Price,
		DiscountType:       string(line.DiscountType),
		DiscountValue:      line.DiscountValue,
		PriceAfterDiscount: line.PriceAfterDiscount,
	}
}

// AddToCart handles POST /api/carts. Adding a product already in the cart
// merges the quantities into the existing line.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	item, err := h.carts.AddToCart(r.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(item))
}

// ListCart handles GET /api/carts.
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	page, err := h.carts.ListActive(r.Context(), claims.UserID, pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, h.toCartLineResponse))
}

// UpdateCartItem handles PUT /api/carts/{id}. The quantity is overwritten,
// not merged.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req updateCartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	id := r.PathValue("id")
	item, err := h.carts.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if item.UserID != claims.UserID {
		writeError(r.Context(), w, cart.ErrNotFound)
		return
	}

	updated, err := h.carts.UpdateQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(updated))
}

type removedResponse struct {
	Removed int64 `json:"removed"`
}

// RemoveCartItem handles DELETE /api/carts/{id}.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	n, err := h.carts.Remove(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: n})
}

// ClearCart handles DELETE /api/carts.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	n, err := h.carts.Remove(r.Context(), claims.UserID, "")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: n})
}
