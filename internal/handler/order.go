package handler

import (
	"net/http"
	"time"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/user"
)

type checkoutRequest struct {
	VoucherID          string `json:"voucherId"`
	TotalAmountReduced int64  `json:"totalAmountReduced"`
}

type updateOrderStatusRequest struct {
	Status int `json:"status"`
}

type orderResponse struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"userId"`
	VoucherID          string       `json:"voucherId,omitempty"`
	Status             int          `json:"status"`
	StatusName         string       `json:"statusName"`
	Items              []order.Item `json:"items"`
	TotalAmount        int64        `json:"totalAmount"`
	TotalAmountReduced int64        `json:"totalAmountReduced"`
	TotalPayment       int64        `json:"totalPayment"`
	TotalQuantity      int64        `json:"totalQuantity"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

func (h *Handler) toOrderResponse(o *order.Order) orderResponse {
	items := make([]order.Item, len(o.Items))
	for i, item := range o.Items {
		item.Thumbnail = h.mediaURL(item.Thumbnail)
		items[i] = item
	}
	return orderResponse{
		ID:                 o.ID,
		UserID:             o.UserID,
		VoucherID:          o.VoucherID,
		Status:             int(o.Status),
		StatusName:         o.Status.String(),
		Items:              items,
		TotalAmount:        o.TotalAmount,
		TotalAmountReduced: o.TotalAmountReduced,
		TotalPayment:       o.TotalPayment,
		TotalQuantity:      o.TotalQuantity,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// Checkout handles POST /api/orders: it converts the caller's active cart
// into an immutable order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	o, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		UserID:             claims.UserID,
		VoucherID:          req.VoucherID,
		TotalAmountReduced: req.TotalAmountReduced,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toOrderResponse(o))
}

// ListMyOrders handles GET /api/orders.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	page, err := h.orders.GetMyOrders(r.Context(), claims.UserID, pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, func(o order.Order) orderResponse {
		return h.toOrderResponse(&o)
	}))
}

// ListAllOrders handles GET /api/orders/all.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.orders.GetAllOrders(r.Context(), pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, func(o order.Order) orderResponse {
		return h.toOrderResponse(&o)
	}))
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	o, err := h.orders.Get(r.Context(), r.PathValue("id"), claims.UserID, claims.Role == user.RoleAdmin)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

// CancelOrder handles POST /api/orders/{id}/cancel. Only the owner may
// cancel, and only while the order waits for confirmation.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

// UpdateOrderStatus handles PATCH /api/orders/{id}/status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), order.Status(req.Status))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

// DeleteOrder handles DELETE /api/orders/{id}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order deleted"})
}
