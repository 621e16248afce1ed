// Package handler exposes the domain services over HTTP. Handlers stay thin:
// decode, delegate, map errors, encode.
package handler

import (
	"net/http"
	"strings"

	"github.com/xenking/storefront-api/internal/domain/address"
	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/review"
	"github.com/xenking/storefront-api/internal/domain/user"
)

// Deps bundles the domain dependencies of the Handler.
type Deps struct {
	Users      *user.Service
	Signer     *user.TokenSigner
	Products   product.Repository
	Categories product.CategoryRepository
	Brands     product.BrandRepository
	Carts      *cart.Service
	Orders     *order.Service
	Addresses  address.Repository
	Geo        address.GeoRepository
	Reviews    review.Repository

	// MediaBaseURL is prefixed to relative media paths in responses.
	MediaBaseURL string
}

// Handler routes HTTP requests to the domain services.
type Handler struct {
	users      *user.Service
	signer     *user.TokenSigner
	products   product.Repository
	categories product.CategoryRepository
	brands     product.BrandRepository
	carts      *cart.Service
	orders     *order.Service
	addresses  address.Repository
	geo        address.GeoRepository
	reviews    review.Repository
	media      string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		users:      deps.Users,
		signer:     deps.Signer,
		products:   deps.Products,
		categories: deps.Categories,
		brands:     deps.Brands,
		carts:      deps.Carts,
		orders:     deps.Orders,
		addresses:  deps.Addresses,
		geo:        deps.Geo,
		reviews:    deps.Reviews,
		media:      strings.TrimSuffix(deps.MediaBaseURL, "/"),
	}
}

// mediaURL resolves a stored media path against the configured base URL.
// Absolute URLs and empty paths pass through unchanged.
func (h *Handler) mediaURL(path string) string {
	if path == "" || h.media == "" || strings.Contains(path, "://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return h.media + path
}

func (h *Handler) mediaURLs(paths []string) []string {
	if h.media == "" || len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = h.mediaURL(p)
	}
	return out
}

// Register mounts every API route on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	// Accounts.
	mux.HandleFunc("POST /api/users/register", h.RegisterUser)
	mux.HandleFunc("POST /api/users/login", h.Login)
	mux.HandleFunc("POST /api/users/logout", h.Logout)
	mux.HandleFunc("POST /api/users/refresh-token", h.RefreshToken)
	mux.HandleFunc("POST /api/users/verify-email", h.VerifyEmail)
	mux.HandleFunc("POST /api/users/resend-verify-email", h.authenticate(h.ResendVerifyEmail))
	mux.HandleFunc("POST /api/users/forgot-password", h.ForgotPassword)
	mux.HandleFunc("POST /api/users/reset-password", h.ResetPassword)
	mux.HandleFunc("GET /api/users/me", h.authenticate(h.GetMe))
	mux.HandleFunc("PATCH /api/users/me", h.authenticate(h.UpdateMe))

	// Catalog.
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/products", h.requireAdmin(h.CreateProduct))
	mux.HandleFunc("PUT /api/products/{id}", h.requireAdmin(h.UpdateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.requireAdmin(h.DeleteProduct))

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.requireAdmin(h.CreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", h.requireAdmin(h.UpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", h.requireAdmin(h.DeleteCategory))

	mux.HandleFunc("GET /api/brands", h.ListBrands)
	mux.HandleFunc("POST /api/brands", h.requireAdmin(h.CreateBrand))
	mux.HandleFunc("PUT /api/brands/{id}", h.requireAdmin(h.UpdateBrand))
	mux.HandleFunc("DELETE /api/brands/{id}", h.requireAdmin(h.DeleteBrand))

	// Cart.
	mux.HandleFunc("POST /api/carts", h.requireVerified(h.AddToCart))
	mux.HandleFunc("GET /api/carts", h.requireVerified(h.ListCart))
	mux.HandleFunc("PUT /api/carts/{id}", h.requireVerified(h.UpdateCartItem))
	mux.HandleFunc("DELETE /api/carts/{id}", h.requireVerified(h.RemoveCartItem))
	mux.HandleFunc("DELETE /api/carts", h.requireVerified(h.ClearCart))

	// Orders.
	mux.HandleFunc("POST /api/orders", h.requireVerified(h.Checkout))
	mux.HandleFunc("GET /api/orders", h.requireVerified(h.ListMyOrders))
	mux.HandleFunc("GET /api/orders/all", h.requireAdmin(h.ListAllOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.requireVerified(h.GetOrder))
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.requireVerified(h.CancelOrder))
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.requireAdmin(h.UpdateOrderStatus))
	mux.HandleFunc("DELETE /api/orders/{id}", h.requireAdmin(h.DeleteOrder))

	// Reviews.
	mux.HandleFunc("GET /api/products/{id}/reviews", h.ListReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.requireVerified(h.CreateReview))
	mux.HandleFunc("POST /api/reviews/{id}/replies", h.requireAdmin(h.ReplyToReview))

	// Addresses and geo reference data.
	mux.HandleFunc("POST /api/addresses", h.requireVerified(h.CreateAddress))
	mux.HandleFunc("GET /api/addresses", h.requireVerified(h.ListAddresses))
	mux.HandleFunc("PUT /api/addresses/{id}", h.requireVerified(h.UpdateAddress))
	mux.HandleFunc("DELETE /api/addresses/{id}", h.requireVerified(h.DeleteAddress))
	mux.HandleFunc("POST /api/addresses/{id}/default", h.requireVerified(h.SetDefaultAddress))

	mux.HandleFunc("GET /api/geo/provinces", h.ListProvinces)
	mux.HandleFunc("GET /api/geo/provinces/{id}/districts", h.ListDistricts)
	mux.HandleFunc("GET /api/geo/districts/{id}/wards", h.ListWards)
	mux.HandleFunc("GET /api/geo/districts/{id}/streets", h.ListStreets)
}
