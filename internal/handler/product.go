package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/pricing"
	"github.com/xenking/storefront-api/internal/domain/product"
)

type productRequest struct {
	CategoryID     string   `json:"categoryId"`
	BrandID        string   `json:"brandId"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Thumbnail      string   `json:"thumbnail"`
	Photos         []string `json:"photos"`
	Status         string   `json:"status"`
	AvailableCount int64    `json:"availableCount"`
	Price          int64    `json:"price"`
	DiscountType   string   `json:"discountType"`
	DiscountValue  int64    `json:"discountValue"`
}

type productResponse struct {
	ID                 string          `json:"id"`
	CategoryID         string          `json:"categoryId,omitempty"`
	CategoryName       string          `json:"categoryName,omitempty"`
	BrandID            string          `json:"brandId,omitempty"`
	BrandName          string          `json:"brandName,omitempty"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Thumbnail          string          `json:"thumbnail"`
	Photos             []string        `json:"photos"`
	Status             string          `json:"status"`
	AvailableCount     int64           `json:"availableCount"`
	Price              int64           `json:"price"`
	DiscountType       string          `json:"discountType,omitempty"`
	DiscountValue      int64           `json:"discountValue,omitempty"`
	PriceAfterDiscount int64           `json:"priceAfterDiscount"`
	Rating             decimal.Decimal `json:"rating"`
	ReviewCount        int64           `json:"reviewCount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (h *Handler) toProductResponse(v product.View) productResponse {
	return productResponse{
		ID:                 v.ID,
		CategoryID:         v.CategoryID,
		CategoryName:       v.CategoryName,
		BrandID:            v.BrandID,
		BrandName:          v.BrandName,
		Name:               v.Name,
		Description:        v.Description,
		Thumbnail:          h.mediaURL(v.Thumbnail),
		Photos:             h.mediaURLs(v.Photos),
		Status:             string(v.Status),
		AvailableCount:     v.AvailableCount,
		Price:              v.Price,
		DiscountType:       string(v.DiscountType),
		DiscountValue:      v.DiscountValue,
		PriceAfterDiscount: v.PriceAfterDiscount,
		Rating:             v.Rating,
		ReviewCount:        v.ReviewCount,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func (req productRequest) toProduct(id string) product.Product {
	status := product.Status(req.Status)
	if status == "" {
		status = product.StatusActive
	}
	return product.Product{
		ID:             id,
		CategoryID:     req.CategoryID,
		BrandID:        req.BrandID,
		Name:           req.Name,
		Description:    req.Description,
		Thumbnail:      req.Thumbnail,
		Photos:         req.Photos,
		Status:         status,
		AvailableCount: req.AvailableCount,
		Price:          req.Price,
		DiscountType:   pricing.DiscountType(req.DiscountType),
		DiscountValue:  req.DiscountValue,
	}
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.products.List(r.Context(), pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, h.toProductResponse))
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	v, err := h.products.GetViewByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*v))
}

// CreateProduct handles POST /api/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	p := req.toProduct(uuid.New().String())
	if err := p.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	v, err := h.products.GetViewByID(r.Context(), p.ID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toProductResponse(*v))
}

// UpdateProduct handles PUT /api/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	p := req.toProduct(r.PathValue("id"))
	if err := p.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.products.Update(r.Context(), &p); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	v, err := h.products.GetViewByID(r.Context(), p.ID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*v))
}

// DeleteProduct handles DELETE /api/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted"})
}

type catalogEntryRequest struct {
	Name string `json:"name"`
}

type catalogEntryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := h.categories.List(r.Context(), pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, func(c product.Category) catalogEntryResponse {
		return catalogEntryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	}))
}

// CreateCategory handles POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req catalogEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c := product.Category{ID: uuid.New().String(), Name: req.Name}
	if err := h.categories.Create(r.Context(), &c); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, catalogEntryResponse{ID: c.ID, Name: c.Name})
}

// UpdateCategory handles PUT /api/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req catalogEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c := product.Category{ID: r.PathValue("id"), Name: req.Name}
	if err := h.categories.Update(r.Context(), &c); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogEntryResponse{ID: c.ID, Name: c.Name})
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "category deleted"})
}

// ListBrands handles GET /api/brands.
func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	page, err := h.brands.List(r.Context(), pageParams(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page, func(b product.Brand) catalogEntryResponse {
		return catalogEntryResponse{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
	}))
}

// CreateBrand handles POST /api/brands.
func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req catalogEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	b := product.Brand{ID: uuid.New().String(), Name: req.Name}
	if err := h.brands.Create(r.Context(), &b); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, catalogEntryResponse{ID: b.ID, Name: b.Name})
}

// UpdateBrand handles PUT /api/brands/{id}.
func (h *Handler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var req catalogEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	b := product.Brand{ID: r.PathValue("id"), Name: req.Name}
	if err := h.brands.Update(r.Context(), &b); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogEntryResponse{ID: b.ID, Name: b.Name})
}

// DeleteBrand handles DELETE /api/brands/{id}.
func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.brands.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "brand deleted"})
}
