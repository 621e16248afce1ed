package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/storefront-api/internal/domain/address"
)

type addressRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Type        string `json:"type"`
	ProvinceID  string `json:"provinceId"`
	DistrictID  string `json:"districtId"`
	WardID      string `json:"wardId"`
	StreetID    string `json:"streetId"`
	IsDefault   bool   `json:"isDefault"`
}

type addressResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Type        string    `json:"type"`
	ProvinceID  string    `json:"provinceId"`
	DistrictID  string    `json:"districtId"`
	WardID      string    `json:"wardId"`
	StreetID    string    `json:"streetId"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toAddressResponse(a address.Address) addressResponse {
	return addressResponse{
		ID:          a.ID,
		FullName:    a.FullName,
		PhoneNumber: a.PhoneNumber,
		Type:        string(a.Type),
		ProvinceID:  a.ProvinceID,
		DistrictID:  a.DistrictID,
		WardID:      a.WardID,
		StreetID:    a.StreetID,
		IsDefault:   a.IsDefault,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (req addressRequest) toAddress(id, userID string) address.Address {
	typ := address.Type(req.Type)
	if typ == "" {
		typ = address.TypeHome
	}
	return address.Address{
		ID:          id,
		UserID:      userID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Type:        typ,
		ProvinceID:  req.ProvinceID,
		DistrictID:  req.DistrictID,
		WardID:      req.WardID,
		StreetID:    req.StreetID,
		IsDefault:   req.IsDefault,
	}
}

// CreateAddress handles POST /api/addresses.
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req addressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	a := req.toAddress(uuid.New().String(), claims.UserID)
	if err := h.addresses.Create(r.Context(), &a); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if a.IsDefault {
		if err := h.addresses.SetDefault(r.Context(), claims.UserID, a.ID); err != nil {
			writeError(r.Context(), w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, toAddressResponse(a))
}

// ListAddresses handles GET /api/addresses.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	addrs, err := h.addresses.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]addressResponse, len(addrs))
	for i, a := range addrs {
		resp[i] = toAddressResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateAddress handles PUT /api/addresses/{id}. The repository scopes the
// update to the owner, so another user's address reads as not found.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req addressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	a := req.toAddress(r.PathValue("id"), claims.UserID)
	updated, err := h.addresses.Update(r.Context(), &a)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResponse(*updated))
}

// DeleteAddress handles DELETE /api/addresses/{id}.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	if err := h.addresses.Delete(r.Context(), claims.UserID, r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "address deleted"})
}

// SetDefaultAddress handles POST /api/addresses/{id}/default.
func (h *Handler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	if err := h.addresses.SetDefault(r.Context(), claims.UserID, r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "default address updated"})
}

type geoEntryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListProvinces handles GET /api/geo/provinces.
func (h *Handler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.geo.Provinces(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]geoEntryResponse, len(provinces))
	for i, p := range provinces {
		resp[i] = geoEntryResponse{ID: p.ID, Name: p.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDistricts handles GET /api/geo/provinces/{id}/districts.
func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.geo.Districts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]geoEntryResponse, len(districts))
	for i, d := range districts {
		resp[i] = geoEntryResponse{ID: d.ID, Name: d.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListWards handles GET /api/geo/districts/{id}/wards.
func (h *Handler) ListWards(w http.ResponseWriter, r *http.Request) {
	wards, err := h.geo.Wards(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]geoEntryResponse, len(wards))
	for i, wd := range wards {
		resp[i] = geoEntryResponse{ID: wd.ID, Name: wd.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListStreets handles GET /api/geo/districts/{id}/streets.
func (h *Handler) ListStreets(w http.ResponseWriter, r *http.Request) {
	streets, err := h.geo.Streets(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]geoEntryResponse, len(streets))
	for i, s := range streets {
		resp[i] = geoEntryResponse{ID: s.ID, Name: s.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}
