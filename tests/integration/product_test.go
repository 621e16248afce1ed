//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// Seeded catalog IDs from db/seed/catalog.json.
const (
	productPhoneID  = "a0e8c6d4-aaaa-4bde-9f21-000000000001" // 79900, 10% off
	productLaptopID = "a0e8c6d4-aaaa-4bde-9f21-000000000002" // 144900, 15000 off
	productMouseID  = "a0e8c6d4-aaaa-4bde-9f21-000000000003" // 9900, no discount
)

const unknownUUID = "00000000-0000-0000-0000-000000000000"

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[pageResponse[productResponse]](t, resp)
	if page.TotalRows != 3 {
		t.Fatalf("expected 3 products, got %d", page.TotalRows)
	}
	if page.Page != 1 || page.Limit != 20 {
		t.Errorf("pagination defaults: got page=%d limit=%d", page.Page, page.Limit)
	}
}

func TestListProducts_DiscountedPrices(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[pageResponse[productResponse]](t, resp)
	byID := make(map[string]productResponse, len(page.Items))
	for _, p := range page.Items {
		byID[p.ID] = p
	}

	tests := []struct {
		id   string
		want int64
	}{
		{productPhoneID, 71910},   // 79900 - 10%
		{productLaptopID, 129900}, // 144900 - 15000
		{productMouseID, 9900},    // no discount
	}
	for _, tt := range tests {
		p, ok := byID[tt.id]
		if !ok {
			t.Errorf("product %s missing from listing", tt.id)
			continue
		}
		if p.PriceAfterDiscount != tt.want {
			t.Errorf("%s: priceAfterDiscount got %d, want %d", p.Name, p.PriceAfterDiscount, tt.want)
		}
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/"+productPhoneID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.Name != "iPhone 15 128GB" {
		t.Errorf("name: got %q, want %q", p.Name, "iPhone 15 128GB")
	}
	if p.CategoryName != "Phones" {
		t.Errorf("categoryName: got %q, want %q", p.CategoryName, "Phones")
	}
	if p.BrandName != "Apple" {
		t.Errorf("brandName: got %q, want %q", p.BrandName, "Apple")
	}
	if p.PriceAfterDiscount != 71910 {
		t.Errorf("priceAfterDiscount: got %d, want 71910", p.PriceAfterDiscount)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/"+unknownUUID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	token := loginAdmin(t)

	create := doRequest(t, http.MethodPost, "/api/products", map[string]any{
		"name":           "Integration Keyboard",
		"price":          19900,
		"discountType":   "percent",
		"discountValue":  25,
		"availableCount": 10,
	}, token)
	defer create.Body.Close()

	if create.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", create.StatusCode)
	}

	created := decodeJSON[productResponse](t, create)
	if created.PriceAfterDiscount != 14925 {
		t.Errorf("priceAfterDiscount: got %d, want 14925", created.PriceAfterDiscount)
	}

	// Editing the discount changes the listed price on the next read.
	update := doRequest(t, http.MethodPut, "/api/products/"+created.ID, map[string]any{
		"name":           "Integration Keyboard",
		"price":          19900,
		"availableCount": 10,
	}, token)
	defer update.Body.Close()

	if update.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", update.StatusCode)
	}

	updated := decodeJSON[productResponse](t, update)
	if updated.PriceAfterDiscount != 19900 {
		t.Errorf("priceAfterDiscount after update: got %d, want 19900", updated.PriceAfterDiscount)
	}

	del := doRequest(t, http.MethodDelete, "/api/products/"+created.ID, nil, token)
	defer del.Body.Close()

	if del.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", del.StatusCode)
	}

	gone := doGet(t, "/api/products/"+created.ID)
	defer gone.Body.Close()

	if gone.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", gone.StatusCode)
	}
}

func TestCreateProduct_InvalidDiscount(t *testing.T) {
	token := loginAdmin(t)

	// A flat discount larger than the price must be rejected up front.
	resp := doRequest(t, http.MethodPost, "/api/products", map[string]any{
		"name":          "Broken Deal",
		"price":         1000,
		"discountType":  "money",
		"discountValue": 2000,
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
