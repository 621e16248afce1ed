//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func addToCart(t *testing.T, token, productID string, quantity int64) cartItemResponse {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/api/carts", map[string]any{
		"productId": productID,
		"quantity":  quantity,
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[cartItemResponse](t, resp)
}

func listCart(t *testing.T, token string) pageResponse[cartLineResponse] {
	t.Helper()

	resp := doRequest(t, http.MethodGet, "/api/carts", nil, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list cart: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[pageResponse[cartLineResponse]](t, resp)
}

func checkout(t *testing.T, token string, reduced int64) (*http.Response, func()) {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/api/orders", map[string]any{
		"totalAmountReduced": reduced,
	}, token)
	return resp, func() { resp.Body.Close() }
}

func TestAddToCart_NoAuth(t *testing.T) {
	resp := doRequest(t, http.MethodPost, "/api/carts", map[string]any{
		"productId": productPhoneID,
		"quantity":  1,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	resp := doRequest(t, http.MethodPost, "/api/carts", map[string]any{
		"productId": unknownUUID,
		"quantity":  1,
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAddToCart_MergesQuantities(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	first := addToCart(t, token, productPhoneID, 1)
	second := addToCart(t, token, productPhoneID, 2)

	if second.ID != first.ID {
		t.Errorf("expected the same cart line, got %q and %q", first.ID, second.ID)
	}
	if second.Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", second.Quantity)
	}

	page := listCart(t, token)
	if page.TotalRows != 1 {
		t.Errorf("expected a single cart line, got %d", page.TotalRows)
	}

	clearCart(t, token)
}

func TestListCart_DiscountedPrices(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productPhoneID, 1)

	page := listCart(t, token)
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(page.Items))
	}

	line := page.Items[0]
	if line.Price != 79900 {
		t.Errorf("price: got %d, want 79900", line.Price)
	}
	if line.PriceAfterDiscount != 71910 {
		t.Errorf("priceAfterDiscount: got %d, want 71910", line.PriceAfterDiscount)
	}
	if line.ProductName == "" {
		t.Error("productName is empty")
	}

	clearCart(t, token)
}

func TestListCart_NewestUpdatedFirst(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productPhoneID, 1)
	addToCart(t, token, productLaptopID, 1)

	page := listCart(t, token)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(page.Items))
	}
	if page.Items[0].ProductID != productLaptopID {
		t.Errorf("expected the laptop line first, got product %q", page.Items[0].ProductID)
	}

	// Merging into the older phone line must float it to the top.
	addToCart(t, token, productPhoneID, 1)

	page = listCart(t, token)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(page.Items))
	}
	if page.Items[0].ProductID != productPhoneID {
		t.Errorf("expected the re-added phone line first, got product %q", page.Items[0].ProductID)
	}
	if page.Items[1].ProductID != productLaptopID {
		t.Errorf("expected the laptop line second, got product %q", page.Items[1].ProductID)
	}

	clearCart(t, token)
}

func TestCheckout_EmptyCart(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	resp, closeBody := checkout(t, token, 0)
	defer closeBody()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCheckout_ReductionExceedsTotal(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productMouseID, 1) // 9900, no discount

	resp, closeBody := checkout(t, token, 10000)
	defer closeBody()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	// The cart survives a rejected checkout.
	page := listCart(t, token)
	if page.TotalRows != 1 {
		t.Errorf("expected cart intact, got %d lines", page.TotalRows)
	}

	clearCart(t, token)
}

func TestCheckoutFlow(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productPhoneID, 3) // 3 x 71910 after 10% off
	addToCart(t, token, productMouseID, 1) // 1 x 9900

	resp, closeBody := checkout(t, token, 0)
	defer closeBody()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order ID %q is not a valid UUID", o.ID)
	}
	if o.StatusName != "wait_for_confirmation" {
		t.Errorf("statusName: got %q, want %q", o.StatusName, "wait_for_confirmation")
	}
	if o.TotalAmount != 3*71910+9900 {
		t.Errorf("totalAmount: got %d, want %d", o.TotalAmount, 3*71910+9900)
	}
	if o.TotalPayment != o.TotalAmount {
		t.Errorf("totalPayment: got %d, want %d", o.TotalPayment, o.TotalAmount)
	}
	if o.TotalQuantity != 4 {
		t.Errorf("totalQuantity: got %d, want 4", o.TotalQuantity)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected 2 frozen lines, got %d", len(o.Items))
	}

	// Checkout consumed the cart.
	page := listCart(t, token)
	if page.TotalRows != 0 {
		t.Errorf("expected empty cart after checkout, got %d lines", page.TotalRows)
	}

	// The order is visible with product display fields attached.
	get := doRequest(t, http.MethodGet, "/api/orders/"+o.ID, nil, token)
	defer get.Body.Close()

	if get.StatusCode != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", get.StatusCode)
	}
	fetched := decodeJSON[orderResponse](t, get)
	for _, item := range fetched.Items {
		if item.ProductName == "" {
			t.Errorf("item %s has no product name", item.ProductID)
		}
		if item.UnitPrice <= 0 {
			t.Errorf("item %s unit price: got %d", item.ProductID, item.UnitPrice)
		}
	}
}

func TestOrderPricesFrozenAtCheckout(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	// Create a throwaway product, buy it, then change its price. The order
	// must keep the price paid.
	create := doRequest(t, http.MethodPost, "/api/products", map[string]any{
		"name":  "Price Freeze Probe",
		"price": 5000,
	}, token)
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d", create.StatusCode)
	}
	probe := decodeJSON[productResponse](t, create)
	create.Body.Close()

	addToCart(t, token, probe.ID, 1)

	resp, closeBody := checkout(t, token, 0)
	defer closeBody()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)

	update := doRequest(t, http.MethodPut, "/api/products/"+probe.ID, map[string]any{
		"name":  "Price Freeze Probe",
		"price": 9000,
	}, token)
	update.Body.Close()
	if update.StatusCode != http.StatusOK {
		t.Fatalf("update product: expected 200, got %d", update.StatusCode)
	}

	get := doRequest(t, http.MethodGet, "/api/orders/"+o.ID, nil, token)
	defer get.Body.Close()
	fetched := decodeJSON[orderResponse](t, get)

	if len(fetched.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(fetched.Items))
	}
	if fetched.Items[0].UnitPrice != 5000 {
		t.Errorf("unitPrice: got %d, want 5000", fetched.Items[0].UnitPrice)
	}
	if fetched.TotalAmount != 5000 {
		t.Errorf("totalAmount: got %d, want 5000", fetched.TotalAmount)
	}
}

func TestCancelOrder(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productMouseID, 1)

	resp, closeBody := checkout(t, token, 0)
	defer closeBody()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)

	cancel := doRequest(t, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, token)
	defer cancel.Body.Close()

	if cancel.StatusCode != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", cancel.StatusCode)
	}
	cancelled := decodeJSON[orderResponse](t, cancel)
	if cancelled.StatusName != "cancelled" {
		t.Errorf("statusName: got %q, want %q", cancelled.StatusName, "cancelled")
	}

	// A cancelled order cannot be cancelled again.
	again := doRequest(t, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, token)
	defer again.Body.Close()

	if again.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", again.StatusCode)
	}
}

func TestCancelOrder_NotOwner(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productMouseID, 1)

	resp, closeBody := checkout(t, token, 0)
	defer closeBody()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)

	// A different (unverified) user cannot reach the endpoint at all; the
	// ownership check is exercised in the unit tests, here we only pin down
	// that a foreign token does not slip through.
	stranger := registerUser(t, uniqueEmail(), "secret-pw")
	cancel := doRequest(t, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, stranger.AccessToken)
	defer cancel.Body.Close()

	if cancel.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", cancel.StatusCode)
	}
}

func TestOrderStatus_AdminUpdate(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	addToCart(t, token, productMouseID, 1)

	resp, closeBody := checkout(t, token, 0)
	defer closeBody()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)

	patch := doRequest(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", map[string]any{
		"status": 1,
	}, token)
	defer patch.Body.Close()

	if patch.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", patch.StatusCode)
	}
	updated := decodeJSON[orderResponse](t, patch)
	if updated.StatusName != "processing" {
		t.Errorf("statusName: got %q, want %q", updated.StatusName, "processing")
	}

	// Past confirmation the owner can no longer cancel.
	cancel := doRequest(t, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil, token)
	defer cancel.Body.Close()

	if cancel.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", cancel.StatusCode)
	}
}

func TestListOrders_NewestUpdatedFirst(t *testing.T) {
	token := loginAdmin(t)
	clearCart(t, token)

	placeOrder := func() orderResponse {
		t.Helper()
		addToCart(t, token, productMouseID, 1)
		resp, closeBody := checkout(t, token, 0)
		defer closeBody()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
		}
		return decodeJSON[orderResponse](t, resp)
	}

	first := placeOrder()
	second := placeOrder()

	list := doRequest(t, http.MethodGet, "/api/orders", nil, token)
	page := decodeJSON[pageResponse[orderResponse]](t, list)
	list.Body.Close()
	if len(page.Items) < 2 {
		t.Fatalf("expected at least 2 orders, got %d", len(page.Items))
	}
	if page.Items[0].ID != second.ID {
		t.Errorf("expected the latest order first, got %q", page.Items[0].ID)
	}

	// A status update floats the older order back to the top.
	patch := doRequest(t, http.MethodPatch, "/api/orders/"+first.ID+"/status", map[string]any{
		"status": 1,
	}, token)
	patch.Body.Close()
	if patch.StatusCode != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d", patch.StatusCode)
	}

	list = doRequest(t, http.MethodGet, "/api/orders", nil, token)
	page = decodeJSON[pageResponse[orderResponse]](t, list)
	list.Body.Close()
	if page.Items[0].ID != first.ID {
		t.Errorf("expected the updated order first, got %q", page.Items[0].ID)
	}
}
