//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func uniqueEmail() string {
	return fmt.Sprintf("user-%d@storefront.test", time.Now().UnixNano())
}

func registerUser(t *testing.T, email, password string) authResponse {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[authResponse](t, resp)
}

func TestRegister(t *testing.T) {
	email := uniqueEmail()
	auth := registerUser(t, email, "secret-pw")

	if auth.User.Email != email {
		t.Errorf("email: got %q, want %q", auth.User.Email, email)
	}
	if auth.User.Role != "user" {
		t.Errorf("role: got %q, want %q", auth.User.Role, "user")
	}
	if auth.User.Verify != "unverified" {
		t.Errorf("verify: got %q, want %q", auth.User.Verify, "unverified")
	}
	if auth.AccessToken == "" || auth.RefreshToken == "" {
		t.Error("token pair incomplete")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	email := uniqueEmail()
	registerUser(t, email, "secret-pw")

	resp := doRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"email":    email,
		"password": "secret-pw",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	resp := doRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"email":    "not-an-email",
		"password": "secret-pw",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	resp := doRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"email":    uniqueEmail(),
		"password": "short",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	email := uniqueEmail()
	registerUser(t, email, "secret-pw")

	resp := doRequest(t, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": "wrong-password",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRefreshToken(t *testing.T) {
	auth := registerUser(t, uniqueEmail(), "secret-pw")

	resp := doRequest(t, http.MethodPost, "/api/users/refresh-token", map[string]string{
		"refreshToken": auth.RefreshToken,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	pair := decodeJSON[authResponse](t, resp)
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("rotated token pair incomplete")
	}
}

func TestRefreshToken_AfterLogout(t *testing.T) {
	auth := registerUser(t, uniqueEmail(), "secret-pw")

	logout := doRequest(t, http.MethodPost, "/api/users/logout", map[string]string{
		"refreshToken": auth.RefreshToken,
	}, "")
	logout.Body.Close()
	if logout.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", logout.StatusCode)
	}

	resp := doRequest(t, http.MethodPost, "/api/users/refresh-token", map[string]string{
		"refreshToken": auth.RefreshToken,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGetMe(t *testing.T) {
	email := uniqueEmail()
	auth := registerUser(t, email, "secret-pw")

	resp := doRequest(t, http.MethodGet, "/api/users/me", nil, auth.AccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	me := decodeJSON[userResponse](t, resp)
	if me.Email != email {
		t.Errorf("email: got %q, want %q", me.Email, email)
	}
}

func TestGetMe_NoToken(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/users/me", nil, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestUnverifiedUser_CannotShop(t *testing.T) {
	auth := registerUser(t, uniqueEmail(), "secret-pw")

	resp := doRequest(t, http.MethodPost, "/api/carts", map[string]any{
		"productId": productPhoneID,
		"quantity":  1,
	}, auth.AccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestNonAdmin_CannotManageCatalog(t *testing.T) {
	auth := registerUser(t, uniqueEmail(), "secret-pw")

	resp := doRequest(t, http.MethodPost, "/api/categories", map[string]string{
		"name": "Forbidden",
	}, auth.AccessToken)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
