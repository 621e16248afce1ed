package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/user"
)

// claimsKey is the context key for the authenticated token claims.
type claimsKey struct{}

// ClaimsFromContext extracts the authenticated claims from the context.
func ClaimsFromContext(ctx context.Context) (*user.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*user.Claims)
	return claims, ok
}

// authenticate verifies the Bearer access token and stores its claims in the
// request context.
func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(r.Context(), w, user.ErrInvalidToken)
			return
		}

		claims, err := h.signer.Verify(token, user.TokenAccess)
		if err != nil {
			writeError(r.Context(), w, user.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next(w, r.WithContext(ctx))
	}
}

// requireVerified rejects requests from accounts that have not confirmed
// their email. Implies authenticate.
func (h *Handler) requireVerified(next http.HandlerFunc) http.HandlerFunc {
	return h.authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if claims.Verify != user.VerifyVerified {
			writeError(r.Context(), w, user.ErrNotVerified)
			return
		}
		next(w, r)
	})
}

// requireAdmin rejects requests from non-admin accounts. Implies authenticate.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if claims.Role != user.RoleAdmin {
			writeError(r.Context(), w, order.ErrPermissionDenied)
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}
