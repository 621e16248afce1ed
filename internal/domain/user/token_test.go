package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:         []byte("access-secret"),
		RefreshSecret:        []byte("refresh-secret"),
		VerifyEmailSecret:    []byte("verify-secret"),
		ForgotPasswordSecret: []byte("forgot-secret"),
		AccessTTL:            15 * time.Minute,
		RefreshTTL:           100 * 24 * time.Hour,
		VerifyEmailTTL:       7 * 24 * time.Hour,
		ForgotPasswordTTL:    7 * 24 * time.Hour,
	}
}

func testUser() *User {
	return &User{ID: "u1", Role: RoleUser, Verify: VerifyVerified}
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner(testTokenConfig())

	for _, tt := range []TokenType{TokenAccess, TokenRefresh, TokenVerifyEmail, TokenForgotPassword} {
		token, err := signer.Sign(tt, testUser())
		require.NoError(t, err)

		claims, err := signer.Verify(token, tt)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, RoleUser, claims.Role)
		assert.Equal(t, VerifyVerified, claims.Verify)
		assert.Equal(t, tt, claims.TokenType)
	}
}

func TestTokenSigner_RejectsWrongType(t *testing.T) {
	signer := NewTokenSigner(testTokenConfig())

	token, err := signer.Sign(TokenRefresh, testUser())
	require.NoError(t, err)

	// A refresh token must never pass as an access token, even though both
	// are well-formed JWTs.
	_, err = signer.Verify(token, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_RejectsExpired(t *testing.T) {
	signer := NewTokenSigner(testTokenConfig())
	signer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := signer.Sign(TokenAccess, testUser())
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.Verify(token, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_RejectsTampered(t *testing.T) {
	signer := NewTokenSigner(testTokenConfig())

	token, err := signer.Sign(TokenAccess, testUser())
	require.NoError(t, err)

	_, err = signer.Verify(token+"x", TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_SignWithExpiryKeepsDeadline(t *testing.T) {
	signer := NewTokenSigner(testTokenConfig())
	deadline := time.Now().Add(42 * time.Minute).Truncate(time.Second)

	token, err := signer.SignWithExpiry(TokenRefresh, testUser(), deadline)
	require.NoError(t, err)

	claims, err := signer.Verify(token, TokenRefresh)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(deadline),
		"got %v, want %v", claims.ExpiresAt.Time, deadline)
}
