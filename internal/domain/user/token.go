package user

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes the four JWT flavours the account flows issue.
type TokenType string

const (
	TokenAccess         TokenType = "access"
	TokenRefresh        TokenType = "refresh"
	TokenVerifyEmail    TokenType = "verify_email"
	TokenForgotPassword TokenType = "forgot_password"
)

// ErrInvalidToken is returned when a JWT fails verification or carries the
// wrong token type.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload shared by all token types.
type Claims struct {
	UserID    string       `json:"userId"`
	Role      Role         `json:"role"`
	Verify    VerifyStatus `json:"verify"`
	TokenType TokenType    `json:"tokenType"`
	jwt.RegisteredClaims
}

// TokenConfig holds the signing secrets and lifetimes per token type.
type TokenConfig struct {
	AccessSecret         []byte
	RefreshSecret        []byte
	VerifyEmailSecret    []byte
	ForgotPasswordSecret []byte
	AccessTTL            time.Duration
	RefreshTTL           time.Duration
	VerifyEmailTTL       time.Duration
	ForgotPasswordTTL    time.Duration
}

// TokenSigner mints and verifies the JWTs used by the account flows. All
// tokens are HMAC-SHA256 signed with a per-type secret.
type TokenSigner struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenSigner creates a TokenSigner from the given config.
func NewTokenSigner(cfg TokenConfig) *TokenSigner {
	return &TokenSigner{cfg: cfg, now: time.Now}
}

func (s *TokenSigner) secretFor(tt TokenType) []byte {
	switch tt {
	case TokenAccess:
		return s.cfg.AccessSecret
	case TokenRefresh:
		return s.cfg.RefreshSecret
	case TokenVerifyEmail:
		return s.cfg.VerifyEmailSecret
	case TokenForgotPassword:
		return s.cfg.ForgotPasswordSecret
	default:
		return nil
	}
}

func (s *TokenSigner) ttlFor(tt TokenType) time.Duration {
	switch tt {
	case TokenAccess:
		return s.cfg.AccessTTL
	case TokenRefresh:
		return s.cfg.RefreshTTL
	case TokenVerifyEmail:
		return s.cfg.VerifyEmailTTL
	case TokenForgotPassword:
		return s.cfg.ForgotPasswordTTL
	default:
		return 0
	}
}

// Sign mints a token of the given type for the user.
func (s *TokenSigner) Sign(tt TokenType, u *User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    u.ID,
		Role:      u.Role,
		Verify:    u.Verify,
		TokenType: tt,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttlFor(tt))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretFor(tt))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// SignWithExpiry mints a token with an explicit expiry, used when rotating a
// refresh token so the replacement keeps the original deadline.
func (s *TokenSigner) SignWithExpiry(tt TokenType, u *User, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID:    u.ID,
		Role:      u.Role,
		Verify:    u.Verify,
		TokenType: tt,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretFor(tt))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses the token, checks the HMAC signature and expiry, and rejects
// tokens whose type does not match the expected one.
func (s *TokenSigner) Verify(tokenString string, tt TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretFor(tt), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.TokenType != tt {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
