package user

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair is an access/refresh token set returned by the auth flows.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements the account flows: registration, login, email
// verification, password reset, and refresh-token rotation.
type Service struct {
	users  Repository
	tokens TokenRepository
	signer *TokenSigner
	email  EmailSender
}

// NewService creates a user Service with the required dependencies.
func NewService(users Repository, tokens TokenRepository, signer *TokenSigner, email EmailSender) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		signer: signer,
		email:  email,
	}
}

// Register creates an unverified account, sends the verification email, and
// returns a fresh token pair.
func (s *Service) Register(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, nil, errors.Wrap(err, "check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:       uuid.New().String(),
		Email:    email,
		Password: string(hash),
		Role:     RoleUser,
		Verify:   VerifyUnverified,
	}

	verifyToken, err := s.signer.Sign(TokenVerifyEmail, u)
	if err != nil {
		return nil, nil, err
	}
	u.VerifyEmailToken = verifyToken

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, errors.Wrap(err, "create user")
	}

	if err := s.email.SendVerifyEmail(ctx, u.Email, verifyToken); err != nil {
		return nil, nil, errors.Wrap(err, "send verify email")
	}

	pair, err := s.issueTokenPair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Login checks credentials and returns a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Logout revokes the refresh token. Unknown tokens are reported as such so a
// replayed logout is visible to the caller.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return errors.Wrap(err, "delete refresh token")
	}
	return nil
}

// Refresh rotates a refresh token: the old token is revoked and a new pair is
// issued. The replacement refresh token keeps the original expiry so rotation
// cannot extend a session forever.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.signer.Verify(refreshToken, TokenRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, errors.Wrap(err, "get refresh token")
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}

	accessToken, err := s.signer.Sign(TokenAccess, u)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.signer.SignWithExpiry(TokenRefresh, u, stored.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Delete(ctx, refreshToken); err != nil && !errors.Is(err, ErrTokenNotFound) {
		return nil, errors.Wrap(err, "revoke refresh token")
	}
	if err := s.storeRefreshToken(ctx, newRefresh, u.ID); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// VerifyEmail confirms the account behind a verification token and returns a
// fresh token pair carrying the verified status.
func (s *Service) VerifyEmail(ctx context.Context, verifyToken string) (*User, *TokenPair, error) {
	claims, err := s.signer.Verify(verifyToken, TokenVerifyEmail)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get user")
	}
	if u.Verify == VerifyVerified {
		return nil, nil, ErrAlreadyVerified
	}
	if u.VerifyEmailToken != verifyToken {
		return nil, nil, ErrInvalidToken
	}

	verified, err := s.users.MarkVerified(ctx, u.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "mark verified")
	}

	pair, err := s.issueTokenPair(ctx, verified)
	if err != nil {
		return nil, nil, err
	}
	return verified, pair, nil
}

// ResendVerifyEmail issues a new verification token and re-sends the email.
func (s *Service) ResendVerifyEmail(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "get user")
	}
	if u.Verify == VerifyVerified {
		return ErrAlreadyVerified
	}

	token, err := s.signer.Sign(TokenVerifyEmail, u)
	if err != nil {
		return err
	}
	if err := s.users.SetVerifyEmailToken(ctx, u.ID, token); err != nil {
		return errors.Wrap(err, "store verify token")
	}
	if err := s.email.SendVerifyEmail(ctx, u.Email, token); err != nil {
		return errors.Wrap(err, "send verify email")
	}
	return nil
}

// ForgotPassword issues a reset token for the account behind the email. The
// same success is reported whether or not the account exists, so the endpoint
// cannot be used to probe for registered emails.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "get user")
	}

	token, err := s.signer.Sign(TokenForgotPassword, u)
	if err != nil {
		return err
	}
	if err := s.users.SetForgotPasswordToken(ctx, u.ID, token); err != nil {
		return errors.Wrap(err, "store reset token")
	}
	if err := s.email.SendResetPassword(ctx, u.Email, token); err != nil {
		return errors.Wrap(err, "send reset email")
	}
	return nil
}

// ResetPassword sets a new password for the account behind a valid reset
// token and invalidates the token.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.signer.Verify(resetToken, TokenForgotPassword)
	if err != nil {
		return ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return errors.Wrap(err, "get user")
	}
	if u.ForgotPasswordToken != resetToken {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return errors.Wrap(err, "update password")
	}
	return nil
}

// GetByID returns one account.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}

// ProfileUpdate holds the optional fields of a partial profile update. Nil
// fields are left untouched.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	Avatar      *string
}

// UpdateProfile applies a partial update to the account profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}

	updated, err := s.users.UpdateProfile(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return updated, nil
}

func (s *Service) issueTokenPair(ctx context.Context, u *User) (*TokenPair, error) {
	accessToken, err := s.signer.Sign(TokenAccess, u)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.signer.Sign(TokenRefresh, u)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, refreshToken, u.ID); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) storeRefreshToken(ctx context.Context, token, userID string) error {
	claims, err := s.signer.Verify(token, TokenRefresh)
	if err != nil {
		return errors.Wrap(err, "decode refresh token")
	}
	err = s.tokens.Insert(ctx, &RefreshToken{
		Token:     token,
		UserID:    userID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return errors.Wrap(err, "store refresh token")
	}
	return nil
}
