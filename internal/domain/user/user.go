package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailExists is returned when registering an already-taken email.
	ErrEmailExists = errors.New("email already exists")
	// ErrInvalidCredentials is returned for a wrong email/password pair.
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	// ErrNotVerified is returned when an operation requires a verified email.
	ErrNotVerified = errors.New("email is not verified")
	// ErrAlreadyVerified is returned when re-verifying a verified account.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrTokenNotFound is returned for an unknown or revoked refresh token.
	ErrTokenNotFound = errors.New("refresh token not found")
)

// Role separates storefront customers from catalog administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// VerifyStatus tracks email verification.
type VerifyStatus string

const (
	VerifyUnverified VerifyStatus = "unverified"
	VerifyVerified   VerifyStatus = "verified"
)

// User is a storefront account. Password holds the bcrypt hash, never the
// plaintext.
type User struct {
	ID                  string
	Email               string
	Password            string
	FullName            string
	PhoneNumber         string
	Avatar              string
	Role                Role
	Verify              VerifyStatus
	VerifyEmailToken    string
	ForgotPasswordToken string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Public strips the fields that never leave the server.
func (u User) Public() User {
	u.Password = ""
	u.VerifyEmailToken = ""
	u.ForgotPasswordToken = ""
	return u
}

// RefreshToken is a persisted refresh token; deleting the row revokes it.
type RefreshToken struct {
	Token     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetVerifyEmailToken(ctx context.Context, id, token string) error
	MarkVerified(ctx context.Context, id string) (*User, error)
	SetForgotPasswordToken(ctx context.Context, id, token string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfile(ctx context.Context, u *User) (*User, error)
}

// TokenRepository stores issued refresh tokens.
type TokenRepository interface {
	Insert(ctx context.Context, t *RefreshToken) error
	Get(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
}

// EmailSender delivers account emails. Delivery is external to this core; the
// default implementation only logs.
type EmailSender interface {
	SendVerifyEmail(ctx context.Context, email, token string) error
	SendResetPassword(ctx context.Context, email, token string) error
}
