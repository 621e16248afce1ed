package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users
		(id, email, password, full_name, phone_number, avatar, role, verify, verify_email_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	userColumnsSQL = `id, email, password, full_name, phone_number, avatar, role, verify,
		verify_email_token, forgot_password_token, created_at, updated_at`

	getUserByIDSQL    = `SELECT ` + userColumnsSQL + ` FROM users WHERE id = $1`
	getUserByEmailSQL = `SELECT ` + userColumnsSQL + ` FROM users WHERE email = $1`

	setVerifyEmailTokenSQL = `UPDATE users SET verify_email_token = $2, updated_at = NOW()
		WHERE id = $1`

	markVerifiedSQL = `UPDATE users SET verify = 'verified', verify_email_token = '',
		updated_at = NOW() WHERE id = $1
		RETURNING ` + userColumnsSQL

	setForgotPasswordTokenSQL = `UPDATE users SET forgot_password_token = $2, updated_at = NOW()
		WHERE id = $1`

	updatePasswordSQL = `UPDATE users SET password = $2, forgot_password_token = '',
		updated_at = NOW() WHERE id = $1`

	updateProfileSQL = `UPDATE users SET full_name = $2, phone_number = $3, avatar = $4,
		updated_at = NOW() WHERE id = $1
		RETURNING ` + userColumnsSQL

	insertRefreshTokenSQL = `INSERT INTO refresh_tokens (token, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)`

	getRefreshTokenSQL = `SELECT token, user_id, issued_at, expires_at
		FROM refresh_tokens WHERE token = $1`

	deleteRefreshTokenSQL = `DELETE FROM refresh_tokens WHERE token = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new account. The unique index on email is the final
// arbiter for duplicate registrations.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		u.ID, u.Email, u.Password, u.FullName, u.PhoneNumber, u.Avatar,
		u.Role, u.Verify, u.VerifyEmailToken,
	)
	if err != nil {
		if pgErrCode(err, codeUniqueViolation) {
			return user.ErrEmailExists
		}
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}
	return nil
}

// GetByID returns a single account by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

// GetByEmail returns a single account by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, getUserByEmailSQL, email)
}

func (r *UserRepository) getOne(ctx context.Context, sql, arg string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// SetVerifyEmailToken stores a fresh verification token on the account.
func (r *UserRepository) SetVerifyEmailToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, setVerifyEmailTokenSQL, "setting verify token", id, token)
}

// MarkVerified flips the account to verified and clears the verification
// token so it cannot be replayed.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, markVerifiedSQL, id)
	if err != nil {
		return nil, fmt.Errorf("marking user %q verified: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("marking user %q verified: %w", id, err)
	}
	return &u, nil
}

// SetForgotPasswordToken stores a fresh reset token on the account.
func (r *UserRepository) SetForgotPasswordToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, setForgotPasswordTokenSQL, "setting reset token", id, token)
}

// UpdatePassword replaces the password hash and clears any pending reset
// token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, updatePasswordSQL, "updating password", id, passwordHash)
}

// UpdateProfile overwrites the editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *user.User) (*user.User, error) {
	rows, err := r.pool.Query(ctx, updateProfileSQL, u.ID, u.FullName, u.PhoneNumber, u.Avatar)
	if err != nil {
		return nil, fmt.Errorf("updating profile %q: %w", u.ID, err)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("updating profile %q: %w", u.ID, err)
	}
	return &updated, nil
}

func (r *UserRepository) exec(ctx context.Context, sql, what, id string, arg string) error {
	tag, err := r.pool.Exec(ctx, sql, id, arg)
	if err != nil {
		return fmt.Errorf("%s for user %q: %w", what, id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.FullName, &u.PhoneNumber, &u.Avatar,
		&u.Role, &u.Verify, &u.VerifyEmailToken, &u.ForgotPasswordToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

var _ user.TokenRepository = (*TokenRepository)(nil)

// TokenRepository implements user.TokenRepository backed by PostgreSQL.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a TokenRepository that uses the given pool.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Insert stores an issued refresh token.
func (r *TokenRepository) Insert(ctx context.Context, t *user.RefreshToken) error {
	_, err := r.pool.Exec(ctx, insertRefreshTokenSQL, t.Token, t.UserID, t.IssuedAt, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("inserting refresh token: %w", err)
	}
	return nil
}

// Get returns a stored refresh token, or user.ErrTokenNotFound when it was
// never issued or already revoked.
func (r *TokenRepository) Get(ctx context.Context, token string) (*user.RefreshToken, error) {
	rows, err := r.pool.Query(ctx, getRefreshTokenSQL, token)
	if err != nil {
		return nil, fmt.Errorf("getting refresh token: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (user.RefreshToken, error) {
		var t user.RefreshToken
		err := row.Scan(&t.Token, &t.UserID, &t.IssuedAt, &t.ExpiresAt)
		return t, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrTokenNotFound
		}
		return nil, fmt.Errorf("getting refresh token: %w", err)
	}
	return &t, nil
}

// Delete revokes a refresh token.
func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx, deleteRefreshTokenSQL, token)
	if err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrTokenNotFound
	}
	return nil
}
