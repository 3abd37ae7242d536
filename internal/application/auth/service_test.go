package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/account"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// memoryUsers is an in-memory account.Repository.
type memoryUsers struct {
	byID    map[uuid.UUID]*account.User
	byEmail map[string]*account.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:    make(map[uuid.UUID]*account.User),
		byEmail: make(map[string]*account.User),
	}
}

func (m *memoryUsers) Create(_ context.Context, user *account.User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return apperrors.Newf(apperrors.ErrCodeEmailAlreadyExists, "email %s is already registered", user.Email)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.byID[user.ID] = &cp
	m.byEmail[user.Email] = &cp
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*account.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeNotFound, "user %s not found", id)
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*account.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeNotFound, "user %s not found", email)
	}
	cp := *u
	return &cp, nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
}

func newTestService() (*Service, *memoryUsers) {
	users := newMemoryUsers()
	return NewService(users, testAuthConfig(), logging.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "Alice@Example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int64(1800), tokens.ExpiresIn)

	// The stored hash is not the password.
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	loggedIn, _, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice@example.com", "another password")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEmailAlreadyExists))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "not-an-email", "long enough password")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, _, err = svc.Register(ctx, "alice@example.com", "short")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong password")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidCredentials))

	// Unknown account reports the same code.
	_, _, err = svc.Login(ctx, "bob@example.com", "whatever pass")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidCredentials))
}

func TestVerifyAccessToken(t *testing.T) {
	svc, _ := newTestService()
	user, tokens, err := svc.Register(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	userID, err := svc.VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRefreshTokenCannotActAsAccess(t *testing.T) {
	svc, _ := newTestService()
	_, tokens, err := svc.Register(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(tokens.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTokenInvalid))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	user, tokens, err := svc.Register(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	userID, err := svc.VerifyAccess(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService()
	_, tokens, err := svc.Register(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTokenInvalid))
}

func TestExpiredTokenRejected(t *testing.T) {
	users := newMemoryUsers()
	svc := NewService(users, testAuthConfig(), logging.NewNop())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	_, tokens, err := svc.Register(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	// Verification at the real present sees a token issued two hours ago
	// with a 30 minute lifetime.
	svc.now = time.Now
	_, err = svc.VerifyAccess(tokens.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTokenInvalid))
}
