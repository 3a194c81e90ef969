package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow/uowtest"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/auth"
	"github.com/savings/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "Passw0rd1"

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// MockTokenBlacklist is a mock implementation of auth.TokenBlacklist
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return m.Called(ctx, jti, ttl).Error(0)
}

func (m *MockTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	return m.Called(ctx, userID, ttl).Error(0)
}

func (m *MockTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, issuedAt)
	return args.Bool(0), args.Error(1)
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "savings-test",
		MaxRefreshCount:        5,
	})
}

func newAuthService(t *testing.T, blacklist auth.TokenBlacklist) (*AuthService, *uowtest.Scope) {
	t.Helper()
	scope := uowtest.NewScope()
	svc := NewAuthService(scope, scope.Users, newTestJWT(), blacklist, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc, scope
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser("saver", "saver@example.com", testPassword, "Sam", "Saver")
	require.NoError(t, err)
	u.PullDomainEvents()
	return u
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user and issues tokens", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("ExistsByUsername", ctx, "saver").Return(false, nil)
		scope.Users.On("ExistsByEmail", ctx, "saver@example.com").Return(false, nil)
		scope.Users.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := svc.Register(ctx, RegisterInput{
			Username: "saver", Email: "Saver@Example.com", Password: testPassword,
			FirstName: "Sam", LastName: "Saver",
		})
		require.NoError(t, err)

		assert.Equal(t, "saver", result.User.Username)
		assert.Equal(t, "saver@example.com", result.User.Email)
		assert.Equal(t, 1, result.User.Level)
		assert.True(t, result.User.TotalSaved.IsZero())
		require.NotNil(t, result.User.LastLoginAt)
		assert.Equal(t, testNow, *result.User.LastLoginAt)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.Equal(t, []string{identity.EventTypeUserRegistered}, scope.EventTypes())
		scope.AssertExpectations(t)
	})

	t.Run("username taken", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("ExistsByUsername", ctx, "saver").Return(true, nil)

		_, err := svc.Register(ctx, RegisterInput{Username: "saver", Email: "a@b.co", Password: testPassword, FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, identity.ErrUsernameTaken)
		assert.Equal(t, shared.KindConflictingRequest, shared.KindOf(err))
		assert.Empty(t, scope.Events())
		scope.Users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("ExistsByUsername", ctx, "saver").Return(false, nil)
		scope.Users.On("ExistsByEmail", ctx, "a@b.co").Return(true, nil)

		_, err := svc.Register(ctx, RegisterInput{Username: "saver", Email: "a@b.co", Password: testPassword, FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, identity.ErrEmailTaken)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("ExistsByUsername", ctx, "saver").Return(false, nil)
		scope.Users.On("ExistsByEmail", ctx, "a@b.co").Return(false, nil)

		_, err := svc.Register(ctx, RegisterInput{Username: "saver", Email: "a@b.co", Password: "password", FirstName: "A", LastName: "B"})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		scope.Users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)

	t.Run("success records the login", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("FindByLogin", ctx, "saver").Return(user, nil)
		scope.Users.On("Save", ctx, user).Return(nil)

		result, err := svc.Login(ctx, LoginInput{Login: "saver", Password: testPassword})
		require.NoError(t, err)

		claims, err := svc.Authenticate(ctx, result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "saver", claims.Username)
		require.NotNil(t, user.LastLoginAt)
		assert.Equal(t, testNow, *user.LastLoginAt)
	})

	t.Run("save failure does not fail the login", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("FindByLogin", ctx, "saver").Return(user, nil)
		scope.Users.On("Save", ctx, user).Return(shared.ErrConcurrencyConflict)

		result, err := svc.Login(ctx, LoginInput{Login: "saver", Password: testPassword})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("FindByLogin", ctx, "saver").Return(user, nil)

		_, err := svc.Login(ctx, LoginInput{Login: "saver", Password: "Wrong1234"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		scope.Users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown user looks like a wrong password", func(t *testing.T) {
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("FindByLogin", ctx, "ghost").Return(nil, identity.ErrUserNotFound)

		_, err := svc.Login(ctx, LoginInput{Login: "ghost", Password: testPassword})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("deactivated user", func(t *testing.T) {
		inactive := newTestUser(t)
		inactive.IsActive = false
		svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
		scope.Users.On("FindByLogin", ctx, "saver").Return(inactive, nil)

		_, err := svc.Login(ctx, LoginInput{Login: "saver", Password: testPassword})
		assert.ErrorIs(t, err, identity.ErrUserInactive)
	})
}

func TestAuthService_RefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())
	scope.Users.On("FindByLogin", ctx, "saver").Return(user, nil)
	scope.Users.On("Save", ctx, user).Return(nil)
	scope.Users.On("FindByID", ctx, user.ID).Return(user, nil)

	login, err := svc.Login(ctx, LoginInput{Login: "saver", Password: testPassword})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)
	assert.Equal(t, user.ID, refreshed.User.ID)

	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked, "a rotated refresh token cannot be replayed")

	_, err = svc.Refresh(ctx, refreshed.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, auth.NewInMemoryTokenBlacklist())

	_, err := svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_RefreshDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	svc, scope := newAuthService(t, auth.NewInMemoryTokenBlacklist())

	pair, err := newTestJWT().GenerateTokenPair(auth.Subject{UserID: user.ID, Username: user.Username})
	require.NoError(t, err)
	user.IsActive = false
	scope.Users.On("FindByID", ctx, user.ID).Return(user, nil)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, identity.ErrUserInactive)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, auth.NewInMemoryTokenBlacklist())

	pair, err := newTestJWT().GenerateTokenPair(auth.Subject{UserID: uuid.New(), Username: "saver"})
	require.NoError(t, err)
	claims, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, LogoutInput{AccessClaims: claims, RefreshToken: pair.RefreshToken}))

	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes earlier tokens", func(t *testing.T) {
		user := newTestUser(t)
		blacklist := new(MockTokenBlacklist)
		svc, scope := newAuthService(t, blacklist)
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
		scope.Users.On("Save", ctx, user).Return(nil)
		blacklist.On("RevokeUser", ctx, user.ID.String(), 24*time.Hour).Return(nil)

		err := svc.ChangePassword(ctx, user.ID, ChangePasswordInput{OldPassword: testPassword, NewPassword: "N3wPassword"})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("N3wPassword"))
		blacklist.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		user := newTestUser(t)
		blacklist := new(MockTokenBlacklist)
		svc, scope := newAuthService(t, blacklist)
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)

		err := svc.ChangePassword(ctx, user.ID, ChangePasswordInput{OldPassword: "Wrong1234", NewPassword: "N3wPassword"})
		require.Error(t, err)
		scope.Users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		blacklist.AssertNotCalled(t, "RevokeUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("soft deletes and revokes", func(t *testing.T) {
		user := newTestUser(t)
		blacklist := new(MockTokenBlacklist)
		svc, scope := newAuthService(t, blacklist)
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)
		scope.Users.On("Save", ctx, user).Return(nil)
		blacklist.On("RevokeUser", ctx, user.ID.String(), 24*time.Hour).Return(nil)

		require.NoError(t, svc.Deactivate(ctx, user.ID, testPassword))
		assert.False(t, user.IsActive)
		assert.Equal(t, []string{identity.EventTypeUserDeactivated}, scope.EventTypes())
		blacklist.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		user := newTestUser(t)
		svc, scope := newAuthService(t, new(MockTokenBlacklist))
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)

		err := svc.Deactivate(ctx, user.ID, "Wrong1234")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		assert.True(t, user.IsActive)
	})

	t.Run("already deactivated", func(t *testing.T) {
		user := newTestUser(t)
		user.IsActive = false
		svc, scope := newAuthService(t, new(MockTokenBlacklist))
		scope.Users.On("FindByIDForUpdate", ctx, user.ID).Return(user, nil)

		err := svc.Deactivate(ctx, user.ID, testPassword)
		assert.ErrorIs(t, err, identity.ErrUserInactive)
	})
}
