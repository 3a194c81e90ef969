// Package identity handles registration, authentication and the user's own profile.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/application/uow"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrTokenRevoked is returned when a presented token has been blacklisted
var ErrTokenRevoked = shared.NewKindError(shared.KindAuthorizationDenied, "TOKEN_REVOKED", "Token has been revoked")

// ErrInvalidRefreshToken is returned when a refresh token cannot be exchanged
var ErrInvalidRefreshToken = shared.NewKindError(shared.KindAuthorizationDenied, "INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")

// AuthService handles authentication operations
type AuthService struct {
	scope      uow.TransactionScope
	users      identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	scope uow.TransactionScope,
	users identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		scope:      scope,
		users:      users,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account and logs it in. Username and email must be unused.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var user *identity.User
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		users := repos.Users()
		taken, err := users.ExistsByUsername(ctx, input.Username)
		if err != nil {
			return err
		}
		if taken {
			return identity.ErrUsernameTaken
		}
		taken, err = users.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
		if err != nil {
			return err
		}
		if taken {
			return identity.ErrEmailTaken
		}

		u, err := identity.NewUser(input.Username, input.Email, input.Password, input.FirstName, input.LastName)
		if err != nil {
			return err
		}
		u.RecordLogin(s.now())
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		user = u
		return uow.RecordEvents(ctx, repos, u)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return s.issue(user)
}

// Login authenticates by username or email. Unknown logins and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByLogin(ctx, input.Login)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			s.logger.Warn("login for unknown user", zap.String("login", input.Login))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrUserInactive
	}

	user.RecordLogin(s.now())
	if err := s.users.Save(ctx, user); err != nil {
		// The login itself succeeded; only the timestamp is lost.
		s.logger.Error("failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the (still active) user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, identity.ErrUserInactive
	}

	pair, old, err := s.jwtService.RefreshTokenPair(refreshToken, user.Username)
	if err != nil {
		if errors.Is(err, auth.ErrMaxRefreshExceeded) {
			return nil, shared.NewKindError(shared.KindAuthorizationDenied, "REFRESH_LIMIT_REACHED", "Session expired, please log in again")
		}
		return nil, ErrInvalidRefreshToken
	}
	if err := s.blacklist.Revoke(ctx, old.ID, old.GetRemainingTTL()); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &AuthResult{User: resp, Tokens: pair}, nil
}

// Logout revokes the access token and, when presented, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessClaims != nil {
		if err := s.blacklist.Revoke(ctx, input.AccessClaims.ID, input.AccessClaims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	if input.RefreshToken != "" {
		if claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken); err == nil {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Authenticate validates an access token and rejects revoked ones
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ChangePassword replaces the password and revokes every token issued before
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		user, err := repos.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
			return err
		}
		return repos.Users().Save(ctx, user)
	})
	if err != nil {
		return err
	}

	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke tokens after password change", zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.logger.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

// Deactivate soft-deletes the account after re-checking the password.
// Group memberships and contributions are left untouched.
func (s *AuthService) Deactivate(ctx context.Context, userID uuid.UUID, password string) error {
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		user, err := repos.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !user.VerifyPassword(password) {
			return identity.ErrInvalidCredentials
		}
		if err := user.Deactivate(); err != nil {
			return err
		}
		if err := repos.Users().Save(ctx, user); err != nil {
			return err
		}
		return uow.RecordEvents(ctx, repos, user)
	})
	if err != nil {
		return err
	}

	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("failed to revoke tokens after deactivation", zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.logger.Info("user deactivated", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, issuedAt)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{UserID: user.ID, Username: user.Username})
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return &AuthResult{User: ToUserResponse(user), Tokens: pair}, nil
}
