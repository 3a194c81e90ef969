package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/auth"
	"github.com/savings/backend/internal/infrastructure/logger"
	"github.com/savings/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set after a successful authentication
const (
	ClaimsKey = "jwt_claims"
	UserIDKey = "user_id"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator validates an access token, including revocation
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	Authenticator Authenticator
	// SkipPaths are exact paths served without a token
	SkipPaths []string
	// SkipPathPrefixes are path prefixes served without a token
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

func (cfg AuthConfig) skip(path string) bool {
	return slices.Contains(cfg.SkipPaths, path) || hasAnyPrefix(path, cfg.SkipPathPrefixes)
}

// Auth requires a valid bearer access token. The caller's id is stored under
// UserIDKey and attached to the request logger.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if cfg.skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			code, message := authFailure(err)
			if code == dto.ErrCodeUnauthorized {
				// neither a token problem nor a revocation: the blacklist is unreachable
				log.Error("authentication backend failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			} else {
				log.Debug("authentication rejected", zap.String("code", code), zap.String("path", c.Request.URL.Path))
			}
			abortWithError(c, http.StatusUnauthorized, code, message)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func authFailure(err error) (code, message string) {
	var de *shared.DomainError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.As(err, &de):
		return de.Code, de.Message
	}
	return dto.ErrCodeUnauthorized, "Authentication required"
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)

	ctx := c.Request.Context()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

// GetClaims returns the authenticated claims or nil
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(UserIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireUsers lets only the listed users through, answering 403 otherwise.
// It must run after Auth.
func RequireUsers(allowed []uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetUserID(c)
		if !ok || !slices.Contains(allowed, id) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access to this resource is forbidden")
			return
		}
		c.Next()
	}
}
