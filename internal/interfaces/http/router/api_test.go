package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appevent "github.com/savings/backend/internal/application/event"
	goalapp "github.com/savings/backend/internal/application/goal"
	groupapp "github.com/savings/backend/internal/application/group"
	"github.com/savings/backend/internal/application/identity"
	"github.com/savings/backend/internal/application/ledger"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/infrastructure/auth"
	"github.com/savings/backend/internal/infrastructure/config"
	"github.com/savings/backend/internal/infrastructure/event"
	"github.com/savings/backend/internal/infrastructure/persistence"
	"github.com/savings/backend/internal/interfaces/http/dto"
	"github.com/savings/backend/internal/interfaces/http/handler"
	"github.com/savings/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	middleware.SetupValidator()
}

// envelope mirrors dto.Response with the payload left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(db, event.NewOutboxPublisher(event.NewSavingsSerializer()))
	users := persistence.NewGormUserRepository(db)
	groups := persistence.NewGormGroupRepository(db)
	goals := persistence.NewGormGoalRepository(db)
	contributions := persistence.NewGormContributionRepository(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "api-test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "savings-test",
		MaxRefreshCount:        3,
	})
	authService := identity.NewAuthService(scope, users, jwtService, auth.NewInMemoryTokenBlacklist(), log)

	h := Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(identity.NewProfileService(scope, users, nil, identity.ProfileConfig{}, log)),
		Group:        handler.NewGroupHandler(groupapp.NewService(scope, groups, users, log)),
		Goal:         handler.NewGoalHandler(goalapp.NewService(scope, goals, groups, log)),
		Contribution: handler.NewContributionHandler(ledger.NewService(scope, contributions, groups, ledger.DefaultConfig(), log)),
		System:       handler.NewSystemHandler("savings-backend", "test", nil),
		Delivery:     handler.NewDeliveryHandler(appevent.NewDeliveryService(event.NewGormOutboxRepository(db), log)),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	NewRouter(engine).
		Use(middleware.Auth(middleware.AuthConfig{Authenticator: authService, SkipPaths: PublicPaths})).
		Register(SavingsRoutes(h, RouteOptions{OperatorGuard: middleware.RequireUsers([]uuid.UUID{uuid.New()})})...).
		Setup()

	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testAPI) register(username string) (token string, userID uuid.UUID) {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Error)

	var result identity.AuthResult
	require.NoError(a.t, json.Unmarshal(env.Data, &result))
	return result.Tokens.AccessToken, result.User.ID
}

func (a *testAPI) createGroup(token string) groupapp.GroupResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/groups", token, gin.H{
		"name":          "Goa trip",
		"privacy":       "public",
		"total_goal":    "1000",
		"goal_deadline": time.Now().AddDate(0, 6, 0).UTC().Format(time.RFC3339),
	})
	require.Equal(a.t, http.StatusCreated, status, env.Error)

	var g groupapp.GroupResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &g))
	return g
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodGet, "/api/v1/groups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)

	status, env = api.do(http.MethodGet, "/api/v1/groups", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrCodeTokenInvalid, env.Error.Code)

	status, _ = api.do(http.MethodGet, "/api/v1/system/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_RegisterLoginAndLogout(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("asha")

	status, env := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "asha",
		"email":    "other@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"login": "asha@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, userID, decodeData[identity.AuthResult](t, env).User.ID)

	status, env = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"login": "asha", "password": "wrong-horse"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	status, env = api.do(http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "asha", decodeData[identity.UserResponse](t, env).Username)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", env.Error.Code)
}

func TestAPI_ContributionFlow(t *testing.T) {
	api := newTestAPI(t)
	token, userID := api.register("ravi")
	g := api.createGroup(token)
	assert.Equal(t, 1, g.MemberCount)

	record := gin.H{"group_id": g.ID.String(), "amount": "250.00"}
	status, env := api.do(http.MethodPost, "/api/v1/contributions", token, record)
	require.Equal(t, http.StatusCreated, status, env.Error)
	first := decodeData[ledger.ContributionResponse](t, env)
	assert.Equal(t, userID, first.UserID)
	assert.True(t, first.GroupProgressBefore.IsZero())
	assert.True(t, decimal.NewFromInt(25).Equal(first.GroupProgressAfter), "250 of 1000 is 25%%, got %s", first.GroupProgressAfter)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/stats", g.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	stats := decodeData[groupapp.StatsResponse](t, env)
	assert.True(t, decimal.NewFromInt(250).Equal(stats.CurrentAmount))
	assert.Equal(t, int64(1), stats.TotalContributions)

	status, env = api.do(http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.NewFromInt(250).Equal(decodeData[identity.UserResponse](t, env).TotalSaved))

	status, env = api.do(http.MethodPost, fmt.Sprintf("/api/v1/contributions/%s/cancel", first.ID), token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, contribution.StatusCancelled, decodeData[ledger.ContributionResponse](t, env).Status)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s", g.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeData[groupapp.GroupResponse](t, env).CurrentAmount.IsZero())

	status, env = api.do(http.MethodGet, "/api/v1/contributions?status=cancelled", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
}

func TestAPI_ContributionRequestKeyReplays(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("meera")
	g := api.createGroup(token)

	send := func() (int, envelope) {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(gin.H{"group_id": g.ID.String(), "amount": "40"}))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(handler.RequestKeyHeader, "salary-march")
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return w.Code, env
	}

	status, env := send()
	require.Equal(t, http.StatusCreated, status, env.Error)
	first := decodeData[ledger.ContributionResponse](t, env)

	status, env = send()
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.Equal(t, first.ID, decodeData[ledger.ContributionResponse](t, env).ID)

	status, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/stats", g.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.NewFromInt(40).Equal(decodeData[groupapp.StatsResponse](t, env).CurrentAmount))
}

func TestAPI_ContributionRejections(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	outsiderToken, _ := api.register("outsider")
	g := api.createGroup(ownerToken)

	status, env := api.do(http.MethodPost, "/api/v1/contributions", ownerToken, gin.H{"group_id": g.ID.String(), "amount": "0"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	status, env = api.do(http.MethodPost, "/api/v1/contributions", outsiderToken, gin.H{"group_id": g.ID.String(), "amount": "10"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, env.Success)

	status, _ = api.do(http.MethodPost, "/api/v1/contributions", ownerToken, gin.H{"group_id": uuid.NewString(), "amount": "10"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodGet, "/api/v1/contributions/not-a-uuid", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_JoinPublicGroup(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("founder")
	memberToken, _ := api.register("joiner")
	g := api.createGroup(ownerToken)

	status, env := api.do(http.MethodGet, "/api/v1/groups/discover", memberToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]groupapp.GroupResponse](t, env), 1)

	status, env = api.do(http.MethodPost, fmt.Sprintf("/api/v1/groups/%s/join", g.ID), memberToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	joined := decodeData[groupapp.GroupResponse](t, env)
	assert.Equal(t, 2, joined.MemberCount)

	status, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/groups/%s/join", g.ID), memberToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, env = api.do(http.MethodGet, "/api/v1/groups", memberToken, nil)
	require.Equal(t, http.StatusOK, status)
	mine := decodeData[[]groupapp.GroupResponse](t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, g.ID, mine[0].ID)

	status, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/groups/%s/pause", g.ID), memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_EventConsoleRequiresOperator(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("curious")

	status, env := api.do(http.MethodGet, "/api/v1/system/events/backlog", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, dto.ErrCodeForbidden, env.Error.Code)
}
