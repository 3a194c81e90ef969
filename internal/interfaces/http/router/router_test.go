package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/savings/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterRegisterIsVariadic(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("groups", "/groups"), NewDomainGroup("goals", "/goals")).
		Register(NewDomainGroup("contributions", "/contributions"))

	assert.Len(t, r.registrars, 3)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	groups := NewDomainGroup("groups", "/groups")
	groups.GET("/discover", okHandler("discover"))
	r.Register(groups).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/groups/discover")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "discover", w.Body.String())

	w = serve(engine, http.MethodGet, "/groups/discover")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterMiddlewareAppliesToAPIOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", okHandler("ok"))

	var calls int
	r := NewRouter(engine).Use(func(c *gin.Context) {
		calls++
		c.Next()
	})
	goals := NewDomainGroup("goals", "/goals")
	goals.GET("/public", okHandler("public"))
	r.Register(goals).Setup()

	serve(engine, http.MethodGet, "/health")
	assert.Equal(t, 0, calls)

	serve(engine, http.MethodGet, "/api/v1/goals/public")
	assert.Equal(t, 1, calls)
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("contributions", "/contributions")
		assert.Equal(t, "contributions", g.Name())
		assert.Equal(t, "/contributions", g.Prefix())
	})

	t.Run("every method verb", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("goals", "/goals")
		g.GET("/:id", okHandler("get")).
			POST("", okHandler("post")).
			PUT("/:id", okHandler("put")).
			PATCH("/:id", okHandler("patch")).
			DELETE("/:id", okHandler("delete"))
		NewRouter(engine).Register(g).Setup()

		cases := []struct {
			method string
			path   string
			body   string
		}{
			{http.MethodGet, "/api/v1/goals/abc", "get"},
			{http.MethodPost, "/api/v1/goals", "post"},
			{http.MethodPut, "/api/v1/goals/abc", "put"},
			{http.MethodPatch, "/api/v1/goals/abc", "patch"},
			{http.MethodDelete, "/api/v1/goals/abc", "delete"},
		}
		for _, tc := range cases {
			w := serve(engine, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
			assert.Equal(t, tc.body, w.Body.String())
		}
	})

	t.Run("group middleware stays inside the group", func(t *testing.T) {
		engine := gin.New()
		denied := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }

		system := NewDomainGroup("system", "/system")
		system.GET("/ping", okHandler("pong"))
		system.Group("events", "/events").Use(denied).GET("/backlog", okHandler("backlog"))
		NewRouter(engine).Register(system).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/system/ping").Code)
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/system/events/backlog").Code)
	})

	t.Run("static and param segments coexist", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("groups", "/groups")
		g.GET("/invitations", okHandler("invitations")).
			GET("/:id", okHandler("group")).
			POST("/:id/invitations/:invitationId/accept", okHandler("accept"))
		NewRouter(engine).Register(g).Setup()

		assert.Equal(t, "invitations", serve(engine, http.MethodGet, "/api/v1/groups/invitations").Body.String())
		assert.Equal(t, "group", serve(engine, http.MethodGet, "/api/v1/groups/42").Body.String())
		assert.Equal(t, "accept", serve(engine, http.MethodPost, "/api/v1/groups/42/invitations/7/accept").Body.String())
	})
}

func TestSavingsRoutes(t *testing.T) {
	routesOf := func(engine *gin.Engine) map[string]bool {
		out := map[string]bool{}
		for _, ri := range engine.Routes() {
			out[ri.Method+" "+ri.Path] = true
		}
		return out
	}

	t.Run("registers the domain groups", func(t *testing.T) {
		engine := gin.New()
		registrars := SavingsRoutes(Handlers{}, RouteOptions{})
		require.Len(t, registrars, 6)
		NewRouter(engine).Register(registrars...).Setup()

		routes := routesOf(engine)
		for _, want := range []string{
			"POST /api/v1/auth/register",
			"POST /api/v1/auth/login",
			"GET /api/v1/users/me",
			"POST /api/v1/groups",
			"POST /api/v1/groups/:id/join",
			"GET /api/v1/groups/:id/contributions/stats",
			"POST /api/v1/goals/:id/contributions",
			"POST /api/v1/contributions",
			"POST /api/v1/contributions/:id/refund",
			"GET /api/v1/system/ping",
		} {
			assert.True(t, routes[want], "missing route %s", want)
		}
		assert.False(t, routes["GET /api/v1/system/events/backlog"], "event console needs a handler and a guard")
	})

	t.Run("event console mounts behind the operator guard", func(t *testing.T) {
		engine := gin.New()
		denied := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
		NewRouter(engine).Register(SavingsRoutes(
			Handlers{Delivery: handler.NewDeliveryHandler(nil)},
			RouteOptions{OperatorGuard: denied},
		)...).Setup()

		routes := routesOf(engine)
		for _, want := range []string{
			"GET /api/v1/system/events/dead",
			"POST /api/v1/system/events/dead/redeliver",
			"GET /api/v1/system/events/backlog",
			"GET /api/v1/system/events/trail/:aggregateId",
			"GET /api/v1/system/events/:id",
			"POST /api/v1/system/events/:id/redeliver",
		} {
			assert.True(t, routes[want], "missing route %s", want)
		}
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/system/events/backlog").Code)
	})

	t.Run("auth limiter wraps the auth group", func(t *testing.T) {
		engine := gin.New()
		limited := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }
		NewRouter(engine).Register(SavingsRoutes(Handlers{}, RouteOptions{AuthLimiter: limited})...).Setup()

		w := serve(engine, http.MethodPost, "/api/v1/auth/login")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestPublicPathsAreVersioned(t *testing.T) {
	base := NewRouter(gin.New()).BasePath()
	for _, p := range PublicPaths {
		assert.Contains(t, p, base+"/")
	}
}
