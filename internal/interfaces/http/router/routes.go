package router

import (
	"github.com/gin-gonic/gin"
	"github.com/savings/backend/internal/interfaces/http/handler"
)

// PublicPaths are the API routes served without a bearer token
var PublicPaths = []string{
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/api/v1/system/ping",
	"/api/v1/system/info",
}

// Handlers bundles the HTTP handlers of the savings API
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Group        *handler.GroupHandler
	Goal         *handler.GoalHandler
	Contribution *handler.ContributionHandler
	System       *handler.SystemHandler
	// Delivery is optional; its routes are only mounted with an OperatorGuard
	Delivery *handler.DeliveryHandler
}

// RouteOptions holds per-group middleware
type RouteOptions struct {
	// AuthLimiter throttles the credential endpoints
	AuthLimiter gin.HandlerFunc
	// OperatorGuard restricts the event delivery console to operators
	OperatorGuard gin.HandlerFunc
}

// SavingsRoutes returns the domain route groups of the API
func SavingsRoutes(h Handlers, opts RouteOptions) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth")
	if opts.AuthLimiter != nil {
		auth.Use(opts.AuthLimiter)
	}
	auth.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken).
		POST("/logout", h.Auth.Logout).
		PUT("/password", h.Auth.ChangePassword).
		POST("/deactivate", h.Auth.Deactivate)

	users := NewDomainGroup("users", "/users")
	users.GET("/me", h.User.Me).
		PATCH("/me", h.User.UpdateProfile).
		PATCH("/me/preferences", h.User.UpdatePreferences).
		GET("/me/achievements", h.User.Achievements).
		POST("/me/avatar/upload", h.User.RequestAvatarUpload).
		PUT("/me/avatar", h.User.ConfirmAvatar).
		GET("/:id", h.User.PublicProfile).
		GET("/:id/avatar", h.User.AvatarURL)

	groups := NewDomainGroup("groups", "/groups")
	groups.POST("", h.Group.Create).
		GET("", h.Group.ListMine).
		GET("/discover", h.Group.Discover).
		GET("/invitations", h.Group.PendingInvitations).
		GET("/:id", h.Group.Get).
		PATCH("/:id", h.Group.Update).
		DELETE("/:id", h.Group.Delete).
		POST("/:id/join", h.Group.Join).
		POST("/:id/leave", h.Group.Leave).
		POST("/:id/pause", h.Group.Pause).
		POST("/:id/resume", h.Group.Resume).
		POST("/:id/admins", h.Group.Promote).
		GET("/:id/stats", h.Group.Stats).
		POST("/:id/invitations", h.Group.Invite).
		POST("/:id/invitations/:invitationId/accept", h.Group.AcceptInvitation).
		POST("/:id/invitations/:invitationId/decline", h.Group.DeclineInvitation).
		GET("/:id/goals", h.Goal.ListByGroup).
		GET("/:id/contributions", h.Contribution.ListByGroup).
		GET("/:id/contributions/stats", h.Contribution.GroupStats)

	goals := NewDomainGroup("goals", "/goals")
	goals.POST("", h.Goal.Create).
		GET("", h.Goal.ListMine).
		GET("/public", h.Goal.ListPublic).
		GET("/overview", h.Goal.Overview).
		GET("/:id", h.Goal.Get).
		PATCH("/:id", h.Goal.Update).
		DELETE("/:id", h.Goal.Delete).
		POST("/:id/contributions", h.Goal.Contribute).
		GET("/:id/milestones", h.Goal.Milestones).
		POST("/:id/milestones", h.Goal.AddMilestone).
		POST("/:id/pause", h.Goal.Pause).
		POST("/:id/resume", h.Goal.Resume).
		POST("/:id/complete", h.Goal.Complete)

	contributions := NewDomainGroup("contributions", "/contributions")
	contributions.POST("", h.Contribution.Record).
		GET("", h.Contribution.ListMine).
		GET("/stats", h.Contribution.UserStats).
		GET("/:id", h.Contribution.Get).
		PATCH("/:id", h.Contribution.Update).
		POST("/:id/cancel", h.Contribution.Cancel).
		POST("/:id/verify", h.Contribution.Verify).
		POST("/:id/refund", h.Contribution.Refund)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	if h.Delivery != nil && opts.OperatorGuard != nil {
		system.Group("events", "/events").
			Use(opts.OperatorGuard).
			GET("/dead", h.Delivery.DeadLetters).
			POST("/dead/redeliver", h.Delivery.RedeliverDead).
			GET("/backlog", h.Delivery.Backlog).
			GET("/trail/:aggregateId", h.Delivery.Trail).
			GET("/:id", h.Delivery.Event).
			POST("/:id/redeliver", h.Delivery.Redeliver)
	}

	return []RouteRegistrar{auth, users, groups, goals, contributions, system}
}
