package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/handlers"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers   *handlers.Provider
	authSecret string
	users      user.Repository
}

func NewRoutes(provider *handlers.Provider, authSecret string, users user.Repository) *Routes {
	return &Routes{
		handlers:   provider,
		authSecret: authSecret,
		users:      users,
	}
}

// Register attaches all v1 routes under the /v1 prefix. Three tiers:
// public (shared chats), secret-gated (the web tier calls without a
// forwarded user), and principal-gated, with the admin gate stacked on
// top for admin surfaces.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	// Shared chats are world readable by slug.
	group.GET("/shared/:slug", r.handlers.Chat.GetShared)

	secret := group.Group("", middlewares.Auth(r.authSecret, r.users))
	// Signup logging happens before any account exists.
	secret.POST("/auth/log-signup-request", r.handlers.Signup.Log)

	authed := secret.Group("", middlewares.RequirePrincipal())
	authed.POST("/entities", r.handlers.Entity.Create)
	authed.PUT("/entities/:id", r.handlers.Entity.Update)
	authed.GET("/entities/:id/memory", r.handlers.Memory.List)
	authed.POST("/entities/:id/memory", r.handlers.Memory.Create)
	authed.PUT("/entities/:id/memory", r.handlers.Memory.Import)
	authed.DELETE("/entities/:id/memory", r.handlers.Memory.Clear)
	authed.GET("/entities/:id/memory/export", r.handlers.Memory.Export)
	authed.POST("/entities/:id/memory/bulk-delete", r.handlers.Memory.BulkDelete)
	authed.PUT("/entities/:id/memory/:memId", r.handlers.Memory.Update)
	authed.DELETE("/entities/:id/memory/:memId", r.handlers.Memory.Delete)

	authed.GET("/chats", r.handlers.Chat.List)
	authed.POST("/chats", r.handlers.Chat.Create)
	authed.GET("/chats/:id", r.handlers.Chat.Get)
	authed.DELETE("/chats/:id", r.handlers.Chat.Delete)
	authed.POST("/chats/:id/messages", r.handlers.Chat.AddMessage)
	authed.POST("/chats/:id/copy", r.handlers.Chat.Copy)
	authed.GET("/chats/:id/export", r.handlers.Chat.Export)
	authed.POST("/chats/:id/share", r.handlers.Chat.Share)
	authed.DELETE("/chats/:id/share", r.handlers.Chat.Unshare)
	authed.POST("/chats/:id/clear", r.handlers.Chat.Clear)

	authed.POST("/feedback", r.handlers.Feedback.Submit)
	authed.GET("/tools", r.handlers.Catalog.Tools)
	authed.GET("/voices/elevenlabs", r.handlers.Catalog.Voices)
	authed.GET("/models", r.handlers.Catalog.Models)

	// Nested under the secret tier, not the principal tier, so the
	// ADMIN_BYPASS escape hatch works without a forwarded user.
	admin := secret.Group("", middlewares.RequireAdmin())
	admin.GET("/admin/users", r.handlers.User.List)
	admin.PATCH("/users/:id/role", r.handlers.User.SetRole)
	admin.PATCH("/users/:id/block", r.handlers.User.SetBlocked)
	admin.DELETE("/admin/users/:id/purge", r.handlers.User.Purge)

	admin.GET("/admin/entities", r.handlers.Entity.ListSummaries)
	admin.DELETE("/admin/entities/:id/delete", r.handlers.Entity.Delete)
	admin.POST("/admin/entities/purge-orphaned", r.handlers.Entity.PurgeOrphaned)

	admin.GET("/admin/feedback", r.handlers.Feedback.List)
	admin.DELETE("/admin/feedback/:id/delete", r.handlers.Feedback.Delete)

	admin.GET("/admin/signup-requests", r.handlers.Signup.List)
	admin.POST("/signup-requests/:id/approve", r.handlers.Signup.Approve)
	admin.DELETE("/admin/signup-requests/:id/delete", r.handlers.Signup.Delete)

	admin.GET("/admin/pulse", r.handlers.Pulse.List)
	admin.GET("/admin/operations/:id", r.handlers.Operation.Get)
	admin.GET("/queues", r.handlers.Catalog.Queues)
}
