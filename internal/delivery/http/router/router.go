// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"guarita/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SessionHandler *handler.SessionHandler
	ContextHandler *handler.ContextHandler
	AuditHandler   *handler.AuditHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	sessionHandler *handler.SessionHandler
	contextHandler *handler.ContextHandler
	auditHandler   *handler.AuditHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		sessionHandler: params.SessionHandler,
		contextHandler: params.ContextHandler,
		auditHandler:   params.AuditHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api/v1")
	{
		api.POST("/session/unlock", r.sessionHandler.Unlock)
		api.POST("/session/end", r.sessionHandler.End)
		api.GET("/session", r.sessionHandler.Current)

		api.GET("/context", r.contextHandler.Get)
		api.POST("/context/health-check", r.contextHandler.Probe)

		api.GET("/audit/recent", r.auditHandler.Recent)
	}
}
