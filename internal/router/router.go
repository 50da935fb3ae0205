package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// RegisterRoutes registers routes that never require authentication.
// Currently that is only the health probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  Login and refresh
// live under /v1/auth without middleware; /v1/me, the password change
// and the all-sessions logout require a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout with a refresh token in the body needs no access token;
	// the revoke-all variant goes through the protected /v1/logout.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret, users))
	auth.GET("/me", a.Me)
	auth.PUT("/me/password", a.ChangePassword)
	auth.POST("/logout", a.Logout)
}
