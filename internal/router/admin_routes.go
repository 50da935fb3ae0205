package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// RegisterAdmin registers admin-only endpoints under /v1: room
// management, account management, priority booking and the stats
// dashboards.
func RegisterAdmin(e *echo.Echo, res *handler.ReservationHandler, rooms *handler.RoomHandler,
	accounts *handler.UserHandler, jwtSecret string, users *repository.UserRepo) {

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret, users),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Reservations ----
	g.GET("/reservations", res.ListAll)
	g.POST("/reservations/priority", res.PriorityCreate)
	g.GET("/reservations/stats", res.Stats)

	// ---- Rooms ----
	g.POST("/rooms", rooms.Create)
	g.PUT("/rooms/:id", rooms.Update)
	g.DELETE("/rooms/:id", rooms.Delete)
	g.PUT("/rooms/:id/out-of-service", rooms.OutOfService)
	g.PUT("/rooms/:id/in-service", rooms.InService)

	// ---- Accounts ----
	g.GET("/users", accounts.List)
	g.GET("/users/stats", accounts.Stats)
	g.GET("/users/:id", accounts.Get)
	g.POST("/users", accounts.Create)
	g.PUT("/users/:id", accounts.Update)
	g.DELETE("/users/:id", accounts.Delete)
}
