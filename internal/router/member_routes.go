package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// RegisterMember registers the endpoints every authenticated account
// can reach, member and admin alike: booking, browsing rooms and the
// notification feed.  The cacheMW middleware, when non-nil, is applied
// to the room read routes only; booking mutations invalidate it.
func RegisterMember(e *echo.Echo, res *handler.ReservationHandler, rooms *handler.RoomHandler,
	notes *handler.NotificationHandler, jwtSecret string, users *repository.UserRepo,
	cacheMW echo.MiddlewareFunc) {

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret, users),
		middleware.RequireRole(model.RoleAdmin, model.RoleMember),
	)

	// ---- Reservations ----
	g.POST("/reservations", res.Create)
	g.GET("/reservations/mine", res.ListMine)
	g.DELETE("/reservations/:id", res.Cancel)

	// ---- Rooms (read only at this level) ----
	if cacheMW != nil {
		g.GET("/rooms", rooms.List, cacheMW)
		g.GET("/rooms/available", rooms.Available, cacheMW)
	} else {
		g.GET("/rooms", rooms.List)
		g.GET("/rooms/available", rooms.Available)
	}
	g.GET("/rooms/:id/reservations", res.ListByRoom)

	// ---- Notifications ----
	g.GET("/notifications", notes.ListMine)
	g.PUT("/notifications/:id/read", notes.MarkRead)
}
