package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/notifier"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/timeslot"
)

// outageWindowDays is how far ahead active reservations are cancelled
// when a room goes out of service.
const outageWindowDays = 7

// RoomHandler bundles dependencies for room browsing and management.
type RoomHandler struct {
	Rooms        *repository.RoomRepo
	Reservations *repository.ReservationRepo
	Cache        *CacheInvalidator
}

func NewRoomHandler(rooms *repository.RoomRepo, res *repository.ReservationRepo, cache *CacheInvalidator) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Reservations: res, Cache: cache}
}

type roomReq struct {
	Name        string `json:"name"`
	Capacity    uint32 `json:"capacity"`
	Description string `json:"description"`
}

// validate trims the name and checks the field bounds, returning an
// error message or "".
func (req *roomReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if n := utf8.RuneCountInString(req.Name); n < 2 || n > 100 {
		return "name must be 2 to 100 characters"
	}
	if req.Capacity < 1 || req.Capacity > 1000 {
		return "capacity must be between 1 and 1000"
	}
	if utf8.RuneCountInString(req.Description) > 500 {
		return "description must be at most 500 characters"
	}
	return ""
}

type roomResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Capacity    uint32  `json:"capacity"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
}

func roomRespFrom(r model.Room) roomResp {
	return roomResp{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Status: r.Status, Description: r.Description}
}

// List returns every room regardless of status.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomRespFrom(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Available answers the availability search: which rooms are free for
// the whole of [start, end) on the given date.  All three query
// parameters are required.
func (h *RoomHandler) Available(c echo.Context) error {
	date, err := timeslot.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required in YYYY-MM-DD form"})
	}
	start, err := timeslot.ParseClock(c.QueryParam("start_time"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time is required in HH:MM form"})
	}
	end, err := timeslot.ParseClock(c.QueryParam("end_time"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time is required in HH:MM form"})
	}
	if start >= end {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be before end_time"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.ListAvailable(ctx, date, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomRespFrom(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a room (admin only).
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Rooms.Create(ctx, req.Name, req.Capacity, req.Description)
	if err != nil {
		if err == repository.ErrRoomNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	h.Cache.Invalidate(ctx)
	return c.JSON(http.StatusCreated, roomRespFrom(room))
}

// Update edits a room's name, capacity and description (admin only).
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.Update(ctx, id, req.Name, req.Capacity, req.Description)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrRoomNameExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}

	h.Cache.Invalidate(ctx)
	return c.JSON(http.StatusOK, roomRespFrom(room))
}

// Delete removes a room (admin only).  A room with upcoming active
// reservations cannot be deleted; take it out of service first.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrHasFutureReservations:
			return c.JSON(http.StatusConflict, echo.Map{"error": "room still has upcoming reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}

	h.Cache.Invalidate(ctx)
	return c.NoContent(http.StatusNoContent)
}

// OutOfService flags a room out of service and cancels its active
// reservations for the next seven days, in one transaction.  Owners of
// the cancelled bookings are notified after the commit.
func (h *RoomHandler) OutOfService(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tx, err := h.Rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Rooms.SetStatusTx(ctx, tx, id, model.RoomOutOfService); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	affected, err := h.Reservations.CancelUpcomingByRoomTx(ctx, tx, id, outageWindowDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel reservations failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}
	committed = true

	h.Cache.Invalidate(ctx)
	events := make([]queue.NotificationEvent, 0, len(affected))
	for _, d := range affected {
		events = append(events, notifier.RoomOutOfService(d))
	}
	go publishAll(events)

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "room is out of service",
		"cancelled_count": len(affected),
	})
}

// InService returns a room to the available status.
func (h *RoomHandler) InService(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.SetStatus(ctx, id, model.RoomAvailable); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}

	h.Cache.Invalidate(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "room is back in service"})
}
