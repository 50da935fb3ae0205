package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/notifier"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/timeslot"
)

// ReservationHandler bundles dependencies for the booking endpoints.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Rooms        *repository.RoomRepo
	Cache        *CacheInvalidator
}

func NewReservationHandler(res *repository.ReservationRepo, rooms *repository.RoomRepo, cache *CacheInvalidator) *ReservationHandler {
	return &ReservationHandler{Reservations: res, Rooms: rooms, Cache: cache}
}

type createReservationReq struct {
	RoomID    uint64 `json:"room_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// bindSlot validates the request body into a Slot, writing the error
// response itself when validation fails.
func (h *ReservationHandler) bindSlot(c echo.Context) (timeslot.Slot, bool) {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		return timeslot.Slot{}, false
	}
	slot, err := timeslot.NewSlot(req.RoomID, req.Date, req.StartTime, req.EndTime, req.Reason)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		return timeslot.Slot{}, false
	}
	if slot.InPast(time.Now()) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": timeslot.ErrPastDate.Error()})
		return timeslot.Slot{}, false
	}
	return slot, true
}

// fetchRoom loads the target room, writing the 404/500 response itself
// when that fails.
func (h *ReservationHandler) fetchRoom(c echo.Context, ctx context.Context, roomID uint64) (model.Room, bool) {
	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.Room{}, false
	}
	return room, true
}

// Create books a slot for the authenticated account.  An overlapping
// active reservation for the same room and date yields 409; abutting
// intervals are fine.
func (h *ReservationHandler) Create(c echo.Context) error {
	slot, ok := h.bindSlot(c)
	if !ok {
		return nil
	}
	userID, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, ok := h.fetchRoom(c, ctx, slot.RoomID)
	if !ok {
		return nil
	}
	if room.Status != model.RoomAvailable {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room is not available for booking"})
	}

	d, err := h.Reservations.Create(ctx, userID, slot)
	if err != nil {
		if err == repository.ErrSlotTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "time slot already reserved"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}

	h.Cache.Invalidate(ctx)
	go func(ev queue.NotificationEvent) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = notifier.Publish(pubCtx, ev)
	}(notifier.ReservationConfirmed(d))

	return c.JSON(http.StatusCreated, d)
}

// PriorityCreate books a slot for an admin, cancelling whatever active
// reservations stood in the way.  The room only has to exist; a room
// pulled out of service can still take a priority booking.  The
// response reports how many were displaced; each displaced owner is
// notified.
func (h *ReservationHandler) PriorityCreate(c echo.Context) error {
	slot, ok := h.bindSlot(c)
	if !ok {
		return nil
	}
	adminID, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.fetchRoom(c, ctx, slot.RoomID); !ok {
		return nil
	}

	d, bumped, err := h.Reservations.PriorityCreate(ctx, adminID, slot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "priority reservation failed"})
	}

	h.Cache.Invalidate(ctx)
	events := make([]queue.NotificationEvent, 0, len(bumped)+1)
	for _, b := range bumped {
		events = append(events, notifier.ReservationBumped(b))
	}
	events = append(events, notifier.ReservationConfirmed(d))
	go publishAll(events)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation":  d,
		"bumped_count": len(bumped),
	})
}

func publishAll(events []queue.NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, ev := range events {
		_ = notifier.Publish(ctx, ev)
	}
}

// ListMine returns the authenticated account's reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, _ := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// ListAll returns every reservation in the system (admin only).
func (h *ReservationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// ListByRoom returns a room's active reservations for one date, the
// per-room day planner.  The date query parameter defaults to today.
func (h *ReservationHandler) ListByRoom(c echo.Context) error {
	roomID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().UTC().Format(timeslot.DateLayout)
	}
	date, err := timeslot.ParseDate(date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	list, err := h.Reservations.ListByRoomDate(ctx, roomID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// Cancel marks a reservation cancelled.  Members may only cancel their
// own; admins may cancel anyone's.  Cancelling a reservation that is
// not active yields 400.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	userID, _ := c.Get("user_id").(uint64)
	role, _ := c.Get("role").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if d.UserID != userID && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reservations.Cancel(ctx, id); err != nil {
		if err == repository.ErrNotActive {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation is not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	h.Cache.Invalidate(ctx)
	go func(ev queue.NotificationEvent) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = notifier.Publish(pubCtx, ev)
	}(notifier.ReservationCancelled(d))

	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// Stats returns aggregate reservation counts plus the most booked
// rooms (admin only).
func (h *ReservationHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, usage, err := h.Reservations.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"stats":     stats,
		"top_rooms": usage,
	})
}
