package model

import "time"

// Reservation status values stored in reservations.status.  Only
// active reservations participate in conflict detection; cancelled and
// completed rows are history.  Nothing in the service flips a row to
// completed – the value exists for an external archiving process.
const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Reservation records one account's claim on a room for a half-open
// [start, end) interval on a calendar date.  Clock values are
// normalized "HH:MM" strings (see the timeslot package); the invariant
// is that no two active reservations for the same room and date
// overlap.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning account.
//  RoomID    – reserved room.
//  Date      – calendar date, "YYYY-MM-DD".
//  StartTime – inclusive start, "HH:MM".
//  EndTime   – exclusive end, "HH:MM", strictly after StartTime.
//  Status    – one of the Reservation* constants.
//  Reason    – optional free text, at most 500 characters.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	RoomID    uint64    // reservations.room_id
	Date      string    // reservations.date
	StartTime string    // reservations.start_time
	EndTime   string    // reservations.end_time
	Status    string    // reservations.status
	Reason    *string   // reservations.reason (nullable)
	CreatedAt time.Time // reservations.created_at
	UpdatedAt time.Time // reservations.updated_at
}
