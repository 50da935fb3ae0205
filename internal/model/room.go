package model

import "time"

// Room status values stored in rooms.status.  Only RoomAvailable rooms
// accept new bookings; RoomOutOfService triggers a cascade that
// cancels upcoming reservations.
const (
	RoomAvailable    = "available"
	RoomOutOfService = "out_of_service"
	RoomMaintenance  = "maintenance"
)

// Room represents a bookable meeting room as stored in the `rooms`
// table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique human-readable name.
//  Capacity    – number of seats, always positive.
//  Status      – one of the Room* status constants.
//  Description – optional free text.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Room struct {
	ID          uint64    // rooms.id
	Name        string    // rooms.name
	Capacity    uint32    // rooms.capacity
	Status      string    // rooms.status
	Description *string   // rooms.description (nullable)
	CreatedAt   time.Time // rooms.created_at
	UpdatedAt   time.Time // rooms.updated_at
}
