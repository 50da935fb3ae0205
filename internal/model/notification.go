package model

import "time"

// Notification kinds stored in notifications.kind.  They mirror the
// booking lifecycle events published to the message queue.
const (
	NotifyReservation  = "reservation_confirmed"
	NotifyCancellation = "reservation_cancelled"
	NotifyBumped       = "reservation_bumped"
	NotifyRoomOutage   = "room_out_of_service"
)

// Notification is a persisted in-app message for one account, written
// by the queue consumer after a booking event.  Delivery over an
// external channel (SMS) is out of scope; this table is the record of
// what would have been sent.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient account.
//  Message   – human-readable text.
//  Kind      – one of the Notify* constants, or "info".
//  IsRead    – whether the recipient has seen it.
//  CreatedAt – timestamp of creation.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Message   string    // notifications.message
	Kind      string    // notifications.kind
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
