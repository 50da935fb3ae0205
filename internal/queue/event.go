// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationEvent is published whenever a reservation changes in a
// way its owner should hear about: a confirmed booking, a
// cancellation, a displacement by a priority booking, or a room going
// out of service.  It carries everything the consumer needs to build
// the notification row without querying the primary database.
type NotificationEvent struct {
	UserID        uint64 `json:"user_id"`
	Phone         string `json:"phone,omitempty"`
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	RoomName      string `json:"room_name,omitempty"`
	Date          string `json:"date,omitempty"`
	StartTime     string `json:"start_time,omitempty"`
	EndTime       string `json:"end_time,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
