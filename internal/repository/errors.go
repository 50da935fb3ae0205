// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow handlers to
// distinguish failure scenarios and map them onto HTTP statuses: for
// example, ErrSlotTaken becomes a 409 while ErrLastAdmin becomes a 400
// with a business-rule message rather than a raw constraint violation.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists signals that an account create or update collides
// with an existing email.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNameExists signals that a room create or update collides with
// an existing room name.  Handlers translate this into HTTP 409.
var ErrRoomNameExists = errors.New("room name already exists")

// ErrSlotTaken is returned when a reservation create finds an active
// overlapping reservation for the same room and date.  Handlers
// translate this into HTTP 409.
var ErrSlotTaken = errors.New("time slot already booked")

// ErrNotActive is returned when a state transition requires an active
// reservation, such as cancelling one that is already cancelled.
var ErrNotActive = errors.New("reservation is not active")

// ErrLastAdmin blocks deletion of the only remaining admin account.
var ErrLastAdmin = errors.New("cannot delete the last admin account")

// ErrHasFutureReservations blocks deletion of a room or account that
// still owns active reservations dated today or later.
var ErrHasFutureReservations = errors.New("active future reservations exist")
