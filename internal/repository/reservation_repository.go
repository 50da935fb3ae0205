package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/timeslot"
)

// ReservationRepo provides CRUD operations for reservations plus the
// conflict engine queries.  Dates travel as "YYYY-MM-DD" strings and
// clock values as zero-padded "HH:MM" strings; the SQL formats both on
// the way out so callers never see driver-native TIME/DATE values.
//
// Every write that could race with a concurrent booking runs inside a
// transaction whose first statement is a locking read over the
// conflicting rows, which closes the check-then-act window between the
// conflict check and the insert.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying pool for handlers that compose
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// Detail is a reservation joined with its owner and room, the shape
// every endpoint returns.
type Detail struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	RoomID       uint64    `json:"room_id"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Status       string    `json:"status"`
	Reason       *string   `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	RoomName     string    `json:"room_name"`
	RoomCapacity uint32    `json:"room_capacity"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	UserPhone    string    `json:"user_phone"`
}

// detailCols selects a reservation row joined with users and rooms,
// formatting date and clock values into the wire representation.
const detailCols = `r.id, r.user_id, r.room_id,
	DATE_FORMAT(r.date, '%Y-%m-%d'),
	TIME_FORMAT(r.start_time, '%H:%i'), TIME_FORMAT(r.end_time, '%H:%i'),
	r.status, r.reason, r.created_at,
	s.name, s.capacity, u.name, u.email, u.phone`

const detailFrom = ` FROM reservations r
	JOIN rooms s ON s.id = r.room_id
	JOIN users u ON u.id = r.user_id`

func scanDetail(sc interface{ Scan(...any) error }) (Detail, error) {
	var d Detail
	var reason sql.NullString
	err := sc.Scan(&d.ID, &d.UserID, &d.RoomID, &d.Date, &d.StartTime, &d.EndTime,
		&d.Status, &reason, &d.CreatedAt,
		&d.RoomName, &d.RoomCapacity, &d.UserName, &d.UserEmail, &d.UserPhone)
	if reason.Valid {
		v := reason.String
		d.Reason = &v
	}
	return d, err
}

// overlapCond matches active reservations for one room and date whose
// half-open [start_time, end_time) interval intersects the bound
// [?, ?) interval; bind order is room, date, end, start.  Abutting
// intervals do not match.
const overlapCond = `room_id = ? AND date = ? AND status = 'active'
	AND start_time < ? AND end_time > ?`

// HasConflict is the point check of the conflict engine: does any
// active reservation for the room and date overlap [start, end)?  An
// optional reservation id can be excluded, used when re-validating an
// existing booking.
func (r *ReservationRepo) HasConflict(ctx context.Context, roomID uint64, date, start, end string, excludeID uint64) (bool, error) {
	q := "SELECT COUNT(*) FROM reservations WHERE " + overlapCond
	args := []any{roomID, date, end, start}
	if excludeID != 0 {
		q += " AND id <> ?"
		args = append(args, excludeID)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByID returns one reservation joined with owner and room details.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (Detail, error) {
	return scanDetail(r.db.QueryRowContext(ctx,
		"SELECT "+detailCols+detailFrom+" WHERE r.id = ?", id))
}

// Create books a slot for the given account.  Inside one transaction
// it takes row locks over any conflicting active reservations; if one
// exists the transaction aborts with ErrSlotTaken, otherwise the new
// row is inserted as 'active'.  Two concurrent creates for overlapping
// slots therefore serialize on the locks and the loser sees the
// winner's row.
func (r *ReservationRepo) Create(ctx context.Context, userID uint64, slot timeslot.Slot) (Detail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Detail{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var conflictID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM reservations WHERE "+overlapCond+" LIMIT 1 FOR UPDATE",
		slot.RoomID, slot.Date, slot.End, slot.Start).Scan(&conflictID)
	switch {
	case err == nil:
		return Detail{}, ErrSlotTaken
	case err != sql.ErrNoRows:
		return Detail{}, err
	}

	id, err := insertReservationTx(ctx, tx, userID, slot)
	if err != nil {
		return Detail{}, err
	}
	d, err := scanDetail(tx.QueryRowContext(ctx,
		"SELECT "+detailCols+detailFrom+" WHERE r.id = ?", id))
	if err != nil {
		return Detail{}, err
	}
	if err := tx.Commit(); err != nil {
		return Detail{}, err
	}
	committed = true
	return d, nil
}

func insertReservationTx(ctx context.Context, tx *sql.Tx, userID uint64, slot timeslot.Slot) (uint64, error) {
	var reason any
	if strings.TrimSpace(slot.Reason) != "" {
		reason = slot.Reason
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO reservations (user_id, room_id, date, start_time, end_time, reason) VALUES (?,?,?,?,?,?)",
		userID, slot.RoomID, slot.Date, slot.Start, slot.End, reason)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Cancel transitions a reservation from 'active' to 'cancelled'.  The
// guard is in the statement itself, so cancelling an already-cancelled
// or completed reservation affects zero rows and returns ErrNotActive.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reservations SET status='cancelled', updated_at=NOW() WHERE id=? AND status='active'", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotActive
	}
	return nil
}

// PriorityCreate books a slot for an admin, displacing whatever active
// reservations overlap it.  Everything happens in one transaction:
// lock and collect the bumped set, cancel it, insert the new row.  Any
// failure rolls the whole thing back so a partial bump (cancelled
// losers without a persisted winner) cannot happen.  The bumped
// details are returned so the caller can notify each displaced owner
// after the commit.
func (r *ReservationRepo) PriorityCreate(ctx context.Context, adminID uint64, slot timeslot.Slot) (Detail, []Detail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Detail{}, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		"SELECT "+detailCols+detailFrom+` WHERE r.room_id = ? AND r.date = ? AND r.status = 'active'
			AND r.start_time < ? AND r.end_time > ? FOR UPDATE`,
		slot.RoomID, slot.Date, slot.End, slot.Start)
	if err != nil {
		return Detail{}, nil, err
	}
	bumped := make([]Detail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			rows.Close()
			return Detail{}, nil, err
		}
		bumped = append(bumped, d)
	}
	if err := rows.Close(); err != nil {
		return Detail{}, nil, err
	}

	if len(bumped) > 0 {
		args := make([]any, 0, len(bumped))
		marks := make([]string, 0, len(bumped))
		for _, d := range bumped {
			args = append(args, d.ID)
			marks = append(marks, "?")
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE reservations SET status='cancelled', updated_at=NOW() WHERE id IN ("+strings.Join(marks, ",")+")",
			args...); err != nil {
			return Detail{}, nil, err
		}
	}

	id, err := insertReservationTx(ctx, tx, adminID, slot)
	if err != nil {
		return Detail{}, nil, err
	}
	d, err := scanDetail(tx.QueryRowContext(ctx,
		"SELECT "+detailCols+detailFrom+" WHERE r.id = ?", id))
	if err != nil {
		return Detail{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return Detail{}, nil, err
	}
	committed = true
	return d, bumped, nil
}

// ListByUser returns the account's reservations, newest date and start
// time first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]Detail, error) {
	return r.list(ctx,
		"SELECT "+detailCols+detailFrom+" WHERE r.user_id = ? ORDER BY r.date DESC, r.start_time DESC",
		userID)
}

// ListAll returns every reservation, newest date and start time first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]Detail, error) {
	return r.list(ctx,
		"SELECT "+detailCols+detailFrom+" ORDER BY r.date DESC, r.start_time DESC")
}

// ListByRoomDate returns a room's active reservations for one date
// ordered by start time, the shape of the per-room day planner.
func (r *ReservationRepo) ListByRoomDate(ctx context.Context, roomID uint64, date string) ([]Detail, error) {
	return r.list(ctx,
		"SELECT "+detailCols+detailFrom+" WHERE r.room_id = ? AND r.date = ? AND r.status = 'active' ORDER BY r.start_time",
		roomID, date)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]Detail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Detail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CancelUpcomingByRoomTx cancels the room's active reservations dated
// within [today, today+days] and returns their details so owners can
// be notified.  Rows beyond the window are deliberately left active.
// Runs within the caller's transaction, alongside the room status
// flip.
func (r *ReservationRepo) CancelUpcomingByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64, days int) ([]Detail, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+detailCols+detailFrom+` WHERE r.room_id = ? AND r.status = 'active'
			AND r.date BETWEEN CURDATE() AND CURDATE() + INTERVAL ? DAY FOR UPDATE`,
		roomID, days)
	if err != nil {
		return nil, err
	}
	affected := make([]Detail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		affected = append(affected, d)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return affected, nil
	}
	args := make([]any, 0, len(affected))
	marks := make([]string, 0, len(affected))
	for _, d := range affected {
		args = append(args, d.ID)
		marks = append(marks, "?")
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status='cancelled', updated_at=NOW() WHERE id IN ("+strings.Join(marks, ",")+")",
		args...); err != nil {
		return nil, err
	}
	return affected, nil
}

// Stats aggregates reservation counts for the admin dashboard.
type Stats struct {
	Total     int `json:"total_reservations"`
	Active    int `json:"active_reservations"`
	Cancelled int `json:"cancelled_reservations"`
	Future    int `json:"future_reservations"`
	Today     int `json:"today_reservations"`
}

// RoomUsage ranks a room by total bookings.
type RoomUsage struct {
	Name         string `json:"name"`
	Reservations int    `json:"reservation_count"`
}

// Stats returns aggregate reservation counts plus the five most booked
// rooms.
func (r *ReservationRepo) Stats(ctx context.Context) (Stats, []RoomUsage, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status='active' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status='cancelled' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN date >= CURDATE() THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN date = CURDATE() THEN 1 ELSE 0 END), 0)
		FROM reservations`).Scan(&s.Total, &s.Active, &s.Cancelled, &s.Future, &s.Today)
	if err != nil {
		return Stats{}, nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.name, COUNT(r.id) AS reservation_count
		FROM rooms s
		LEFT JOIN reservations r ON r.room_id = s.id
		GROUP BY s.id, s.name
		ORDER BY reservation_count DESC
		LIMIT 5`)
	if err != nil {
		return Stats{}, nil, err
	}
	defer rows.Close()
	usage := make([]RoomUsage, 0)
	for rows.Next() {
		var u RoomUsage
		if err := rows.Scan(&u.Name, &u.Reservations); err != nil {
			return Stats{}, nil, err
		}
		usage = append(usage, u)
	}
	return s, usage, rows.Err()
}
