package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// RoomRepo provides data access to the rooms table.  The availability
// set query lives here because it answers a question about rooms;
// the per-slot point check lives in ReservationRepo.
type RoomRepo struct{ db *sql.DB }

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions
// that span rooms and reservations (the out-of-service cascade).
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomCols = "id,name,capacity,status,description,created_at,updated_at"

func scanRoomRow(row *sql.Row) (model.Room, error) {
	var m model.Room
	var desc sql.NullString
	err := row.Scan(&m.ID, &m.Name, &m.Capacity, &m.Status, &desc, &m.CreatedAt, &m.UpdatedAt)
	if desc.Valid {
		d := desc.String
		m.Description = &d
	}
	return m, err
}

// Create inserts a room with status 'available'.  A duplicate name
// maps to ErrRoomNameExists.
func (r *RoomRepo) Create(ctx context.Context, name string, capacity uint32, description string) (uint64, error) {
	var desc interface{}
	if strings.TrimSpace(description) != "" {
		desc = description
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO rooms (name, capacity, description) VALUES (?,?,?)",
		strings.TrimSpace(name), capacity, desc)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrRoomNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return scanRoomRow(r.db.QueryRowContext(ctx,
		"SELECT "+roomCols+" FROM rooms WHERE id=? LIMIT 1", id))
}

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomCols+" FROM rooms ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var m model.Room
		var desc sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Capacity, &m.Status, &desc, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			m.Description = &d
		}
		rooms = append(rooms, m)
	}
	return rooms, rows.Err()
}

// ListAvailable returns the rooms with status 'available' that have no
// active reservation overlapping [start, end) on the given date.  The
// set is all available rooms minus those with at least one conflicting
// active reservation; abutting reservations do not exclude a room
// because the intervals are half-open.
func (r *RoomRepo) ListAvailable(ctx context.Context, date, start, end string) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+roomCols+` FROM rooms s
		WHERE s.status = 'available'
		  AND s.id NOT IN (
			SELECT DISTINCT v.room_id FROM reservations v
			WHERE v.date = ? AND v.status = 'active'
			  AND v.start_time < ? AND v.end_time > ?
		  )
		ORDER BY s.name`, date, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var m model.Room
		var desc sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Capacity, &m.Status, &desc, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			m.Description = &d
		}
		rooms = append(rooms, m)
	}
	return rooms, rows.Err()
}

// Update replaces a room's name, capacity and description.  It returns
// sql.ErrNoRows when the room does not exist and ErrRoomNameExists on
// a name collision with another room.
func (r *RoomRepo) Update(ctx context.Context, id uint64, name string, capacity uint32, description string) (model.Room, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Room{}, err
	}
	var desc interface{}
	if strings.TrimSpace(description) != "" {
		desc = description
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET name=?, capacity=?, description=?, updated_at=NOW() WHERE id=?",
		strings.TrimSpace(name), capacity, desc, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Room{}, ErrRoomNameExists
		}
		return model.Room{}, err
	}
	return r.GetByID(ctx, id)
}

// SetStatusTx flips a room's status within an existing transaction.
// The caller commits or rolls back.
func (r *RoomRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE rooms SET status=?, updated_at=NOW() WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatus flips a room's status outside a transaction, used by the
// back-in-service path where no cascade is involved.
func (r *RoomRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE rooms SET status=?, updated_at=NOW() WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a room unless it still has active reservations dated
// today or later, in which case ErrHasFutureReservations is returned.
// The guard and the delete run in one transaction so a booking cannot
// slip in between.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM rooms WHERE id=? FOR UPDATE", id).Scan(&exists); err != nil {
		return err
	}
	var upcoming int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE room_id=? AND status='active' AND date >= CURDATE()",
		id).Scan(&upcoming); err != nil {
		return err
	}
	if upcoming > 0 {
		return ErrHasFutureReservations
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
