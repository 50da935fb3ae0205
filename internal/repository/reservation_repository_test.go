package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/timeslot"
)

var detailColNames = []string{
	"id", "user_id", "room_id", "date", "start_time", "end_time",
	"status", "reason", "created_at",
	"name", "capacity", "name", "email", "phone",
}

func sampleDetailRow(rows *sqlmock.Rows, id, userID uint64) *sqlmock.Rows {
	return rows.AddRow(id, userID, 3, "2026-09-01", "09:00", "10:00",
		"active", nil, time.Now(),
		"Conference Room A", 20, "Alice", "alice@example.com", "+33600000001")
}

func mustSlot(t *testing.T) timeslot.Slot {
	t.Helper()
	slot, err := timeslot.NewSlot(3, "2026-09-01", "09:00", "10:00", "")
	require.NoError(t, err)
	return slot
}

func TestHasConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	t.Run("overlap found", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE").
			WithArgs(uint64(3), "2026-09-01", "10:00", "09:00").
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

		got, err := repo.HasConflict(context.Background(), 3, "2026-09-01", "09:00", "10:00", 0)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("exclusion id appended", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT COUNT\\(\\*\\) FROM reservations WHERE .* AND id <> \\?").
			WithArgs(uint64(3), "2026-09-01", "10:00", "09:00", uint64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

		got, err := repo.HasConflict(context.Background(), 3, "2026-09-01", "09:00", "10:00", 42)
		require.NoError(t, err)
		assert.False(t, got)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservation(t *testing.T) {
	t.Run("conflicting slot rolls back with ErrSlotTaken", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT id FROM reservations WHERE .* FOR UPDATE").
			WithArgs(uint64(3), "2026-09-01", "10:00", "09:00").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectRollback()

		_, err = repo.Create(context.Background(), 5, mustSlot(t))
		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("free slot inserts and commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT id FROM reservations WHERE .* FOR UPDATE").
			WithArgs(uint64(3), "2026-09-01", "10:00", "09:00").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec("INSERT INTO reservations").
			WithArgs(uint64(5), uint64(3), "2026-09-01", "09:00", "10:00", nil).
			WillReturnResult(sqlmock.NewResult(11, 1))
		mock.ExpectQuery("SELECT r.id, r.user_id, r.room_id").
			WithArgs(uint64(11)).
			WillReturnRows(sampleDetailRow(sqlmock.NewRows(detailColNames), 11, 5))
		mock.ExpectCommit()

		d, err := repo.Create(context.Background(), 5, mustSlot(t))
		require.NoError(t, err)
		assert.Equal(t, uint64(11), d.ID)
		assert.Equal(t, "active", d.Status)
		assert.Equal(t, "Conference Room A", d.RoomName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepo(db)

		boom := errors.New("connection lost")
		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT id FROM reservations WHERE .* FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec("INSERT INTO reservations").WillReturnError(boom)
		mock.ExpectRollback()

		_, err = repo.Create(context.Background(), 5, mustSlot(t))
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelReservation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	t.Run("active reservation cancels", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations SET status='cancelled'").
			WithArgs(uint64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Cancel(context.Background(), 9))
	})

	t.Run("second cancel yields ErrNotActive", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations SET status='cancelled'").
			WithArgs(uint64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Cancel(context.Background(), 9), ErrNotActive)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPriorityCreate(t *testing.T) {
	t.Run("bumps overlapping actives in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepo(db)

		bumpedRows := sqlmock.NewRows(detailColNames)
		sampleDetailRow(bumpedRows, 21, 5)
		sampleDetailRow(bumpedRows, 22, 6)

		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT r.id, r.user_id, r.room_id,.*FOR UPDATE").
			WithArgs(uint64(3), "2026-09-01", "10:00", "09:00").
			WillReturnRows(bumpedRows)
		mock.ExpectExec("UPDATE reservations SET status='cancelled',.*WHERE id IN \\(\\?,\\?\\)").
			WithArgs(uint64(21), uint64(22)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO reservations").
			WithArgs(uint64(1), uint64(3), "2026-09-01", "09:00", "10:00", nil).
			WillReturnResult(sqlmock.NewResult(30, 1))
		mock.ExpectQuery("SELECT r.id, r.user_id, r.room_id").
			WithArgs(uint64(30)).
			WillReturnRows(sampleDetailRow(sqlmock.NewRows(detailColNames), 30, 1))
		mock.ExpectCommit()

		d, bumped, err := repo.PriorityCreate(context.Background(), 1, mustSlot(t))
		require.NoError(t, err)
		assert.Equal(t, uint64(30), d.ID)
		require.Len(t, bumped, 2)
		assert.Equal(t, uint64(21), bumped[0].ID)
		assert.Equal(t, uint64(22), bumped[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no conflicts skips the bump statement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT r.id, r.user_id, r.room_id,.*FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(detailColNames))
		mock.ExpectExec("INSERT INTO reservations").
			WillReturnResult(sqlmock.NewResult(31, 1))
		mock.ExpectQuery("SELECT r.id, r.user_id, r.room_id").
			WillReturnRows(sampleDetailRow(sqlmock.NewRows(detailColNames), 31, 1))
		mock.ExpectCommit()

		_, bumped, err := repo.PriorityCreate(context.Background(), 1, mustSlot(t))
		require.NoError(t, err)
		assert.Empty(t, bumped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back the bump", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepo(db)

		boom := errors.New("deadlock")
		mock.ExpectBegin()
		mock.ExpectQuery("(?s)SELECT r.id, r.user_id, r.room_id,.*FOR UPDATE").
			WillReturnRows(sampleDetailRow(sqlmock.NewRows(detailColNames), 21, 5))
		mock.ExpectExec("UPDATE reservations SET status='cancelled'").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO reservations").WillReturnError(boom)
		mock.ExpectRollback()

		_, _, err = repo.PriorityCreate(context.Background(), 1, mustSlot(t))
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelUpcomingByRoomTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	rows := sqlmock.NewRows(detailColNames)
	sampleDetailRow(rows, 41, 5)

	mock.ExpectBegin()
	mock.ExpectQuery("BETWEEN CURDATE\\(\\) AND CURDATE\\(\\) \\+ INTERVAL \\? DAY FOR UPDATE").
		WithArgs(uint64(3), 7).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE reservations SET status='cancelled',.*WHERE id IN \\(\\?\\)").
		WithArgs(uint64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	affected, err := repo.CancelUpcomingByRoomTx(context.Background(), tx, 3, 7)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, affected, 1)
	assert.Equal(t, uint64(41), affected[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
