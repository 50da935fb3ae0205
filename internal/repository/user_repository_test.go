package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColNames = []string{"id", "name", "email", "password_hash", "role", "phone", "created_at", "updated_at"}

func userRow(id uint64, name, email, role string) *sqlmock.Rows {
	return sqlmock.NewRows(userColNames).
		AddRow(id, name, email, "$2a$10$hash", role, "+33600000001", time.Now(), time.Now())
}

func TestUserCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	t.Run("lowercases the email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs("Alice", "alice@example.com", sqlmock.AnyArg(), "member", "+33600000001").
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := repo.Create(context.Background(), "Alice", "  ALICE@Example.COM ", "secret1", "member", "+33600000001", 4)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
	})

	t.Run("duplicate email maps to ErrEmailExists", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("Error 1062: Duplicate entry 'alice@example.com' for key 'users.email'"))

		_, err := repo.Create(context.Background(), "Alice", "alice@example.com", "secret1", "member", "", 4)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdatePatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	// Only the name is patched; email, role and phone keep their
	// current values in the single UPDATE.
	mock.ExpectQuery("SELECT .* FROM users WHERE id=\\?").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Alice", "alice@example.com", "member"))
	mock.ExpectExec("UPDATE users SET name=\\?, email=\\?, role=\\?, phone=\\?, updated_at=NOW\\(\\)").
		WithArgs("Alicia", "alice@example.com", "member", "+33600000001", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM users WHERE id=\\?").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Alicia", "alice@example.com", "member"))

	name := "  Alicia  "
	u, err := repo.Update(context.Background(), 7, UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteGuards(t *testing.T) {
	t.Run("last admin is protected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewUserRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT role FROM users WHERE id=\\? FOR UPDATE").
			WithArgs(uint64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role='admin'").
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), 1), ErrLastAdmin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upcoming reservations block deletion", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewUserRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT role FROM users WHERE id=\\? FOR UPDATE").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("member"))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE user_id=\\?").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrHasFutureReservations)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clean member deletes and commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewUserRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT role FROM users WHERE id=\\? FOR UPDATE").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("member"))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE user_id=\\?").
			WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
		mock.ExpectExec("DELETE FROM users WHERE id=\\?").
			WithArgs(uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second admin can be deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewUserRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT role FROM users WHERE id=\\? FOR UPDATE").
			WithArgs(uint64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role='admin'").
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reservations WHERE user_id=\\?").
			WithArgs(uint64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
		mock.ExpectExec("DELETE FROM users WHERE id=\\?").
			WithArgs(uint64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
