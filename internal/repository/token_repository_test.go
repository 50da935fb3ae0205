package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	t.Run("live token resolves to its account", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id FROM refresh_tokens WHERE token_hash=\\? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP").
			WithArgs("abc123").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(9))

		uid, err := repo.ValidateRefresh(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, uint64(9), uid)
	})

	t.Run("revoked or expired token is indistinguishable from unknown", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
			WithArgs("stale").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		_, err := repo.ValidateRefresh(context.Background(), "stale")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAndRevoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	exp := time.Now().Add(30 * 24 * time.Hour)
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(9), "abc123", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE token_hash=\\?").
		WithArgs("abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE user_id=\\?").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.StoreRefresh(context.Background(), 9, "abc123", exp))
	assert.NoError(t, repo.RevokeByHash(context.Background(), "abc123"))
	assert.NoError(t, repo.RevokeAllForUser(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at < UTC_TIMESTAMP\\(\\) - INTERVAL \\? DAY").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.PurgeExpired(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
