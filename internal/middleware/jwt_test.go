package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func run(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler)(c))
	return rec, c
}

func newUsersRepo(t *testing.T) (*repository.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewUserRepo(db), mock
}

func TestJWTAuth(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		users, _ := newUsersRepo(t)
		rec, _ := run(t, JWTAuth(testSecret, users), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		users, _ := newUsersRepo(t)
		rec, _ := run(t, JWTAuth(testSecret, users), "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		users, _ := newUsersRepo(t)
		at, err := utils.NewAccessToken("other-secret", 7, "a@b.c", "member", 60)
		require.NoError(t, err)
		rec, _ := run(t, JWTAuth(testSecret, users), "Bearer "+at.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deleted account is rejected despite a valid token", func(t *testing.T) {
		users, mock := newUsersRepo(t)
		mock.ExpectQuery("FROM users WHERE id=\\?").
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		at, err := utils.NewAccessToken(testSecret, 7, "a@b.c", "member", 60)
		require.NoError(t, err)
		rec, _ := run(t, JWTAuth(testSecret, users), "Bearer "+at.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("role comes from the database, not the claim", func(t *testing.T) {
		users, mock := newUsersRepo(t)
		mock.ExpectQuery("FROM users WHERE id=\\?").
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "phone", "created_at", "updated_at"}).
				AddRow(7, "Alice", "a@b.c", "hash", "member", "", time.Now(), time.Now()))

		// Token still claims admin; the row says member.
		at, err := utils.NewAccessToken(testSecret, 7, "a@b.c", "admin", 60)
		require.NoError(t, err)
		rec, c := run(t, JWTAuth(testSecret, users), "Bearer "+at.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "member", c.Get("role"))
		assert.Equal(t, uint64(7), c.Get("user_id"))

		account, ok := c.Get("account").(model.User)
		require.True(t, ok)
		assert.Equal(t, "Alice", account.Name)
	})
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole("admin")

	t.Run("missing role", func(t *testing.T) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set("role", "member")
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed role", func(t *testing.T) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set("role", "admin")
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
