package middleware // middleware contains reusable HTTP middleware for the booking API

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and loads the account it references.  Beyond signature and
// expiry checks, the referenced account is re-read from the database
// on every request, so a deleted account's token stops working
// immediately even though the JWT itself is still within its lifetime.
//
// On success the context carries:
//
//	c.Get("user_id") -> uint64, the account id
//	c.Get("role")    -> string, the account's current role
//	c.Get("account") -> model.User, the full row
//
// The role comes from the database row, not the token claim, so a
// demoted admin loses admin routes without waiting for token expiry.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			// Numeric claims come back as float64 from MapClaims.
			sub, ok := claims["sub"].(float64)
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			account, err := users.GetByID(ctx, uint64(sub))
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account no longer exists"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not verify account"})
			}

			c.Set("user_id", account.ID)
			c.Set("role", account.Role)
			c.Set("account", account)
			return next(c)
		}
	}
}

// CurrentUserID returns the authenticated account id set by JWTAuth,
// or zero when the request is unauthenticated.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}
