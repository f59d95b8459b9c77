// Package middleware contains the bearer-token guard applied to every
// protected route.
package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bucket-api/internal/model"
	"github.com/iliyamo/bucket-api/internal/token"
)

// Stable user-facing failure messages. Clients and the test suite match on
// these strings, so they must not change.
const (
	MsgTokenMissing     = "Token is missing"
	MsgTokenInvalid     = "Invalid token. Please sign in again"
	MsgTokenExpired     = "Signature expired, Please sign in again"
	MsgTokenBlacklisted = "Token was Blacklisted, Please login In"
)

const userContextKey = "current_user"

// UserLookup resolves a token subject to a user record.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// BlacklistChecker answers whether a raw token string has been revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
}

// TokenRequired returns the guard middleware. The checks run in a fixed
// order: header presence, header shape, token signature, expiry, revocation,
// subject resolution. Each failure maps to its own message so clients can
// tell a garbage token from an expired or revoked one. A subject that no
// longer resolves to a user is reported as an invalid token, never as a
// server error.
func TokenRequired(secret string, users UserLookup, blacklist BlacklistChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return fail(c, MsgTokenMissing)
			}
			parts := strings.Fields(header)
			if len(parts) != 2 {
				return fail(c, MsgTokenInvalid)
			}
			raw := parts[1]

			claims, err := token.Parse(secret, raw)
			if err == token.ErrExpired {
				return fail(c, MsgTokenExpired)
			}
			if err != nil {
				return fail(c, MsgTokenInvalid)
			}

			ctx := c.Request().Context()
			revoked, err := blacklist.IsBlacklisted(ctx, raw)
			if err != nil {
				return c.JSON(http.StatusInternalServerError,
					echo.Map{"status": "failed", "message": "Operation failed, try again"})
			}
			if revoked {
				return fail(c, MsgTokenBlacklisted)
			}

			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if err == sql.ErrNoRows {
					return fail(c, MsgTokenInvalid)
				}
				return c.JSON(http.StatusInternalServerError,
					echo.Map{"status": "failed", "message": "Operation failed, try again"})
			}

			SetCurrentUser(c, u)
			return next(c)
		}
	}
}

// SetCurrentUser stores the authenticated user in the request context. The
// guard calls it once a token has passed every check.
func SetCurrentUser(c echo.Context, u model.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the authenticated user placed in the context by
// TokenRequired.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

func fail(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized,
		echo.Map{"status": "failed", "message": message})
}
