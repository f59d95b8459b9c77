// Package token issues and verifies the signed bearer tokens that carry a
// user's session. A token is self-contained: subject, issued-at and expiry
// are bound by an HS256 signature, so validation needs no database access.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired is returned by Parse when the token's signature is valid but
// its expiry has passed. Callers must surface this distinctly from
// ErrMalformed so clients can tell "sign in again" apart from "bad token".
var ErrExpired = errors.New("token expired")

// ErrMalformed is returned by Parse for anything that is not a structurally
// valid, correctly signed token: garbage input, tampered claims, a wrong
// signing algorithm or a subject that is not a number.
var ErrMalformed = errors.New("token malformed")

// Claims are the verified contents of a parsed token.
type Claims struct {
	UserID    uint64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issue builds and signs an HS256 token for a user. The claim set is
// sub (user id), iat (now) and exp (now + ttl).
func Issue(secret string, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse verifies the signature and expiry of a raw token string and returns
// its claims. Expired tokens yield ErrExpired; every other failure yields
// ErrMalformed.
func Parse(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrMalformed
	}

	var c Claims
	// Numeric JSON claims decode as float64.
	sub, ok := mc["sub"].(float64)
	if !ok {
		return Claims{}, ErrMalformed
	}
	c.UserID = uint64(sub)
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return c, nil
}
