// Package handler implements the HTTP endpoints. Response bodies follow the
// {"status": ..., "message": ...} envelope throughout; the exact message
// strings are part of the API contract.
package handler

import "github.com/labstack/echo/v4"

// respond writes the standard status/message envelope.
func respond(c echo.Context, code int, status, message string) error {
	return c.JSON(code, echo.Map{"status": status, "message": message})
}

// respondAuth is respond plus the issued auth token, used by register/login.
func respondAuth(c echo.Context, code int, status, message, authToken string) error {
	return c.JSON(code, echo.Map{
		"status":     status,
		"message":    message,
		"auth_token": authToken,
	})
}
