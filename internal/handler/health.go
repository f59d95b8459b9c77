package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness endpoint for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// NotFound is Echo's catch-all for unknown routes, keeping the error
// envelope consistent with the rest of the API.
func NotFound(c echo.Context) error {
	return respond(c, http.StatusNotFound, "failed", "Endpoint not found")
}
