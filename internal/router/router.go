// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bucket-api/internal/handler"
	"github.com/iliyamo/bucket-api/internal/middleware"
)

// RegisterRoutes registers the routes that do not require authentication:
// the health check, the JSON 404 fallback and the auth endpoints. Logout
// lives here rather than behind the guard because its header-failure
// responses differ from the guard's.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/", handler.Health)
	e.GET("/healthz", handler.Health)
	echo.NotFoundHandler = handler.NotFound

	e.POST("/auth/register", a.Register)
	e.POST("/auth/login", a.Login)
	e.POST("/auth/logout", a.Logout)
}

// RegisterProtected registers everything behind the token guard: password
// reset, buckets and items. The guard resolves the bearer token to a user
// and stores it in the request context for the handlers.
func RegisterProtected(e *echo.Echo, jwtSecret string,
	users middleware.UserLookup, blacklist middleware.BlacklistChecker,
	a *handler.AuthHandler, b *handler.BucketHandler, i *handler.ItemHandler) {

	g := e.Group("")
	g.Use(middleware.TokenRequired(jwtSecret, users, blacklist))

	g.POST("/auth/reset/password", a.ResetPassword)

	g.POST("/bucketlists", b.Create)
	g.GET("/bucketlists", b.List)
	g.GET("/bucketlists/:bucket_id", b.Get)
	g.PUT("/bucketlists/:bucket_id", b.Update)
	g.DELETE("/bucketlists/:bucket_id", b.Delete)

	// Item collection routes are registered with and without the trailing
	// slash; clients follow pagination links that carry it.
	g.POST("/bucketlists/:bucket_id/items", i.Create)
	g.POST("/bucketlists/:bucket_id/items/", i.Create)
	g.GET("/bucketlists/:bucket_id/items", i.List)
	g.GET("/bucketlists/:bucket_id/items/", i.List)
	g.GET("/bucketlists/:bucket_id/items/:item_id", i.Get)
	g.PUT("/bucketlists/:bucket_id/items/:item_id", i.Update)
	g.DELETE("/bucketlists/:bucket_id/items/:item_id", i.Delete)
}
