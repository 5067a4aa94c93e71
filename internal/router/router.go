package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/goldenfork/reservation-api/internal/captcha"
	"github.com/goldenfork/reservation-api/internal/config"
	"github.com/goldenfork/reservation-api/internal/handler"
	"github.com/goldenfork/reservation-api/internal/middleware"
)

// Deps bundles everything route registration needs.  Redis and the
// captcha verifier may be nil; the middleware they feed degrade to
// pass-through so the engine keeps serving without them.
type Deps struct {
	Reservations *handler.ReservationHandler
	AdminRes     *handler.AdminReservationHandler
	Waitlist     *handler.WaitlistHandler
	Tables       *handler.TableHandler
	Auth         *handler.AuthHandler

	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Captcha   captcha.Verifier
}

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the guest-facing booking surface.  Intake
// sits behind captcha verification and a per-IP rate limit; the floor
// listing is served through the response cache because table data
// changes rarely.  Availability is never cached: a stale answer there
// produces bookings the commit step must reject.
func RegisterPublic(e *echo.Echo, d Deps) {
	e.GET("/v1/availability", d.Reservations.Availability)
	e.GET("/v1/tables", d.Tables.List, middleware.CacheGET(d.Redis, 5*time.Minute))

	e.POST("/v1/reservations", d.Reservations.Create,
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
		middleware.RequireCaptcha(d.Captcha))

	// Targets of the links embedded in reservation mail.
	e.GET("/v1/reservations/confirm", d.Reservations.Confirm)
	e.GET("/v1/reservations/cancel", d.Reservations.Cancel)
}

// RegisterAdmin registers the operator login endpoints and the
// protected back-office group.  Every route under /v1/admin except
// login and verify requires a valid access token with the ADMIN role.
func RegisterAdmin(e *echo.Echo, d Deps) {
	e.POST("/v1/admin/login", d.Auth.Login,
		middleware.NewTokenBucket(d.RateLimit, d.Redis))
	e.POST("/v1/admin/verify", d.Auth.Verify,
		middleware.NewTokenBucket(d.RateLimit, d.Redis))

	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(d.JWTSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.GET("/reservations", d.AdminRes.List)
	g.POST("/reservations/:id/confirm", d.AdminRes.Confirm)
	g.POST("/reservations/:id/cancel", d.AdminRes.Cancel)
	g.DELETE("/reservations/:id", d.AdminRes.Delete)

	g.GET("/waitlist", d.Waitlist.List)
	g.POST("/waitlist/:id/promote", d.Waitlist.Promote)
	g.POST("/waitlist/:id/promote-at", d.Waitlist.PromoteAt)
	g.POST("/waitlist/:id/decline", d.Waitlist.Decline)

	g.POST("/tables", d.Tables.Create)
	g.PATCH("/tables/:id", d.Tables.Update)
	g.DELETE("/tables/:id", d.Tables.Delete)
}
