package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seat-booking/internal/handler"
	"github.com/iliyamo/theater-seat-booking/internal/middleware"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// RegisterRoutes registers routes that need no dependencies. Currently it
// exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated read endpoints. The event
// listing goes through the response cache; seat state never does.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/api/events", p.ListEvents, cache)
	e.GET("/api/seats", p.GetSeats)
	e.GET("/api/seats/:eventId", p.GetSeats)
}

// RegisterBooking registers booking submission behind the rate limiter
// and the ticket lookup behind ticket token authentication.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, limiter echo.MiddlewareFunc, ticketSecret string) {
	e.POST("/api/bookings", b.CreateBooking, limiter)
	e.GET("/api/tickets/me", b.GetMyTicket, middleware.TicketAuth(ticketSecret))
}

// RegisterPush registers the websocket push channel.
func RegisterPush(e *echo.Echo, p *handler.PushHandler) {
	e.GET(wire.PushPath, p.Serve)
}
