package middleware // middleware contains reusable HTTP middleware for the booking API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seat-booking/internal/utils"
)

// bookingRefKey is the context key TicketAuth stores the booking
// reference under.
const bookingRefKey = "booking_ref"

// TicketAuth returns an Echo middleware that validates a Bearer ticket
// token and injects the booking reference it was issued for into the
// request context. Handlers read it with BookingRef.
func TicketAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			ref, err := utils.ParseTicketToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(bookingRefKey, ref)
			return next(c)
		}
	}
}

// BookingRef returns the reference stored by TicketAuth, or "".
func BookingRef(c echo.Context) string {
	s, _ := c.Get(bookingRefKey).(string)
	return s
}
