package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/model"
	"github.com/iliyamo/theater-seat-booking/internal/repository"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// PublicHandler serves the unauthenticated read endpoints: the event
// listing and the seat snapshot.
type PublicHandler struct {
	Events EventStore
	Seats  SeatStore
}

// NewPublicHandler constructs a PublicHandler. Both stores are required.
func NewPublicHandler(events EventStore, seats SeatStore) *PublicHandler {
	if events == nil || seats == nil {
		panic("nil store passed to NewPublicHandler")
	}
	return &PublicHandler{Events: events, Seats: seats}
}

// ListEvents handles GET /api/events.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch events"})
	}
	out := make([]wire.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, toWireEvent(ev))
	}
	return c.JSON(http.StatusOK, out)
}

// GetSeats handles GET /api/seats and GET /api/seats/:eventId. Without an
// event id the default event is served. The response lists every seat
// and the booked set the seat map reconciles against.
func (h *PublicHandler) GetSeats(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		ev  *model.Event
		err error
	)
	if raw := c.Param("eventId"); raw != "" {
		id, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
		}
		ev, err = h.Events.GetByID(ctx, id)
	} else {
		ev, err = h.Events.Default(ctx)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	seats, err := h.Seats.ListByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch seats"})
	}
	resp := wire.SnapshotResponse{
		TotalSeats:  len(seats),
		Seats:       make([]wire.SeatInfo, 0, len(seats)),
		BookedSeats: wire.BookedSet{},
	}
	for _, s := range seats {
		resp.Seats = append(resp.Seats, wire.SeatInfo{
			ID:       catalog.SeatID(s.ID),
			Section:  s.Section,
			Row:      s.RowLabel,
			Number:   int(s.SeatNumber),
			SeatCode: s.SeatCode,
			Status:   s.Status,
			Price:    float64(s.Price),
			IsVIP:    s.IsVIP,
		})
		if s.Booked() {
			resp.BookedSeats[catalog.SeatID(s.ID)] = true
		} else {
			resp.AvailableSeats++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func toWireEvent(ev model.Event) wire.Event {
	return wire.Event{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Venue:       ev.Venue,
		Date:        ev.StartsAt.UTC(),
		Duration:    ev.DurationMin,
	}
}
