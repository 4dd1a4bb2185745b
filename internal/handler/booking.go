package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/middleware"
	"github.com/iliyamo/theater-seat-booking/internal/model"
	"github.com/iliyamo/theater-seat-booking/internal/queue"
	"github.com/iliyamo/theater-seat-booking/internal/repository"
	"github.com/iliyamo/theater-seat-booking/internal/utils"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// publishTimeout bounds the asynchronous booking event publish.
const publishTimeout = 5 * time.Second

// BookingHandler creates bookings and serves tickets. After a booking
// commits it notifies every connected seat map through Hub and, when a
// Publisher is configured, emits a booking.confirmed event. Both run in
// the background; the response does not wait for them.
type BookingHandler struct {
	Events       EventStore
	Bookings     BookingStore
	Hub          Broadcaster
	Publisher    EventPublisher // optional
	TicketSecret string
	TicketTTL    time.Duration
	Logger       *log.Logger
}

// CreateBooking handles POST /api/bookings. Fields are validated in the
// order the seat map validates them. Seats that are booked or unknown
// yield 409 with their codes in "unavailable".
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req wire.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking data"})
	}
	tier, ok := booking.ParseTier(req.TicketType)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.UserMessage(booking.ErrNoTicketType)})
	}
	ids := uniqueSeatIDs(req.SeatIDs)
	if len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.UserMessage(booking.ErrNoSeats)})
	}
	contact := booking.Contact{
		Name:  strings.TrimSpace(req.CustomerName),
		Email: strings.TrimSpace(req.CustomerEmail),
		Phone: strings.TrimSpace(req.CustomerPhone),
	}
	if contact.Name == "" || contact.Email == "" || contact.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.UserMessage(booking.ErrMissingContact)})
	}

	ctx := c.Request().Context()
	ev, err := h.Events.Default(ctx)
	if err != nil {
		h.logf("booking: default event: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	b := &model.Booking{
		EventID:       ev.ID,
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		TicketType:    string(tier),
		TotalAmount:   tier.Total(len(ids)),
	}
	seats, err := h.Bookings.Book(ctx, b, ids)
	if err != nil {
		var ue *repository.UnavailableError
		if errors.As(err, &ue) {
			return c.JSON(http.StatusConflict, wire.ErrorResponse{
				Error:       "some seats are no longer available",
				Unavailable: ue.Codes,
			})
		}
		h.logf("booking: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	codes := make([]string, len(seats))
	seatIDs := make([]catalog.SeatID, len(seats))
	for i, s := range seats {
		codes[i] = s.SeatCode
		seatIDs[i] = catalog.SeatID(s.ID)
	}

	resp := wire.BookingResponse{
		Message:      "Booking created successfully",
		BookingID:    b.Reference,
		CustomerName: b.CustomerName,
		TicketType:   b.TicketType,
		Seats:        codes,
		SeatIDs:      seatIDs,
		TotalAmount:  float64(b.TotalAmount),
	}
	if h.TicketSecret != "" {
		tok, err := utils.NewTicketToken(h.TicketSecret, b.Reference, h.TicketTTL)
		if err != nil {
			h.logf("booking: %s: ticket token: %v", b.Reference, err)
		} else {
			resp.TicketToken = tok.Token
		}
	}

	if h.Hub != nil {
		go h.Hub.BroadcastSeats(seatIDs)
	}
	h.publish(queue.BookingConfirmedEvent{
		BookingID:     b.Reference,
		EventID:       ev.ID,
		EventName:     ev.Name,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		TicketType:    b.TicketType,
		SeatIDs:       ids,
		Seats:         codes,
		TotalAmount:   b.TotalAmount,
		ConfirmedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, resp)
}

// GetMyTicket handles GET /api/tickets/me. TicketAuth must run first.
func (h *BookingHandler) GetMyTicket(c echo.Context) error {
	ref := middleware.BookingRef(c)
	if ref == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	det, err := h.Bookings.GetByReference(c.Request().Context(), ref)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, wire.Ticket{
		BookingID:    det.Booking.Reference,
		CustomerName: det.Booking.CustomerName,
		TicketType:   det.Booking.TicketType,
		Seats:        det.SeatCodes(),
		TotalAmount:  float64(det.Booking.TotalAmount),
		BookedAt:     det.Booking.CreatedAt.UTC(),
	})
}

func (h *BookingHandler) publish(ev queue.BookingConfirmedEvent) {
	if h.Publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.Publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			h.logf("booking: %s: publish event: %v", ev.BookingID, err)
		}
	}()
}

func (h *BookingHandler) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func uniqueSeatIDs(ids []catalog.SeatID) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[catalog.SeatID]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, uint64(id))
	}
	return out
}
