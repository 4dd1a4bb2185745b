package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seat-booking/internal/hub"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// PushHandler upgrades GET /ws to the push channel.
type PushHandler struct {
	Hub    *hub.Hub
	Events EventStore
	Seats  SeatStore
}

// Serve handles GET /ws. The connection starts with initial_data for the
// default event and then receives every seat_update broadcast. Upgrade
// failures have already been answered by the upgrader.
func (h *PushHandler) Serve(c echo.Context) error {
	_ = h.Hub.Serve(c.Response(), c.Request(), h.snapshot)
	return nil
}

func (h *PushHandler) snapshot(ctx context.Context) (wire.BookedSet, error) {
	ev, err := h.Events.Default(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := h.Seats.BookedIDs(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	return bookedSet(ids), nil
}
