package session

import (
	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/syncchan"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// View is a snapshot of the session for rendering. It shares no memory
// with the session.
type View struct {
	Layout    catalog.Layout
	Seats     []catalog.Seat
	Counts    catalog.Counts
	Available int
	Total     int

	Tier     booking.Tier
	Contact  booking.Contact
	Summary  booking.Summary
	InFlight bool
	Notice   *booking.Notice

	Channel      syncchan.State
	SnapshotErr  string
	Confirmation *booking.Confirmed
	Ticket       *wire.Ticket
	TicketErr    string
}

// Seat returns the seat with id from the view.
func (v View) Seat(id catalog.SeatID) (catalog.Seat, bool) {
	for _, s := range v.Seats {
		if s.ID == id {
			return s, true
		}
	}
	return catalog.Seat{}, false
}

func (s *Session) view() View {
	sections := make([]catalog.Section, len(s.cat.Layout().Sections))
	copy(sections, s.cat.Layout().Sections)

	v := View{
		Layout:    catalog.Layout{Sections: sections},
		Seats:     s.cat.Seats(),
		Counts:    s.cat.Counts(),
		Available: s.cat.AvailableCount(),
		Total:     s.cat.Len(),
		Tier:      s.flow.Tier(),
		Contact:   s.flow.Contact(),
		Summary:   s.flow.Summary(),
		InFlight:  s.flow.InFlight(),
		Channel:   s.channelState,
		TicketErr: s.ticketErr,
	}
	if s.snapshotErr != nil {
		v.SnapshotErr = s.snapshotErr.Error()
	}
	if n, ok := s.flow.Notice(); ok {
		v.Notice = &n
	}
	if c, ok := s.flow.Confirmation(); ok {
		c.SeatIDs = append([]catalog.SeatID(nil), c.SeatIDs...)
		c.SeatCodes = append([]string(nil), c.SeatCodes...)
		v.Confirmation = &c
	}
	if s.ticket != nil {
		t := *s.ticket
		t.Seats = append([]string(nil), t.Seats...)
		v.Ticket = &t
	}
	return v
}
