// Package wire defines the JSON contracts shared by the seat map client and
// the booking server: the seat snapshot, the booking transaction and the
// push channel messages.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
)

// Push message types.
const (
	TypeInitialData = "initial_data"
	TypeSeatUpdate  = "seat_update"
)

// PushPath is the fixed path of the push channel.
const PushPath = "/ws"

// BookedSet is the bookedSeats object: seat id (as a string key) to a
// truthy value. Only present, truthy ids are booked; absent ids assert
// nothing.
type BookedSet map[catalog.SeatID]bool

// UnmarshalJSON accepts any JSON value per key and keeps the truthy ones.
// Keys that are not seat ids are skipped.
func (b *BookedSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(BookedSet, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if truthy(v) {
			out[catalog.SeatID(id)] = true
		}
	}
	*b = out
	return nil
}

// IDs returns the booked ids in ascending order.
func (b BookedSet) IDs() []catalog.SeatID {
	ids := make([]catalog.SeatID, 0, len(b))
	for id, ok := range b {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 't':
		return true
	case 'f', 'n':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return false
		}
		return s != "" && s != "false" && s != "0"
	case '{', '[':
		return true
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && f != 0
	}
}

// decodeSeatID decodes a seat id sent either as a JSON number or as a numeric
// string.
func decodeSeatID(data []byte) (catalog.SeatID, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		data = []byte(s)
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seat id %s", data)
	}
	return catalog.SeatID(n), nil
}

// SeatIDs is a list of seat ids that tolerates string-encoded elements.
type SeatIDs []catalog.SeatID

func (s *SeatIDs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SeatIDs, 0, len(raw))
	for _, r := range raw {
		id, err := decodeSeatID(r)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*s = out
	return nil
}

// SeatInfo describes one seat in the snapshot response.
type SeatInfo struct {
	ID       catalog.SeatID `json:"id"`
	Section  string         `json:"section"`
	Row      string         `json:"row"`
	Number   int            `json:"number"`
	SeatCode string         `json:"seatCode"`
	Status   string         `json:"status"`
	Price    float64        `json:"price"`
	IsVIP    bool           `json:"isVip"`
}

// SnapshotResponse is the body of GET /api/seats.
type SnapshotResponse struct {
	TotalSeats     int        `json:"totalSeats"`
	AvailableSeats int        `json:"availableSeats"`
	Seats          []SeatInfo `json:"seats,omitempty"`
	BookedSeats    BookedSet  `json:"bookedSeats"`
}

// BookingRequest is the body of POST /api/bookings.
type BookingRequest struct {
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	TicketType    string  `json:"ticketType"`
	SeatIDs       SeatIDs `json:"seatIds"`
}

// BookingResponse is the success body of POST /api/bookings.
type BookingResponse struct {
	Message      string   `json:"message,omitempty"`
	BookingID    string   `json:"bookingId"`
	CustomerName string   `json:"customerName,omitempty"`
	TicketType   string   `json:"ticketType,omitempty"`
	Seats        []string `json:"seats,omitempty"`
	SeatIDs      SeatIDs  `json:"seatIds,omitempty"`
	TotalAmount  float64  `json:"totalAmount"`
	TicketToken  string   `json:"ticketToken,omitempty"`
}

// ErrorResponse is the body of any non-2xx API response.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Unavailable []string `json:"unavailable,omitempty"`
}

// Ticket is the body of GET /api/tickets/me.
type Ticket struct {
	BookingID    string    `json:"bookingId"`
	CustomerName string    `json:"customerName"`
	TicketType   string    `json:"ticketType"`
	Seats        []string  `json:"seats"`
	TotalAmount  float64   `json:"totalAmount"`
	BookedAt     time.Time `json:"bookedAt"`
}

// Event is one row of GET /api/events.
type Event struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration"`
}

// InitialData is the payload of an initial_data push message.
type InitialData struct {
	BookedSeats BookedSet `json:"bookedSeats"`
}

// PushMessage is any message sent over the push channel. Seats is the
// documented key for seat_update; SeatIDs is accepted as an alias.
type PushMessage struct {
	Type    string       `json:"type"`
	Data    *InitialData `json:"data,omitempty"`
	Seats   SeatIDs      `json:"seats,omitempty"`
	SeatIDs SeatIDs      `json:"seatIds,omitempty"`

	// Invalid holds seat id elements that could not be decoded. They are
	// dropped from Seats and SeatIDs instead of failing the message.
	Invalid []string `json:"-"`
}

func (m *PushMessage) UnmarshalJSON(data []byte) error {
	type plain PushMessage
	var aux struct {
		plain
		Seats   []json.RawMessage `json:"seats"`
		SeatIDs []json.RawMessage `json:"seatIds"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = PushMessage(aux.plain)
	m.Invalid = nil
	m.Seats = m.lenientIDs(aux.Seats)
	m.SeatIDs = m.lenientIDs(aux.SeatIDs)
	return nil
}

func (m *PushMessage) lenientIDs(raw []json.RawMessage) SeatIDs {
	if raw == nil {
		return nil
	}
	out := make(SeatIDs, 0, len(raw))
	for _, r := range raw {
		id, err := decodeSeatID(r)
		if err != nil || id == 0 {
			m.Invalid = append(m.Invalid, string(r))
			continue
		}
		out = append(out, id)
	}
	return out
}

// UpdatedSeats returns the seat ids of a seat_update message.
func (m PushMessage) UpdatedSeats() []catalog.SeatID {
	if len(m.Seats) > 0 {
		return m.Seats
	}
	return m.SeatIDs
}

// NewInitialData builds an initial_data message.
func NewInitialData(booked BookedSet) PushMessage {
	if booked == nil {
		booked = BookedSet{}
	}
	return PushMessage{Type: TypeInitialData, Data: &InitialData{BookedSeats: booked}}
}

// NewSeatUpdate builds a seat_update message.
func NewSeatUpdate(ids []catalog.SeatID) PushMessage {
	return PushMessage{Type: TypeSeatUpdate, Seats: ids}
}
