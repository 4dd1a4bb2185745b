// Package catalog owns the client's seat map: the static layout generated
// once per session and the current status of every seat in it.
//
// A Catalog is not safe for concurrent use. The session serializes every
// mutation onto a single goroutine.
package catalog

import (
	"fmt"
	"strconv"
)

// SeatID is the only seat identity exchanged with the server. It is
// assigned at generation time and never reused.
type SeatID uint64

func (id SeatID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Status is the rendering state of a seat. The tier is folded in for
// unselected, unbooked seats: a VIP seat rests at StatusVIP rather than
// StatusAvailable.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSelected  Status = "selected"
	StatusVIP       Status = "vip-available"
	StatusBooked    Status = "booked"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusSelected, StatusVIP, StatusBooked:
		return true
	}
	return false
}

// Seat is a single bookable unit. Code, Section, Row and Number are
// display values derived from the layout.
type Seat struct {
	ID      SeatID
	Code    string
	Section string
	Row     string
	Number  int
	VIP     bool
	Status  Status
	// JustBooked is set while the "just booked" highlight is visible. It
	// never changes Status or the counts.
	JustBooked bool
}

// Counts is a tally of seats per status.
type Counts struct {
	Available int
	VIP       int
	Selected  int
	Booked    int
}

// Total is the sum of all statuses and always equals the catalog size.
func (c Counts) Total() int { return c.Available + c.VIP + c.Selected + c.Booked }

// Catalog maps seat ids to seats in generation order.
type Catalog struct {
	layout Layout
	order  []SeatID
	seats  map[SeatID]*Seat
}

// Generate builds the catalog for a layout. Row letters restart at A in
// every section; ids are one counter across the whole layout, starting
// at 1.
func Generate(layout Layout) (*Catalog, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		layout: layout,
		order:  make([]SeatID, 0, layout.Total()),
		seats:  make(map[SeatID]*Seat, layout.Total()),
	}
	next := SeatID(1)
	for _, sec := range layout.Sections {
		if sec.Aisle {
			continue
		}
		for row := 1; row <= sec.Rows; row++ {
			letter := string(rune('A' - 1 + row))
			for num := 1; num <= sec.SeatsPerRow; num++ {
				c.seats[next] = &Seat{
					ID:      next,
					Code:    fmt.Sprintf("%s%d", letter, num),
					Section: sec.Name,
					Row:     letter,
					Number:  num,
					VIP:     sec.VIP,
					Status:  restingStatus(sec.VIP),
				}
				c.order = append(c.order, next)
				next++
			}
		}
	}
	return c, nil
}

func restingStatus(vip bool) Status {
	if vip {
		return StatusVIP
	}
	return StatusAvailable
}

// Layout returns the layout the catalog was generated from.
func (c *Catalog) Layout() Layout { return c.layout }

// Len is the number of generated seats.
func (c *Catalog) Len() int { return len(c.order) }

// Get returns a copy of the seat with the given id.
func (c *Catalog) Get(id SeatID) (Seat, bool) {
	s, ok := c.seats[id]
	if !ok {
		return Seat{}, false
	}
	return *s, true
}

// SetStatus sets the status of an existing seat. It returns false for
// unknown ids or invalid statuses. Setting a booked seat to booked again
// is a no-op. StatusAvailable on a VIP seat rests it at StatusVIP so the
// tier is never lost.
func (c *Catalog) SetStatus(id SeatID, st Status) bool {
	s, ok := c.seats[id]
	if !ok || !st.Valid() {
		return false
	}
	if st == StatusAvailable || st == StatusVIP {
		st = restingStatus(s.VIP)
	}
	s.Status = st
	return true
}

// IsSelectable reports whether the visitor may select the seat.
func (c *Catalog) IsSelectable(id SeatID) bool {
	s, ok := c.seats[id]
	return ok && s.Status != StatusBooked
}

// Select marks a seat as the visitor's selection. Booked and unknown
// seats are refused.
func (c *Catalog) Select(id SeatID) bool {
	s, ok := c.seats[id]
	if !ok || s.Status == StatusBooked {
		return false
	}
	s.Status = StatusSelected
	return true
}

// Deselect returns a selected seat to its resting status.
func (c *Catalog) Deselect(id SeatID) bool {
	s, ok := c.seats[id]
	if !ok || s.Status != StatusSelected {
		return false
	}
	s.Status = restingStatus(s.VIP)
	return true
}

// Toggle flips the selection of a seat and reports the new selection
// state. ok is false when the seat is unknown or booked.
func (c *Catalog) Toggle(id SeatID) (selected, ok bool) {
	s, found := c.seats[id]
	if !found || s.Status == StatusBooked {
		return false, false
	}
	if s.Status == StatusSelected {
		return false, c.Deselect(id)
	}
	return true, c.Select(id)
}

// SetJustBooked sets or clears the highlight flag of a seat.
func (c *Catalog) SetJustBooked(id SeatID, on bool) bool {
	s, ok := c.seats[id]
	if !ok {
		return false
	}
	s.JustBooked = on
	return true
}

// SelectedIDs returns the selected seat ids in generation order.
func (c *Catalog) SelectedIDs() []SeatID {
	var ids []SeatID
	for _, id := range c.order {
		if c.seats[id].Status == StatusSelected {
			ids = append(ids, id)
		}
	}
	return ids
}

// AvailableCount is the number of seats that are not booked. VIP and
// selected seats both count, matching the public counter.
func (c *Catalog) AvailableCount() int {
	return len(c.order) - c.Counts().Booked
}

// Counts tallies seats per status.
func (c *Catalog) Counts() Counts {
	var n Counts
	for _, s := range c.seats {
		switch s.Status {
		case StatusAvailable:
			n.Available++
		case StatusVIP:
			n.VIP++
		case StatusSelected:
			n.Selected++
		case StatusBooked:
			n.Booked++
		}
	}
	return n
}

// Seats returns copies of all seats in generation order.
func (c *Catalog) Seats() []Seat {
	out := make([]Seat, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.seats[id])
	}
	return out
}
