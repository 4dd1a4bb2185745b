package model

// Seat statuses as stored in seats.status. Selection is a client-side
// notion and never reaches the database.
const (
	SeatAvailable = "available"
	SeatBooked    = "booked"
)

// Seat describes one seat of an event. Seat ids are assigned at seed time
// in layout order so they match the ids the seat map client generates.
//
// Fields:
//
//	ID         – primary key identifier, shared with the client catalog.
//	EventID    – event the seat is sold for.
//	Section    – section name (VIP, Premium, Standard).
//	RowLabel   – row letter.
//	SeatNumber – number of the seat within the row.
//	SeatCode   – display code, row letter followed by number.
//	IsVIP      – whether the seat belongs to a VIP section.
//	Price      – list price in whole dollars.
//	Status     – available or booked.
type Seat struct {
	ID         uint64 // seats.id
	EventID    uint64 // seats.event_id
	Section    string // seats.section
	RowLabel   string // seats.row_label
	SeatNumber uint32 // seats.seat_number
	SeatCode   string // seats.seat_code
	IsVIP      bool   // seats.is_vip
	Price      int    // seats.price
	Status     string // seats.status
}

// Booked reports whether the seat has been sold.
func (s Seat) Booked() bool { return s.Status == SeatBooked }
