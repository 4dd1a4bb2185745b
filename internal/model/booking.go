package model

import "time"

// Booking records one confirmed purchase. A booking owns one or more
// seats through the booking_seats join table.
//
// Fields:
//
//	ID            – primary key identifier.
//	Reference     – public booking id (TKT-xxxxxxxx).
//	EventID       – event the seats belong to.
//	CustomerName  – name given on the booking form.
//	CustomerEmail – contact email.
//	CustomerPhone – contact phone.
//	TicketType    – standard, premium or vip.
//	TotalAmount   – amount charged in whole dollars, fees included.
//	CreatedAt     – when the booking was committed.
type Booking struct {
	ID            uint64    // bookings.id
	Reference     string    // bookings.reference
	EventID       uint64    // bookings.event_id
	CustomerName  string    // bookings.customer_name
	CustomerEmail string    // bookings.customer_email
	CustomerPhone string    // bookings.customer_phone
	TicketType    string    // bookings.ticket_type
	TotalAmount   int       // bookings.total_amount
	CreatedAt     time.Time // bookings.created_at
}

// BookingSeat links a booking to a seat.
type BookingSeat struct {
	BookingID uint64 // booking_seats.booking_id
	SeatID    uint64 // booking_seats.seat_id
}
