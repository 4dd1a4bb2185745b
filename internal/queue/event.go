// Package queue defines the booking event carried over RabbitMQ and the
// consumer that records it.
package queue

// BookingQueue is the durable queue confirmed bookings are published to.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a booking commits. It carries
// enough for downstream consumers to log, notify or report without
// querying the database.
type BookingConfirmedEvent struct {
	BookingID     string   `json:"booking_id"`
	EventID       uint64   `json:"event_id"`
	EventName     string   `json:"event_name"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	TicketType    string   `json:"ticket_type"`
	SeatIDs       []uint64 `json:"seat_ids"`
	Seats         []string `json:"seats"`
	TotalAmount   int      `json:"total_amount"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
