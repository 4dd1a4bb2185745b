package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/theater-seat-booking/internal/model"
)

// BookingRepo stores bookings and the seats they own. Book runs the whole
// purchase in one transaction together with the seat updates.
type BookingRepo struct {
	db    *sql.DB
	seats *SeatRepo
	now   func() time.Time
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, seats *SeatRepo) *BookingRepo {
	return &BookingRepo{db: db, seats: seats, now: time.Now}
}

// NewReference returns a fresh public booking id of the form TKT-XXXXXXXX.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TKT-" + strings.ToUpper(id[:8])
}

// BookingDetail is a booking together with its seats.
type BookingDetail struct {
	Booking model.Booking
	Seats   []model.Seat
}

// SeatCodes returns the display codes of the booked seats.
func (d BookingDetail) SeatCodes() []string {
	codes := make([]string, len(d.Seats))
	for i, s := range d.Seats {
		codes[i] = s.SeatCode
	}
	return codes
}

// CreateTx inserts a booking within an existing transaction and fills in
// its generated ID. The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, event_id, customer_name, customer_email, customer_phone, ticket_type, total_amount, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now().UTC().Truncate(time.Second)
	}
	res, err := tx.ExecContext(ctx, q, b.Reference, b.EventID, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.TicketType, b.TotalAmount, b.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// LinkSeatsTx inserts one booking_seats row per seat in a single
// statement. Passing no seats has no effect.
func (r *BookingRepo) LinkSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Book sells seatIDs of b.EventID to the customer in b. The seats are
// locked first; if any of them is booked or unknown nothing is written and
// an *UnavailableError is returned. On success b carries its id and
// reference and the booked seats are returned in request order.
func (r *BookingRepo) Book(ctx context.Context, b *model.Booking, seatIDs []uint64) ([]model.Seat, error) {
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return nil, errors.New("no seats requested")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	locked, err := r.seats.LockTx(ctx, tx, b.EventID, ids)
	if err != nil {
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	byID := make(map[uint64]model.Seat, len(locked))
	for _, s := range locked {
		byID[s.ID] = s
	}
	var unavailable []string
	seats := make([]model.Seat, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		switch {
		case !ok:
			unavailable = append(unavailable, fmt.Sprintf("#%d", id))
		case s.Booked():
			unavailable = append(unavailable, s.SeatCode)
		default:
			s.Status = model.SeatBooked
			seats = append(seats, s)
		}
	}
	if len(unavailable) > 0 {
		return nil, &UnavailableError{Codes: unavailable}
	}

	if b.Reference == "" {
		b.Reference = NewReference()
	}
	if err := r.CreateTx(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	n, err := r.seats.MarkBookedTx(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("update seats: %w", err)
	}
	if n != int64(len(ids)) {
		// Rows are locked, so this only happens if the lock was not honoured.
		return nil, fmt.Errorf("update seats: %d of %d rows changed", n, len(ids))
	}
	if err := r.LinkSeatsTx(ctx, tx, b.ID, ids); err != nil {
		return nil, fmt.Errorf("link seats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return seats, nil
}

// GetByReference loads a booking and its seats by public id. It returns
// ErrNotFound when no booking has that reference.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*BookingDetail, error) {
	const q = `SELECT id, reference, event_id, customer_name, customer_email, customer_phone, ticket_type, total_amount, created_at FROM bookings WHERE reference = ?`
	var det BookingDetail
	b := &det.Booking
	err := r.db.QueryRowContext(ctx, q, ref).Scan(
		&b.ID, &b.Reference, &b.EventID, &b.CustomerName, &b.CustomerEmail,
		&b.CustomerPhone, &b.TicketType, &b.TotalAmount, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	const seatsQ = `SELECT s.id, s.event_id, s.section, s.row_label, s.seat_number, s.seat_code, s.is_vip, s.price, s.status FROM booking_seats bs JOIN seats s ON s.id = bs.seat_id WHERE bs.booking_id = ? ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, seatsQ, b.ID)
	if err != nil {
		return nil, err
	}
	if det.Seats, err = scanSeats(rows); err != nil {
		return nil, err
	}
	return &det, nil
}

func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
