package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seat-booking/internal/model"
)

var seatCols = []string{"id", "event_id", "section", "row_label", "seat_number", "seat_code", "is_vip", "price", "status"}

func newRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewBookingRepo(db, NewSeatRepo(db))
	repo.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return repo, mock
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		Reference:     "TKT-TEST0001",
		EventID:       1,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "555-0100",
		TicketType:    "premium",
		TotalAmount:   80,
	}
}

func TestBookCommitsSeatsAndLinks(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM seats WHERE event_id = ? AND id IN (?, ?) ORDER BY id FOR UPDATE`)).
		WithArgs(1, 24, 23).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(23, 1, "Premium", "A", 3, "A3", false, 35, "available").
			AddRow(24, 1, "Premium", "A", 4, "A4", false, 35, "available"))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs("TKT-TEST0001", 1, "Ada", "ada@example.com", "555-0100", "premium", 80, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE seats SET status = ? WHERE status = ? AND id IN (?, ?)`)).
		WithArgs("booked", "available", 24, 23).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WithArgs(9, 24, 9, 23).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	b := sampleBooking()
	seats, err := repo.Book(context.Background(), b, []uint64{24, 23, 24})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), b.ID)
	require.Len(t, seats, 2)
	assert.Equal(t, "A4", seats[0].SeatCode, "request order is kept")
	assert.True(t, seats[1].Booked())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsBookedAndUnknownSeats(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(1, 3, 400).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(3, 1, "VIP", "A", 3, "A3", true, 50, "booked"))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), sampleBooking(), []uint64{3, 400})
	require.ErrorIs(t, err, ErrSeatsUnavailable)
	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"A3", "#400"}, ue.Codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookAssignsReference(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(5, 1, "VIP", "A", 5, "A5", true, 50, "available"))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE seats`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO booking_seats`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b := sampleBooking()
	b.Reference = ""
	_, err := repo.Book(context.Background(), b, []uint64{5})
	require.NoError(t, err)
	assert.Regexp(t, `^TKT-[0-9A-F]{8}$`, b.Reference)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), b.CreatedAt)
}

func TestBookFailsWhenUpdateMissesRows(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(5, 1, "VIP", "A", 5, "A5", true, 50, "available"))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE seats`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), sampleBooking(), []uint64{5})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSeatsUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRequiresSeats(t *testing.T) {
	repo, mock := newRepo(t)
	_, err := repo.Book(context.Background(), sampleBooking(), []uint64{0})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByReference(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bookings WHERE reference = \?`).
		WithArgs("TKT-TEST0001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "event_id", "customer_name", "customer_email", "customer_phone", "ticket_type", "total_amount", "created_at"}).
			AddRow(9, "TKT-TEST0001", 1, "Ada", "ada@example.com", "555-0100", "vip", 55, created))
	mock.ExpectQuery(`FROM booking_seats bs JOIN seats s`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(2, 1, "VIP", "A", 2, "A2", true, 50, "booked"))

	det, err := repo.GetByReference(context.Background(), "TKT-TEST0001")
	require.NoError(t, err)
	assert.Equal(t, "Ada", det.Booking.CustomerName)
	assert.Equal(t, created, det.Booking.CreatedAt)
	assert.Equal(t, []string{"A2"}, det.SeatCodes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByReferenceNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM bookings`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByReference(context.Background(), "TKT-NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}
