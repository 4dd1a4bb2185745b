package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadOrigin(t *testing.T) {
	for _, origin := range []string{"ws://host", "host:8080", "http://"} {
		_, err := New(origin)
		assert.Error(t, err, origin)
	}
	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.Origin())
}

func TestFetchSnapshot(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/seats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalSeats":245,"availableSeats":243,"bookedSeats":{"12":true,"4":1,"7":false}}`))
	}))

	ids, err := c.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.SeatID{4, 12}, ids)
}

func TestSubmitBooking(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req wire.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, wire.SeatIDs{1, 2}, req.SeatIDs)
		assert.Equal(t, "vip", req.TicketType)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(wire.BookingResponse{BookingID: "TKT-abc", TotalAmount: 110, TicketToken: "jwt"})
	}))

	resp, err := c.SubmitBooking(context.Background(), wire.BookingRequest{
		CustomerName: "A", CustomerEmail: "a@b", CustomerPhone: "1",
		TicketType: "vip", SeatIDs: wire.SeatIDs{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-abc", resp.BookingID)
	assert.Equal(t, "jwt", resp.TicketToken)
}

func TestSubmitBookingRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"seats no longer available","unavailable":["A1"]}`))
	}))

	_, err := c.SubmitBooking(context.Background(), wire.BookingRequest{SeatIDs: wire.SeatIDs{1}})
	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, http.StatusConflict, rej.Status)
	assert.Equal(t, "seats no longer available (A1)", rej.Message)
}

func TestTransportFailureIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := NewWithHTTPClient(srv.URL, srv.Client())
	require.NoError(t, err)
	srv.Close()

	_, err = c.SubmitBooking(context.Background(), wire.BookingRequest{})
	require.Error(t, err)
	var rej *RejectedError
	assert.False(t, errors.As(err, &rej))
}

func TestFetchTicketSendsBearer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"missing ticket token"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(wire.Ticket{BookingID: "TKT-abc", Seats: []string{"A1"}})
	}))

	tk, err := c.FetchTicket(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "TKT-abc", tk.BookingID)

	_, err = c.FetchTicket(context.Background(), "")
	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, http.StatusUnauthorized, rej.Status)
	assert.Equal(t, "missing ticket token", rej.Message)
}
