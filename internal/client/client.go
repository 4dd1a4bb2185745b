// Package client is the request/response side of the booking API: the
// seat snapshot, booking submission and ticket retrieval. The push side
// lives in syncchan.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// DefaultTimeout bounds every request made with New.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

// RejectedError is a non-2xx answer from the server.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request: HTTP %d", e.Status)
	}
	return fmt.Sprintf("server rejected request: HTTP %d: %s", e.Status, e.Message)
}

// Client talks to the booking API under one origin.
type Client struct {
	httpClient *http.Client
	origin     *url.URL
}

// New returns a client for origin, e.g. "http://localhost:8080".
func New(origin string) (*Client, error) {
	return NewWithHTTPClient(origin, &http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient uses hc for every request. Tests pass the client of
// an httptest.Server.
func NewWithHTTPClient(origin string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(origin), "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse origin: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: origin %q must be http or https", origin)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("client: origin %q has no host", origin)
	}
	return &Client{httpClient: hc, origin: u}, nil
}

// Origin returns the origin the client was configured with.
func (c *Client) Origin() string { return c.origin.String() }

// FetchSnapshot returns the ids the server currently reports as booked.
func (c *Client) FetchSnapshot(ctx context.Context) ([]catalog.SeatID, error) {
	var snap wire.SnapshotResponse
	if err := c.do(ctx, http.MethodGet, "/api/seats", "", nil, &snap); err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	return snap.BookedSeats.IDs(), nil
}

// SubmitBooking posts a booking. It makes exactly one attempt.
func (c *Client) SubmitBooking(ctx context.Context, req wire.BookingRequest) (wire.BookingResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return wire.BookingResponse{}, fmt.Errorf("submit booking: %w", err)
	}
	var resp wire.BookingResponse
	if err := c.do(ctx, http.MethodPost, "/api/bookings", "", bytes.NewReader(body), &resp); err != nil {
		return wire.BookingResponse{}, fmt.Errorf("submit booking: %w", err)
	}
	return resp, nil
}

// FetchTicket returns the booking a ticket token was issued for.
func (c *Client) FetchTicket(ctx context.Context, token string) (wire.Ticket, error) {
	var t wire.Ticket
	if err := c.do(ctx, http.MethodGet, "/api/tickets/me", token, nil, &t); err != nil {
		return wire.Ticket{}, fmt.Errorf("fetch ticket: %w", err)
	}
	return t, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, out any) error {
	u := *c.origin
	u.Path = path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failed response, falling
// back to the raw text.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var e wire.ErrorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		if len(e.Unavailable) > 0 {
			return e.Error + " (" + strings.Join(e.Unavailable, ", ") + ")"
		}
		return e.Error
	}
	return strings.TrimSpace(string(data))
}
