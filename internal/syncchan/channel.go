// Package syncchan keeps one logical push connection to the booking server
// and presents it as an ordered stream of typed events. Reconnection is
// hidden from consumers: a dropped or refused connection is retried after a
// fixed delay for as long as the channel runs.
package syncchan

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/clock"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// RetryDelay is the fixed pause between a close and the next connection
// attempt. There is no backoff, so many clients losing the server at once
// will all retry in lockstep.
const RetryDelay = 3000 * time.Millisecond

// State is the connection state of the channel.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Kind identifies the type of an Event.
type Kind int

const (
	KindInitialData Kind = iota + 1
	KindSeatUpdate
	KindStateChange
)

// Event is one decoded message or state transition. Only the fields
// matching Kind are set.
type Event struct {
	Kind Kind
	// Booked is the full booked set of an initial_data message.
	Booked []catalog.SeatID
	// Seats are the newly booked seats of a seat_update message, in the
	// order the server sent them.
	Seats []catalog.SeatID
	State State
}

// Channel is a self-reconnecting push connection. Create it with New,
// start it with Run and stop it by cancelling the context or calling Close.
type Channel struct {
	url        string
	dialer     *websocket.Dialer
	clock      clock.Clock
	retryDelay time.Duration
	logger     *log.Logger
	debug      bool

	events chan Event
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	state State
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock replaces the real clock, typically with a fake in tests.
func WithClock(c clock.Clock) Option { return func(ch *Channel) { ch.clock = c } }

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option { return func(ch *Channel) { ch.dialer = d } }

// WithLogger sets the observer for transport errors and diagnostics.
func WithLogger(l *log.Logger) Option { return func(ch *Channel) { ch.logger = l } }

// WithDebug logs ignored message types.
func WithDebug(on bool) Option { return func(ch *Channel) { ch.debug = on } }

// WithRetryDelay overrides RetryDelay.
func WithRetryDelay(d time.Duration) Option { return func(ch *Channel) { ch.retryDelay = d } }

// New returns a channel for the given ws:// or wss:// URL. See PushURL.
func New(url string, opts ...Option) *Channel {
	ch := &Channel{
		url:        url,
		dialer:     websocket.DefaultDialer,
		clock:      clock.Real(),
		retryDelay: RetryDelay,
		logger:     log.Default(),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		state:      StateClosed,
	}
	for _, o := range opts {
		o(ch)
	}
	return ch
}

// Events is the ordered event stream. It is closed when Run returns.
func (c *Channel) Events() <-chan Event { return c.events }

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close stops the channel: the socket is closed and any pending
// reconnection timer is cancelled. It is safe to call more than once.
func (c *Channel) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// Run connects and keeps reconnecting until ctx is cancelled or Close is
// called. Transport errors are logged and never end the loop. It must be
// called at most once.
func (c *Channel) Run(ctx context.Context) error {
	defer close(c.events)

	// dialCtx also ends on Close so a stalled handshake is abandoned.
	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-dialCtx.Done():
		}
	}()

	for {
		c.setState(ctx, StateConnecting)
		conn, _, err := c.dialer.DialContext(dialCtx, c.url, nil)
		if err != nil {
			if c.stopped(ctx) {
				return c.exitErr(ctx)
			}
			c.logger.Printf("syncchan: dial %s: %v", c.url, err)
		} else {
			c.setState(ctx, StateOpen)
			c.logger.Printf("syncchan: connected to %s", c.url)
			c.readLoop(ctx, conn)
		}
		c.setState(ctx, StateClosed)

		if !c.waitRetry(ctx) {
			return c.exitErr(ctx)
		}
	}
}

func (c *Channel) exitErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (c *Channel) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

// waitRetry arms the reconnection timer and reports whether to reconnect.
func (c *Channel) waitRetry(ctx context.Context) bool {
	if c.stopped(ctx) {
		return false
	}
	wake := make(chan struct{})
	timer := c.clock.AfterFunc(c.retryDelay, func() { close(wake) })
	select {
	case <-wake:
		return true
	case <-ctx.Done():
	case <-c.done:
	}
	timer.Stop()
	return false
}

// readLoop decodes messages until the connection fails or the channel is
// stopped.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	exited := make(chan struct{})
	defer close(exited)
	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		case <-exited:
		}
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !c.stopped(ctx) && !isNormalClose(err) {
				c.logger.Printf("syncchan: read: %v", err)
			}
			return
		}
		ev, ok := c.decode(data)
		if !ok {
			continue
		}
		if !c.emit(ctx, ev) {
			return
		}
	}
}

func isNormalClose(err error) bool {
	return err == io.EOF || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func (c *Channel) decode(data []byte) (Event, bool) {
	var msg wire.PushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Printf("syncchan: malformed message skipped: %v", err)
		return Event{}, false
	}
	switch msg.Type {
	case wire.TypeInitialData:
		if msg.Data == nil {
			c.logger.Printf("syncchan: initial_data without data skipped")
			return Event{}, false
		}
		return Event{Kind: KindInitialData, Booked: msg.Data.BookedSeats.IDs()}, true
	case wire.TypeSeatUpdate:
		if len(msg.Invalid) > 0 {
			c.logger.Printf("syncchan: invalid seat ids skipped: %v", msg.Invalid)
		}
		return Event{Kind: KindSeatUpdate, Seats: msg.UpdatedSeats()}, true
	default:
		if c.debug {
			c.logger.Printf("syncchan: ignoring message type %q", msg.Type)
		}
		return Event{}, false
	}
}

func (c *Channel) setState(ctx context.Context, s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed {
		c.emit(ctx, Event{Kind: KindStateChange, State: s})
	}
}

func (c *Channel) emit(ctx context.Context, ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
	case <-c.done:
	}
	return false
}
