// Package session owns the client's state and serializes every change to
// it onto one goroutine.
//
// Visitor input, push channel events, network completions and timer
// expiries are all posted as reactions to the session loop and run one at
// a time in arrival order. Only the loop touches the catalog and the
// booking flow; everything else talks to it by posting. After every
// reaction the observer receives a fresh, immutable View.
package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/client"
	"github.com/iliyamo/theater-seat-booking/internal/clock"
	"github.com/iliyamo/theater-seat-booking/internal/reconcile"
	"github.com/iliyamo/theater-seat-booking/internal/syncchan"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

const (
	// FlashDuration is how long a seat booked by someone else stays
	// highlighted.
	FlashDuration = 1000 * time.Millisecond
	// NoticeDuration is how long a notice stays visible.
	NoticeDuration = 5000 * time.Millisecond
)

// Backend is the request/response API. *client.Client implements it.
type Backend interface {
	FetchSnapshot(ctx context.Context) ([]catalog.SeatID, error)
	SubmitBooking(ctx context.Context, req wire.BookingRequest) (wire.BookingResponse, error)
	FetchTicket(ctx context.Context, token string) (wire.Ticket, error)
}

// Feed is the push channel. *syncchan.Channel implements it.
type Feed interface {
	Run(ctx context.Context) error
	Events() <-chan syncchan.Event
}

// Observer receives a view after every reaction. It is called on the
// session goroutine and must not block.
type Observer func(View)

// Config wires a Session. Catalog and Backend are required.
type Config struct {
	Catalog  *catalog.Catalog
	Backend  Backend
	Feed     Feed
	Clock    clock.Clock
	Logger   *log.Logger
	Observer Observer
}

// Session is the single owner of the catalog and the booking flow.
type Session struct {
	cat      *catalog.Catalog
	rec      *reconcile.Reconciler
	flow     *booking.Flow
	backend  Backend
	feed     Feed
	clock    clock.Clock
	logger   *log.Logger
	observer Observer

	actions chan func()
	done    chan struct{}

	// Owned by the loop goroutine.
	ctx          context.Context
	channelState syncchan.State
	snapshotErr  error
	ticket       *wire.Ticket
	ticketErr    string
	fetching     bool
}

// New builds a session. Nothing runs until Run is called.
func New(cfg Config) (*Session, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("session: catalog is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("session: backend is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Session{
		cat:          cfg.Catalog,
		rec:          reconcile.New(cfg.Catalog),
		flow:         booking.New(cfg.Catalog),
		backend:      cfg.Backend,
		feed:         cfg.Feed,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		observer:     cfg.Observer,
		actions:      make(chan func(), 128),
		done:         make(chan struct{}),
		channelState: syncchan.StateClosed,
	}, nil
}

// SetObserver replaces the observer. It must be called before Run.
func (s *Session) SetObserver(o Observer) { s.observer = o }

// Run starts the snapshot fetch and the push feed, then executes
// reactions until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(s.done)
	s.ctx = ctx

	go s.loadSnapshot(ctx)
	if s.feed != nil {
		go func() {
			if err := s.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Printf("session: push channel stopped: %v", err)
			}
		}()
		go s.forward(ctx, s.feed.Events())
	}

	s.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.actions:
			fn()
			s.publish()
		}
	}
}

// post queues fn for the loop. It drops fn once the session has ended.
func (s *Session) post(fn func()) {
	select {
	case s.actions <- fn:
	case <-s.done:
	}
}

func (s *Session) forward(ctx context.Context, events <-chan syncchan.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.post(func() { s.handleEvent(ev) })
		}
	}
}

func (s *Session) loadSnapshot(ctx context.Context) {
	ids, err := s.backend.FetchSnapshot(ctx)
	s.post(func() {
		if err != nil {
			// The catalog stays at its generated defaults; the push channel
			// will still deliver initial_data.
			s.snapshotErr = err
			s.logger.Printf("session: snapshot: %v", err)
			return
		}
		s.snapshotErr = nil
		ch := s.rec.ApplySnapshot(ids)
		s.logChange("snapshot", ch)
	})
}

func (s *Session) handleEvent(ev syncchan.Event) {
	switch ev.Kind {
	case syncchan.KindStateChange:
		s.channelState = ev.State
	case syncchan.KindInitialData:
		s.logChange("initial_data", s.rec.ApplySnapshot(ev.Booked))
	case syncchan.KindSeatUpdate:
		ch := s.rec.ApplyIncremental(ev.Seats)
		s.logChange("seat_update", ch)
		if !ch.Empty() {
			settled := ch.Booked
			s.clock.AfterFunc(FlashDuration, func() {
				s.post(func() { s.rec.Settle(settled) })
			})
		}
	}
}

func (s *Session) logChange(source string, ch reconcile.Change) {
	if len(ch.Unknown) > 0 {
		s.logger.Printf("session: %s: ignoring unknown seat ids %v", source, ch.Unknown)
	}
	if ch.SelectionChanged() {
		s.logger.Printf("session: %s: selected seats %v were booked elsewhere", source, ch.Deselected)
	}
}

func (s *Session) scheduleClear(n booking.Notice) {
	seq := n.Seq
	s.clock.AfterFunc(NoticeDuration, func() {
		s.post(func() { s.flow.ClearNotice(seq) })
	})
}

// ToggleSeat selects or deselects a seat. Booked seats are ignored.
func (s *Session) ToggleSeat(id catalog.SeatID) {
	s.post(func() { s.cat.Toggle(id) })
}

// SelectTier sets the ticket type.
func (s *Session) SelectTier(t booking.Tier) {
	s.post(func() { s.flow.SelectTier(t) })
}

// SetContact replaces the personal information fields.
func (s *Session) SetContact(c booking.Contact) {
	s.post(func() { s.flow.SetContact(c) })
}

// DismissNotice hides the current notice before its timeout.
func (s *Session) DismissNotice() {
	s.post(func() {
		if n, ok := s.flow.Notice(); ok {
			s.flow.ClearNotice(n.Seq)
		}
	})
}

// Submit validates the form and, if it passes, sends the booking. The
// result is applied in a later reaction. A submit while one is pending is
// ignored.
func (s *Session) Submit() {
	s.post(s.submit)
}

func (s *Session) submit() {
	sub, err := s.flow.Compose()
	if errors.Is(err, booking.ErrInFlight) {
		return
	}
	if err != nil {
		if n, ok := s.flow.Notice(); ok {
			s.scheduleClear(n)
		}
		return
	}

	ctx := s.ctx
	go func() {
		resp, err := s.backend.SubmitBooking(ctx, sub.Request)
		var res booking.Result
		if err != nil {
			var rej *client.RejectedError
			if errors.As(err, &rej) {
				s.logger.Printf("session: booking rejected: status=%d message=%q", rej.Status, rej.Message)
			} else {
				s.logger.Printf("session: booking failed: %v", err)
			}
			res = booking.Failed{Err: err}
		} else {
			res = booking.Confirm(sub, resp)
		}
		s.post(func() { s.scheduleClear(s.flow.ApplyResult(res)) })
	}()
}

// FetchTicket retrieves the ticket of the last confirmed booking.
func (s *Session) FetchTicket() {
	s.post(s.fetchTicket)
}

func (s *Session) fetchTicket() {
	conf, ok := s.flow.Confirmation()
	if !ok || conf.TicketToken == "" || s.fetching {
		return
	}
	s.fetching = true
	ctx := s.ctx
	go func() {
		t, err := s.backend.FetchTicket(ctx, conf.TicketToken)
		s.post(func() {
			s.fetching = false
			if err != nil {
				s.logger.Printf("session: fetch ticket: %v", err)
				s.ticket = nil
				s.ticketErr = "Could not load your ticket. Please try again."
				return
			}
			s.ticket = &t
			s.ticketErr = ""
		})
	}()
}

func (s *Session) publish() {
	if s.observer != nil {
		s.observer(s.view())
	}
}
