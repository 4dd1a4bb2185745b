// Package booking captures the visitor's booking form, validates it,
// composes the submission and applies the server's answer to the catalog.
//
// A Flow is driven by a single goroutine, the session loop. Validation and
// composition happen in one call before any network traffic; the outcome is
// applied later, in one call, through ApplyResult.
package booking

import (
	"errors"
	"strings"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// Validation errors, checked in this order.
var (
	ErrNoTicketType   = errors.New("booking: no ticket type selected")
	ErrNoSeats        = errors.New("booking: no seats selected")
	ErrMissingContact = errors.New("booking: personal information incomplete")
)

// ErrInFlight is returned by Compose while a submission is pending.
var ErrInFlight = errors.New("booking: submission already in flight")

// FailureText is shown for every transport failure and server rejection.
const FailureText = "There was an error processing your booking. Please try again."

// FallbackBookingID is shown when the server confirms without a booking id.
const FallbackBookingID = "TKT-12345"

// UserMessage is the text shown to the visitor for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoTicketType):
		return "Please select a ticket type"
	case errors.Is(err, ErrNoSeats):
		return "Please select at least one seat"
	case errors.Is(err, ErrMissingContact):
		return "Please fill in all personal information fields"
	}
	return FailureText
}

// Contact holds the personal information fields of the form.
type Contact struct {
	Name  string
	Email string
	Phone string
}

func (c Contact) complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Email) != "" &&
		strings.TrimSpace(c.Phone) != ""
}

// Result is the outcome of one submission: Confirmed or Failed.
type Result interface {
	isResult()
}

// Confirmed is a successful booking.
type Confirmed struct {
	BookingID    string
	TicketToken  string
	CustomerName string
	Tier         Tier
	SeatIDs      []catalog.SeatID
	SeatCodes    []string
	TotalAmount  float64
	// Seq numbers the confirmations of a flow from 1. Booking ids can
	// repeat (see FallbackBookingID), Seq does not.
	Seq uint64
}

// Failed is a transport failure or a server rejection.
type Failed struct {
	Err error
}

func (Confirmed) isResult() {}
func (Failed) isResult()    {}

// NoticeKind distinguishes error notices from confirmations.
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeSuccess
)

// Notice is a user-visible message. Seq identifies it so that a delayed
// clear only removes the notice it was scheduled for.
type Notice struct {
	Kind NoticeKind
	Text string
	Seq  uint64
}

// Submission is a composed booking request plus what is needed to apply
// its result.
type Submission struct {
	Request wire.BookingRequest
	Tier    Tier
	SeatIDs []catalog.SeatID
	Codes   []string
}

// Flow is the booking form state bound to a catalog.
type Flow struct {
	cat      *catalog.Catalog
	tier     Tier
	contact  Contact
	inFlight bool

	notice     *Notice
	noticeSeq  uint64
	confirmed  *Confirmed
	confirmSeq uint64
}

// New returns an empty flow for cat.
func New(cat *catalog.Catalog) *Flow {
	return &Flow{cat: cat}
}

func (f *Flow) SelectTier(t Tier)    { f.tier = t }
func (f *Flow) Tier() Tier           { return f.tier }
func (f *Flow) SetContact(c Contact) { f.contact = c }
func (f *Flow) Contact() Contact     { return f.contact }

// InFlight reports whether a submission is awaiting its result.
func (f *Flow) InFlight() bool { return f.inFlight }

// Notice returns the current notice, if any.
func (f *Flow) Notice() (Notice, bool) {
	if f.notice == nil {
		return Notice{}, false
	}
	return *f.notice, true
}

// ClearNotice removes the notice with the given seq. It reports false if
// a newer notice has replaced it.
func (f *Flow) ClearNotice(seq uint64) bool {
	if f.notice == nil || f.notice.Seq != seq {
		return false
	}
	f.notice = nil
	return true
}

// Confirmation returns the last successful booking.
func (f *Flow) Confirmation() (Confirmed, bool) {
	if f.confirmed == nil {
		return Confirmed{}, false
	}
	return *f.confirmed, true
}

// Summary recomputes the price breakdown from the current selection.
func (f *Flow) Summary() Summary {
	return Summarize(f.tier, f.selectedCodes(f.cat.SelectedIDs()))
}

func (f *Flow) selectedCodes(ids []catalog.SeatID) []string {
	codes := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.cat.Get(id); ok {
			codes = append(codes, s.Code)
		}
	}
	return codes
}

func (f *Flow) setNotice(kind NoticeKind, text string) Notice {
	f.noticeSeq++
	f.notice = &Notice{Kind: kind, Text: text, Seq: f.noticeSeq}
	return *f.notice
}

// Compose validates the form and builds the submission. A validation
// failure sets an error notice and returns the matching sentinel; no
// state other than the notice changes. On success the flow is marked in
// flight until ApplyResult.
func (f *Flow) Compose() (Submission, error) {
	if f.inFlight {
		return Submission{}, ErrInFlight
	}
	ids := f.cat.SelectedIDs()
	var err error
	switch {
	case f.tier == TierNone:
		err = ErrNoTicketType
	case len(ids) == 0:
		err = ErrNoSeats
	case !f.contact.complete():
		err = ErrMissingContact
	}
	if err != nil {
		f.setNotice(NoticeError, UserMessage(err))
		return Submission{}, err
	}

	f.inFlight = true
	return Submission{
		Request: wire.BookingRequest{
			CustomerName:  f.contact.Name,
			CustomerEmail: f.contact.Email,
			CustomerPhone: f.contact.Phone,
			TicketType:    string(f.tier),
			SeatIDs:       wire.SeatIDs(ids),
		},
		Tier:    f.tier,
		SeatIDs: ids,
		Codes:   f.selectedCodes(ids),
	}, nil
}

// Confirm turns a server response into a Confirmed result for sub.
func Confirm(sub Submission, resp wire.BookingResponse) Confirmed {
	id := resp.BookingID
	if id == "" {
		id = FallbackBookingID
	}
	return Confirmed{
		BookingID:    id,
		TicketToken:  resp.TicketToken,
		CustomerName: sub.Request.CustomerName,
		Tier:         sub.Tier,
		SeatIDs:      sub.SeatIDs,
		SeatCodes:    sub.Codes,
		TotalAmount:  resp.TotalAmount,
	}
}

// ApplyResult applies the outcome of the pending submission and returns
// the notice it raised.
//
// On Confirmed every submitted seat becomes booked and the form is reset.
// Seats selected while the request was in flight stay selected. On Failed
// nothing in the catalog changes and the selection is kept so the visitor
// can retry.
func (f *Flow) ApplyResult(r Result) Notice {
	f.inFlight = false
	switch r := r.(type) {
	case Confirmed:
		for _, id := range r.SeatIDs {
			f.cat.SetStatus(id, catalog.StatusBooked)
		}
		f.tier = TierNone
		f.contact = Contact{}
		f.confirmSeq++
		r.Seq = f.confirmSeq
		f.confirmed = &r
		return f.setNotice(NoticeSuccess, "Booking confirmed: "+r.BookingID)
	case Failed:
		return f.setNotice(NoticeError, UserMessage(r.Err))
	}
	return f.setNotice(NoticeError, FailureText)
}
