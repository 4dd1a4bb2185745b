package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/session"
)

type recorder struct {
	toggled  []catalog.SeatID
	tiers    []booking.Tier
	contacts []booking.Contact
	submits  int
	dismiss  int
	tickets  int
}

func (r *recorder) ToggleSeat(id catalog.SeatID) { r.toggled = append(r.toggled, id) }
func (r *recorder) SelectTier(t booking.Tier) { r.tiers = append(r.tiers, t) }
func (r *recorder) SetContact(c booking.Contact) { r.contacts = append(r.contacts, c) }
func (r *recorder) Submit() { r.submits++ }
func (r *recorder) DismissNotice() { r.dismiss++ }
func (r *recorder) FetchTicket() { r.tickets++ }

func testView(t *testing.T) session.View {
	t.Helper()
	c, err := catalog.Generate(catalog.DefaultLayout())
	require.NoError(t, err)
	c.SetStatus(3, catalog.StatusBooked)
	return session.View{
		Layout:    c.Layout(),
		Seats:     c.Seats(),
		Counts:    c.Counts(),
		Available: c.AvailableCount(),
		Total:     c.Len(),
	}
}

func press(m tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func ready(t *testing.T, r *recorder) tea.Model {
	t.Helper()
	m, _ := New(r).Update(ViewMsg(testView(t)))
	return m
}

func TestLoadingBeforeFirstView(t *testing.T) {
	assert.Contains(t, New(&recorder{}).View(), "Loading")
}

func TestCursorToggleSeat(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)

	// VIP row A starts at id 1; row B starts at id 11.
	m, _ = press(m, "l", "l", "space")
	m, _ = press(m, "j", "space")
	// Premium row A follows the two VIP rows.
	m, _ = press(m, "down", "space")
	m, _ = press(m, "k", "k", "k", "h", "space")

	assert.Equal(t, []catalog.SeatID{3, 13, 23, 2}, r.toggled)
	id, ok := m.(Model).Cursor()
	require.True(t, ok)
	assert.Equal(t, catalog.SeatID(2), id)
}

func TestCursorClampsToShorterRow(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)

	// Move to the premium section (15 per row), go to the far right, then
	// back up into the 10-seat VIP row.
	m, _ = press(m, "j", "j")
	for i := 0; i < 20; i++ {
		m, _ = press(m, "l")
	}
	id, _ := m.(Model).Cursor()
	assert.Equal(t, catalog.SeatID(35), id)

	m, _ = press(m, "k")
	id, _ = m.(Model).Cursor()
	assert.Equal(t, catalog.SeatID(20), id)
}

func TestTierKeys(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)
	press(m, "1", "2", "3")
	assert.Equal(t, []booking.Tier{booking.TierStandard, booking.TierPremium, booking.TierVIP}, r.tiers)
}

func TestFormTypingSetsContact(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)

	m, _ = press(m, "tab", "A", "l")
	m, _ = press(m, "tab", "a", "@")
	m, _ = press(m, "tab", "5")
	require.NotEmpty(t, r.contacts)
	assert.Equal(t, booking.Contact{Name: "Al", Email: "a@", Phone: "5"}, r.contacts[len(r.contacts)-1])
	assert.Empty(t, r.tiers, "digits typed in the form are not tier keys")

	m, _ = press(m, "enter")
	assert.Equal(t, 1, r.submits)

	// Tab past the last field returns to the map, where q quits.
	m, _ = press(m, "tab")
	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestConfirmationClearsForm(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)
	m, _ = press(m, "tab", "B", "o", "b", "esc")
	assert.Equal(t, "Bob", m.(Model).contact().Name)

	v := testView(t)
	v.Confirmation = &booking.Confirmed{BookingID: "TKT-1", CustomerName: "Bob", SeatCodes: []string{"A1"}, Tier: booking.TierVIP, Seq: 1}
	m, _ = m.Update(ViewMsg(v))
	assert.Equal(t, booking.Contact{}, m.(Model).contact())
	assert.Contains(t, m.View(), "TKT-1")
}

// Every confirmation resets the form, even when the booking id repeats.
func TestRepeatedBookingIDClearsFormAgain(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)

	v := testView(t)
	v.Confirmation = &booking.Confirmed{BookingID: booking.FallbackBookingID, Seq: 1}
	m, _ = m.Update(ViewMsg(v))

	m, _ = press(m, "tab", "C", "a", "t", "esc")
	assert.Equal(t, "Cat", m.(Model).contact().Name)

	m, _ = m.Update(ViewMsg(v))
	assert.Equal(t, "Cat", m.(Model).contact().Name, "the same confirmation does not reset twice")

	v.Confirmation = &booking.Confirmed{BookingID: booking.FallbackBookingID, Seq: 2}
	m, _ = m.Update(ViewMsg(v))
	assert.Equal(t, booking.Contact{}, m.(Model).contact())
}

func TestViewRendersCountsAndNotice(t *testing.T) {
	r := &recorder{}
	m := ready(t, r)

	v := testView(t)
	v.Notice = &booking.Notice{Kind: booking.NoticeError, Text: "Please select a ticket type"}
	m, _ = m.Update(ViewMsg(v))
	out := m.View()
	assert.Contains(t, out, "Available: 244 / 245")
	assert.Contains(t, out, "Please select a ticket type")
	for _, section := range []string{"VIP", "Premium", "Standard"} {
		assert.True(t, strings.Contains(out, section), section)
	}

	press(m, "esc", "t")
	assert.Equal(t, 1, r.dismiss)
	assert.Equal(t, 1, r.tickets)
}
