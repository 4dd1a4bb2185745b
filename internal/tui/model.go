// Package tui renders the session as a terminal seat map. The model holds
// no booking state of its own: it draws the latest session.View and turns
// key presses into session reactions.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/session"
)

// Controller is the part of the session the UI drives. *session.Session
// implements it.
type Controller interface {
	ToggleSeat(id catalog.SeatID)
	SelectTier(t booking.Tier)
	SetContact(c booking.Contact)
	Submit()
	DismissNotice()
	FetchTicket()
}

// ViewMsg carries a new session view into the program.
type ViewMsg session.View

// Forward returns a session observer that delivers views to p until ctx
// ends. Only the latest view is kept while p is busy; each view is a full
// snapshot, so skipping one loses nothing.
func Forward(ctx context.Context, p *tea.Program) session.Observer {
	latest := make(chan session.View, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-latest:
				p.Send(ViewMsg(v))
			}
		}
	}()
	return func(v session.View) {
		for {
			select {
			case latest <- v:
				return
			default:
				select {
				case <-latest:
				default:
				}
			}
		}
	}
}

type focus int

const (
	focusMap focus = iota
	focusForm
)

const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldCount
)

// gridRow is one rendered row of seats.
type gridRow struct {
	section string
	first   bool // First row of its section.
	label   string
	seats   []catalog.SeatID
}

// Model is the bubbletea model of the seat map.
type Model struct {
	ctl  Controller
	keys KeyMap

	view  session.View
	ready bool
	grid  []gridRow

	row, col int
	focus    focus
	field    int
	inputs   [fieldCount]textinput.Model

	lastConfirm uint64
}

// New returns a model driving ctl.
func New(ctl Controller) Model {
	m := Model{ctl: ctl, keys: DefaultKeyMap}
	placeholders := [fieldCount]string{"Full name", "Email", "Phone"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		in.Width = 32
		m.inputs[i] = in
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewMsg:
		m.applyView(session.View(msg))
		return m, nil
	case tea.KeyMsg:
		if m.focus == focusForm {
			return m.updateForm(msg)
		}
		return m.updateMap(msg)
	}
	return m, nil
}

func (m *Model) applyView(v session.View) {
	if !m.ready || len(v.Seats) != len(m.view.Seats) {
		m.buildGrid(v)
	}
	m.view = v
	m.ready = true

	// A confirmed booking resets the form.
	if v.Confirmation != nil && v.Confirmation.Seq != m.lastConfirm {
		m.lastConfirm = v.Confirmation.Seq
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
	}
}

func (m *Model) buildGrid(v session.View) {
	m.grid = nil
	var cur *gridRow
	for _, s := range v.Seats {
		if cur == nil || cur.section != s.Section || cur.label != s.Row {
			first := cur == nil || cur.section != s.Section
			m.grid = append(m.grid, gridRow{section: s.Section, first: first, label: s.Row})
			cur = &m.grid[len(m.grid)-1]
		}
		cur.seats = append(cur.seats, s.ID)
	}
	m.row, m.col = 0, 0
}

// Cursor returns the seat under the cursor.
func (m Model) Cursor() (catalog.SeatID, bool) {
	if m.row >= len(m.grid) {
		return 0, false
	}
	r := m.grid[m.row]
	if m.col >= len(r.seats) {
		return 0, false
	}
	return r.seats[m.col], true
}

func (m Model) updateMap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.row < len(m.grid) && m.col < len(m.grid[m.row].seats)-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.Cursor(); ok {
			m.ctl.ToggleSeat(id)
		}
	case key.Matches(msg, m.keys.TierStandard):
		m.ctl.SelectTier(booking.TierStandard)
	case key.Matches(msg, m.keys.TierPremium):
		m.ctl.SelectTier(booking.TierPremium)
	case key.Matches(msg, m.keys.TierVIP):
		m.ctl.SelectTier(booking.TierVIP)
	case key.Matches(msg, m.keys.Form):
		cmd := m.focusField(fieldName)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		m.ctl.Submit()
	case key.Matches(msg, m.keys.Ticket):
		m.ctl.FetchTicket()
	case key.Matches(msg, m.keys.Dismiss):
		m.ctl.DismissNotice()
	}
	return m, nil
}

func (m *Model) moveRow(delta int) {
	next := m.row + delta
	if next < 0 || next >= len(m.grid) {
		return
	}
	m.row = next
	if n := len(m.grid[m.row].seats); m.col >= n {
		m.col = n - 1
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.blurForm()
		return m, nil
	case key.Matches(msg, m.keys.Form):
		if m.field == fieldCount-1 {
			m.blurForm()
			return m, nil
		}
		cmd := m.focusField(m.field + 1)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		m.ctl.Submit()
		return m, nil
	}

	before := m.inputs[m.field].Value()
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	if m.inputs[m.field].Value() != before {
		m.ctl.SetContact(m.contact())
	}
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.focus = focusForm
	m.field = i
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	return m.inputs[i].Focus()
}

func (m *Model) blurForm() {
	m.focus = focusMap
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
}

func (m Model) contact() booking.Contact {
	return booking.Contact{
		Name:  m.inputs[fieldName].Value(),
		Email: m.inputs[fieldEmail].Value(),
		Phone: m.inputs[fieldPhone].Value(),
	}
}
