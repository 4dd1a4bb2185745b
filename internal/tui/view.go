package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/syncchan"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)

	seatStyles = map[catalog.Status]lipgloss.Style{
		catalog.StatusAvailable: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("114")),
		catalog.StatusVIP:       lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
		catalog.StatusSelected:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("33")),
		catalog.StatusBooked:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Background(lipgloss.Color("237")),
	}
	flashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Bold(true)

	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")).Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("78")).Padding(0, 1)
)

func (m Model) View() string {
	if !m.ready {
		return "Loading seat map…\n"
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.seatMap())
	b.WriteString("\n")
	b.WriteString(m.legend())
	b.WriteString("\n\n")
	side := lipgloss.JoinHorizontal(lipgloss.Top, m.summaryPanel(), " ", m.formPanel())
	b.WriteString(side)
	b.WriteString("\n")
	if n := m.view.Notice; n != nil {
		style := errorStyle
		if n.Kind == booking.NoticeSuccess {
			style = successStyle
		}
		b.WriteString(style.Render(n.Text))
		b.WriteString("\n")
	}
	if c := m.confirmation(); c != "" {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString(m.help())
	return b.String()
}

func (m Model) header() string {
	v := m.view
	state := dimStyle.Render("live: " + v.Channel.String())
	if v.Channel == syncchan.StateOpen {
		state = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Render("live: open")
	}
	return fmt.Sprintf("%s   Available: %d / %d   %s",
		titleStyle.Render("Seat Map"), v.Available, v.Total, state)
}

func (m Model) seatMap() string {
	cursor, _ := m.Cursor()
	seats := make(map[catalog.SeatID]catalog.Seat, len(m.view.Seats))
	for _, s := range m.view.Seats {
		seats[s.ID] = s
	}

	var b strings.Builder
	for i, r := range m.grid {
		if r.first {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(sectionStyle.Render(r.section))
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-2s", r.label)))
		for _, id := range r.seats {
			b.WriteString(" ")
			b.WriteString(renderSeat(seats[id], id == cursor))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderSeat(s catalog.Seat, underCursor bool) string {
	style, ok := seatStyles[s.Status]
	if !ok {
		style = dimStyle
	}
	if s.JustBooked {
		style = flashStyle
	}
	if underCursor {
		style = style.Underline(true).Bold(true)
	}
	return style.Render(fmt.Sprintf("%2d", s.Number))
}

func (m Model) legend() string {
	parts := []string{
		seatStyles[catalog.StatusAvailable].Render("  ") + " available",
		seatStyles[catalog.StatusVIP].Render("  ") + " vip",
		seatStyles[catalog.StatusSelected].Render("  ") + " selected",
		seatStyles[catalog.StatusBooked].Render("  ") + " booked",
		flashStyle.Render("  ") + " just booked",
	}
	return strings.Join(parts, "   ")
}

func (m Model) summaryPanel() string {
	s := m.view.Summary
	codes := "-"
	if len(s.SeatCodes) > 0 {
		codes = strings.Join(s.SeatCodes, ", ")
	}
	lines := []string{
		sectionStyle.Render("Booking summary"),
		fmt.Sprintf("Ticket type: %s", m.view.Tier.Label()),
		fmt.Sprintf("Seats:       %d", s.Seats),
		fmt.Sprintf("Selected:    %s", codes),
		fmt.Sprintf("Price:       $%d", s.Subtotal),
		fmt.Sprintf("Booking fee: $%d", s.Fee),
		fmt.Sprintf("Total:       $%d", s.Total),
	}
	if m.view.InFlight {
		lines = append(lines, dimStyle.Render("Submitting…"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) formPanel() string {
	labels := [fieldCount]string{"Name ", "Email", "Phone"}
	lines := []string{sectionStyle.Render("Your details")}
	for i, in := range m.inputs {
		label := labels[i]
		if m.focus == focusForm && m.field == i {
			label = titleStyle.Render(label)
		}
		lines = append(lines, label+" "+in.View())
	}
	tiers := make([]string, 0, len(booking.Tiers()))
	for i, t := range booking.Tiers() {
		entry := fmt.Sprintf("%d %s $%d", i+1, t.Label(), t.Price())
		if t == m.view.Tier {
			entry = seatStyles[catalog.StatusSelected].Render(entry)
		}
		tiers = append(tiers, entry)
	}
	lines = append(lines, "", strings.Join(tiers, "  "))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) confirmation() string {
	c := m.view.Confirmation
	if c == nil {
		return ""
	}
	lines := []string{
		fmt.Sprintf("Booking %s for %s: %s (%s)", c.BookingID, c.CustomerName, strings.Join(c.SeatCodes, ", "), c.Tier.Label()),
	}
	if t := m.view.Ticket; t != nil {
		lines = append(lines, fmt.Sprintf("Ticket %s: %s, $%.2f, booked %s",
			t.BookingID, strings.Join(t.Seats, ", "), t.TotalAmount, t.BookedAt.Format("2006-01-02 15:04")))
	} else if m.view.TicketErr != "" {
		lines = append(lines, errorStyle.Render(m.view.TicketErr))
	} else if c.TicketToken != "" {
		lines = append(lines, dimStyle.Render("press t to load your ticket"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) help() string {
	bindings := m.keys.mapHelp()
	if m.focus == focusForm {
		bindings = m.keys.formHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return dimStyle.Render(strings.Join(parts, " • "))
}
