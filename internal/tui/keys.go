package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the seat map.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Toggle key.Binding // Select or deselect the seat under the cursor.

	TierStandard key.Binding
	TierPremium  key.Binding
	TierVIP      key.Binding

	Form    key.Binding // Move focus into the form and through its fields.
	Submit  key.Binding
	Ticket  key.Binding // Load the ticket of the last booking.
	Dismiss key.Binding // Hide the notice, or leave the form.

	Quit      key.Binding
	ForceQuit key.Binding // Works while typing in the form.
}

// DefaultKeyMap uses arrows and hjkl for movement.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "right"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "select seat"),
	),
	TierStandard: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "standard"),
	),
	TierPremium: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "premium"),
	),
	TierVIP: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "vip"),
	),
	Form: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "details"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "book"),
	),
	Ticket: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "ticket"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

func (k KeyMap) mapHelp() []key.Binding {
	return []key.Binding{k.Up, k.Toggle, k.TierStandard, k.TierPremium, k.TierVIP, k.Form, k.Submit, k.Ticket, k.Quit}
}

func (k KeyMap) formHelp() []key.Binding {
	return []key.Binding{k.Form, k.Submit, k.Dismiss}
}
