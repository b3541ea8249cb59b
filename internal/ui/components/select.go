package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/heartrisk/internal/ui/theme"
)

// Select is a fixed option list cycled with Left/Right.
type Select struct {
	Label    string
	Options  []string
	Selected int
	focused  bool
}

// NewSelect creates a selector with the option at index selected chosen.
func NewSelect(label string, options []string, selected int) Select {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return Select{
		Label:    label,
		Options:  options,
		Selected: selected,
	}
}

// Value returns the chosen option label.
func (s Select) Value() string {
	if len(s.Options) == 0 {
		return ""
	}
	return s.Options[s.Selected]
}

// Focused reports whether the selector has focus.
func (s Select) Focused() bool {
	return s.focused
}

// Focus gives the selector keyboard focus.
func (s *Select) Focus() {
	s.focused = true
}

// Blur releases focus.
func (s *Select) Blur() {
	s.focused = false
}

// Update handles keyboard selection while focused.
func (s Select) Update(msg tea.Msg) (Select, tea.Cmd) {
	if !s.focused || len(s.Options) == 0 {
		return s, nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "left", "-":
		s.Selected = (s.Selected - 1 + len(s.Options)) % len(s.Options)
	case "right", "+", "=", "space":
		s.Selected = (s.Selected + 1) % len(s.Options)
	}

	return s, nil
}

// View renders the selector as "label  ◂ option ▸".
func (s Select) View(labelWidth int) string {
	label := theme.Label.Width(labelWidth).Render(s.Label)
	if s.focused {
		return label + theme.Selected.Render("◂ "+s.Value()+" ▸")
	}
	return label + theme.Unselected.Render("  "+s.Value())
}
