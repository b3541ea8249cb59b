package components

import (
	"math"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/heartrisk/internal/ui/theme"
)

// NumberField is a bounded numeric spinner. Left/Right and -/+ step the
// value; digits are typed into a bubbles textinput and committed on blur.
type NumberField struct {
	Label    string
	Min      float64
	Max      float64
	Step     float64
	Decimals int

	input   textinput.Model
	value   float64
	focused bool
}

// NewNumberField creates a field holding value clamped to [min, max].
func NewNumberField(label string, min, max, step, value float64, decimals int) NumberField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 8

	f := NumberField{
		Label:    label,
		Min:      min,
		Max:      max,
		Step:     step,
		Decimals: decimals,
		input:    ti,
	}
	f.SetValue(value)
	return f
}

// Value returns the committed value.
func (f NumberField) Value() float64 {
	return f.value
}

// IntValue returns the committed value rounded to an integer.
func (f NumberField) IntValue() int {
	return int(math.Round(f.value))
}

// SetValue clamps, rounds and commits v.
func (f *NumberField) SetValue(v float64) {
	f.value = f.round(f.clamp(v))
	f.input.SetValue(f.format())
	f.input.CursorEnd()
}

// Focused reports whether the field has focus.
func (f NumberField) Focused() bool {
	return f.focused
}

// Focus gives the field keyboard focus.
func (f *NumberField) Focus() tea.Cmd {
	f.focused = true
	return f.input.Focus()
}

// Blur commits any typed text and releases focus.
func (f *NumberField) Blur() {
	f.commit()
	f.focused = false
	f.input.Blur()
}

// Update handles key events while focused.
func (f NumberField) Update(msg tea.Msg) (NumberField, tea.Cmd) {
	if !f.focused {
		return f, nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return f, nil
	}

	switch kmsg.String() {
	case "left", "-":
		f.commit()
		f.SetValue(f.value - f.Step)
		return f, nil
	case "right", "+", "=":
		f.commit()
		f.SetValue(f.value + f.Step)
		return f, nil
	case "enter":
		f.commit()
		return f, nil
	}

	key := kmsg.String()
	if len(key) == 1 && !f.accepts(key[0]) {
		return f, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the field as "label  [value]".
func (f NumberField) View(labelWidth int) string {
	label := theme.Label.Width(labelWidth).Render(f.Label)

	var value string
	if f.focused {
		value = theme.Selected.Render("◂ " + f.input.View() + " ▸")
	} else {
		value = theme.Unselected.Render("  " + f.format())
	}

	bounds := theme.Hint.Render(" (" + f.formatValue(f.Min) + "-" + f.formatValue(f.Max) + ")")
	return label + value + bounds
}

// commit parses the typed text. Unparseable text reverts to the last value.
func (f *NumberField) commit() {
	text := strings.TrimSpace(f.input.Value())
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		f.SetValue(f.value)
		return
	}
	f.SetValue(v)
}

func (f NumberField) accepts(c byte) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	return c == '.' && f.Decimals > 0
}

func (f NumberField) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return f.Min
	}
	return math.Max(f.Min, math.Min(f.Max, v))
}

func (f NumberField) round(v float64) float64 {
	p := math.Pow(10, float64(f.Decimals))
	return math.Round(v*p) / p
}

func (f NumberField) format() string {
	return f.formatValue(f.value)
}

func (f NumberField) formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', f.Decimals, 64)
}
