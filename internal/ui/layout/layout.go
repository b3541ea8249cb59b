// Package layout draws the frame around the active screen: a header bar
// with the loaded model, the screen body, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/heartrisk/internal/ui/theme"
)

// Minimum terminal size; the form needs every field on screen at once.
const (
	MinWidth  = 72
	MinHeight = 28
)

const brand = "  ♥ heartrisk"

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight returns the rows left for the screen body once header and
// footer are drawn.
func ContentHeight(total int, header, footer string) int {
	return max(total-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"The patient form needs a larger terminal.\n\nResize to at least %d x %d\n(currently %d x %d)",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader draws the brand on the left, title centered and status
// (the loaded model kind) on the right.
func RenderHeader(title, status string, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(brand)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(status + "  ")

	// Border and padding take four columns.
	middle := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 0)
	center := lipgloss.PlaceHorizontal(middle, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Render(title))

	return bar(left+center+right, width)
}

// RenderFooter draws the key hints of the active screen.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Description))
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

// RenderFrame stacks header, body and footer, padding the body so the
// footer sits on the last rows.
func RenderFrame(header, content, footer string, width, height int) string {
	body := lipgloss.NewStyle().
		Width(width).
		Height(ContentHeight(height, header, footer)).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}
