// Package history lists stored predictions, newest first.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/heartrisk/internal/patient"
	"github.com/abhisek/heartrisk/internal/router"
	"github.com/abhisek/heartrisk/internal/screen"
	"github.com/abhisek/heartrisk/internal/store"
	"github.com/abhisek/heartrisk/internal/ui/layout"
	"github.com/abhisek/heartrisk/internal/ui/theme"
)

// Limit is the number of predictions the screen loads.
const Limit = 50

type historyLoadedMsg struct {
	Records []store.PredictionRecord
	Err     error
}

// HistoryScreen displays past predictions.
type HistoryScreen struct {
	eventRepo store.EventRepo
	records   []store.PredictionRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		records, err := repo.QueryPredictions(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Records: records, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No predictions stored yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s#%-4d %s  %-9s  label %d",
			prefix, rec.Sequence, rec.Timestamp.Local().Format("Jan 02 15:04"), rec.Risk, rec.Label)

		style := theme.Body
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			card := theme.Card.Render(theme.Label.Render(strings.Join(rowDetails(rec.Row), "\n")))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// rowDetails pairs an encoded row with the canonical column names.
func rowDetails(row []float64) []string {
	cols := patient.Columns()
	out := make([]string, 0, len(row))
	for i, v := range row {
		name := fmt.Sprintf("col%d", i)
		if i < len(cols) {
			name = cols[i]
		}
		out = append(out, fmt.Sprintf("    %-30s %g", name, v))
	}
	return out
}
