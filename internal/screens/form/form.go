// Package form is the patient data entry screen: thirteen widgets and a
// Predict button.
package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/heartrisk/internal/patient"
	"github.com/abhisek/heartrisk/internal/predict"
	"github.com/abhisek/heartrisk/internal/router"
	"github.com/abhisek/heartrisk/internal/screen"
	"github.com/abhisek/heartrisk/internal/screens/history"
	"github.com/abhisek/heartrisk/internal/store"
	"github.com/abhisek/heartrisk/internal/ui/components"
	"github.com/abhisek/heartrisk/internal/ui/layout"
	"github.com/abhisek/heartrisk/internal/ui/theme"
)

const (
	labelWidth     = 34
	historyTimeout = 5 * time.Second
)

// predictRequestedMsg is emitted when the user activates Predict.
type predictRequestedMsg struct{}

// historySavedMsg reports the outcome of an async history append.
type historySavedMsg struct {
	ID  string
	Err error
}

// Options configures a FormScreen.
type Options struct {
	// History receives every completed prediction. Nil disables history.
	History   store.EventRepo
	ModelKind string
	Logger    *zap.Logger
}

// FormScreen collects a patient record and runs the prediction pipeline
// when, and only when, Predict is activated.
type FormScreen struct {
	predictor predict.Predictor
	opts      Options
	logger    *zap.Logger
	keys      keyMap

	nums   [numCount]components.NumberField
	sels   [selCount]components.Select
	button components.Button
	focus  int

	outcome *predict.Outcome
	err     error

	// pendingSaves counts history appends still in flight; openHistory
	// defers the history screen until they land.
	pendingSaves int
	openHistory  bool
}

var _ screen.Screen = (*FormScreen)(nil)
var _ screen.KeyHintProvider = (*FormScreen)(nil)

// New creates a FormScreen showing the default record.
func New(predictor predict.Predictor, opts Options) *FormScreen {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FormScreen{
		predictor: predictor,
		opts:      opts,
		logger:    logger,
		keys:      defaultKeyMap(),
		button: components.NewButton("Predict Heart Disease", func() tea.Cmd {
			return func() tea.Msg { return predictRequestedMsg{} }
		}),
	}
	s.reset()
	return s
}

func (s *FormScreen) Title() string {
	return "Patient Data"
}

func (s *FormScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Ctrl+P", Description: "Predict"},
		{Key: "r", Description: "Reset"},
	}
	if s.opts.History != nil {
		hints = append(hints, layout.KeyHint{Key: "h", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *FormScreen) Init() tea.Cmd {
	return s.setFocus(0)
}

func (s *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case predictRequestedMsg:
		return s, s.runPrediction()

	case historySavedMsg:
		if msg.Err != nil {
			s.logger.Warn("history append failed", zap.Error(msg.Err))
		} else {
			s.logger.Debug("prediction stored", zap.String("id", msg.ID))
		}
		if s.pendingSaves > 0 {
			s.pendingSaves--
		}
		if s.pendingSaves == 0 && s.openHistory {
			s.openHistory = false
			return s, s.pushHistory()
		}
		return s, nil

	case tea.KeyPressMsg:
		// A pipeline failure is fatal; only quitting remains.
		if s.err != nil {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *FormScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Predict):
		return s, func() tea.Msg { return predictRequestedMsg{} }
	case key.Matches(msg, s.keys.Reset):
		s.reset()
		return s, s.setFocus(0)
	case key.Matches(msg, s.keys.History):
		if s.opts.History == nil {
			return s, nil
		}
		if s.pendingSaves > 0 {
			s.openHistory = true
			return s, nil
		}
		return s, s.pushHistory()
	}

	// Leaving a number field commits its typed text, so focus moves can
	// change the record too.
	before, _ := s.Record()
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, s.keys.Next):
		cmd = s.setFocus((s.focus + 1) % (buttonSlot + 1))
	case key.Matches(msg, s.keys.Prev):
		cmd = s.setFocus((s.focus + buttonSlot) % (buttonSlot + 1))
	case s.focus == buttonSlot:
		s.button, cmd = s.button.Update(msg)
		return s, cmd
	default:
		cmd = s.updateFocused(msg)
	}
	if after, _ := s.Record(); after != before {
		s.outcome = nil
	}
	return s, cmd
}

func (s *FormScreen) pushHistory() tea.Cmd {
	h := history.New(s.opts.History)
	return func() tea.Msg { return router.PushScreenMsg{Screen: h} }
}

// runPrediction commits pending input, then encodes, transforms and
// classifies the current record.
func (s *FormScreen) runPrediction() tea.Cmd {
	s.commitFocused()
	rec, err := s.Record()
	if err != nil {
		s.err = err
		return nil
	}

	outcome, err := s.predictor.Evaluate(rec)
	if err != nil {
		s.logger.Error("prediction failed", zap.Error(err))
		s.err = err
		return nil
	}
	s.outcome = outcome
	s.logger.Info("prediction",
		zap.String("risk", outcome.Risk.String()),
		zap.Int("label", outcome.Label),
	)

	if s.opts.History == nil {
		return nil
	}
	s.pendingSaves++
	repo, kind := s.opts.History, s.opts.ModelKind
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		id, err := repo.AppendPrediction(ctx, store.PredictionEventData{
			Row:       outcome.Row.Values(),
			Label:     outcome.Label,
			Risk:      outcome.Risk.String(),
			ModelKind: kind,
		})
		return historySavedMsg{ID: id, Err: err}
	}
}

// Record returns the record the widgets currently hold.
func (s *FormScreen) Record() (patient.Record, error) {
	return record(s.nums, s.sels)
}

// Outcome returns the most recent prediction, or nil.
func (s *FormScreen) Outcome() *predict.Outcome {
	return s.outcome
}

// Err returns the pipeline error that halted the form, if any.
func (s *FormScreen) Err() error {
	return s.err
}

func (s *FormScreen) reset() {
	rec := patient.Default()
	s.nums = newNumberFields(rec)
	s.sels = newSelects(rec)
	s.button.Focused = false
	s.outcome = nil
	s.focus = 0
}

func (s *FormScreen) setFocus(i int) tea.Cmd {
	s.blurFocused()
	s.focus = i
	if i == buttonSlot {
		s.button.Focused = true
		return nil
	}
	sl := order[i]
	if sl.numeric {
		return s.nums[sl.index].Focus()
	}
	s.sels[sl.index].Focus()
	return nil
}

func (s *FormScreen) blurFocused() {
	if s.focus == buttonSlot {
		s.button.Focused = false
		return
	}
	sl := order[s.focus]
	if sl.numeric {
		s.nums[sl.index].Blur()
		return
	}
	s.sels[sl.index].Blur()
}

// commitFocused applies typed-but-uncommitted text in the focused field.
func (s *FormScreen) commitFocused() {
	if s.focus == buttonSlot || !order[s.focus].numeric {
		return
	}
	f := &s.nums[order[s.focus].index]
	f.Blur()
	f.Focus()
}

func (s *FormScreen) updateFocused(msg tea.Msg) tea.Cmd {
	sl := order[s.focus]
	var cmd tea.Cmd
	if sl.numeric {
		s.nums[sl.index], cmd = s.nums[sl.index].Update(msg)
	} else {
		s.sels[sl.index], cmd = s.sels[sl.index].Update(msg)
	}
	return cmd
}

func (s *FormScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("📝 Enter Patient Data for Prediction"))
	b.WriteString("\n\n")

	for _, sl := range order {
		if sl.numeric {
			b.WriteString(s.nums[sl.index].View(labelWidth))
		} else {
			b.WriteString(s.sels[sl.index].View(labelWidth))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.button.View())
	b.WriteString("\n\n")
	b.WriteString(s.resultView())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, b.String())
}

func (s *FormScreen) resultView() string {
	switch {
	case s.err != nil:
		return theme.HighRisk.Render(fmt.Sprintf("Prediction failed: %v", s.err)) + "\n" +
			theme.Hint.Render("press Ctrl+C to quit")
	case s.outcome == nil:
		return theme.Hint.Render("Fill in the fields, then press Predict.")
	case s.outcome.Risk == predict.HighRisk:
		return theme.Card.Render(theme.HighRisk.Render(s.outcome.Risk.Message()))
	default:
		return theme.Card.Render(theme.LowRisk.Render(s.outcome.Risk.Message()))
	}
}
