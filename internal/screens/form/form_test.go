package form

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/heartrisk/internal/artifact"
	"github.com/abhisek/heartrisk/internal/artifact/artifacttest"
	"github.com/abhisek/heartrisk/internal/patient"
	"github.com/abhisek/heartrisk/internal/predict"
	"github.com/abhisek/heartrisk/internal/router"
	"github.com/abhisek/heartrisk/internal/store"
)

// stubPredictor records every record it is asked to evaluate.
type stubPredictor struct {
	risk  predict.Risk
	err   error
	calls []patient.Record
}

func (p *stubPredictor) Evaluate(rec patient.Record) (*predict.Outcome, error) {
	p.calls = append(p.calls, rec)
	if p.err != nil {
		return nil, p.err
	}
	label := 0
	if p.risk == predict.HighRisk {
		label = 1
	}
	return &predict.Outcome{Risk: p.risk, Label: label, Row: rec.Encode()}, nil
}

type memRepo struct {
	appended []store.PredictionEventData
}

func (r *memRepo) AppendPrediction(_ context.Context, data store.PredictionEventData) (string, error) {
	r.appended = append(r.appended, data)
	return "id-1", nil
}

func (r *memRepo) QueryPredictions(context.Context, store.QueryOpts) ([]store.PredictionRecord, error) {
	return nil, nil
}

var (
	keyUp       = tea.KeyPressMsg{Code: tea.KeyUp}
	keyDown     = tea.KeyPressMsg{Code: tea.KeyDown}
	keyTab      = tea.KeyPressMsg{Code: tea.KeyTab}
	keyShiftTab = tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	keyLeft     = tea.KeyPressMsg{Code: tea.KeyLeft}
	keyRight    = tea.KeyPressMsg{Code: tea.KeyRight}
	keyEnter    = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyBack     = tea.KeyPressMsg{Code: tea.KeyBackspace}
	keyCtrlP    = tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl}
)

func char(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func newForm(p predict.Predictor, opts Options) *FormScreen {
	s := New(p, opts)
	s.Init()
	return s
}

// send delivers keys without running the commands they return.
func send(s *FormScreen, msgs ...tea.Msg) {
	for _, m := range msgs {
		s.Update(m)
	}
}

// trigger delivers a key that should request a prediction and feeds the
// resulting message back. It returns the command produced by the prediction.
func trigger(t *testing.T, s *FormScreen, k tea.KeyPressMsg) tea.Cmd {
	t.Helper()
	_, cmd := s.Update(k)
	require.NotNil(t, cmd, "expected a command from %q", k.String())
	msg := cmd()
	require.IsType(t, predictRequestedMsg{}, msg)
	_, next := s.Update(msg)
	return next
}

// focusSlot moves focus down from the top to slot i.
func focusSlot(s *FormScreen, i int) {
	for s.focus != i {
		s.Update(keyDown)
	}
}

func TestNoPredictionBeforeTrigger(t *testing.T) {
	p := &stubPredictor{}
	s := newForm(p, Options{})

	for i := 0; i <= buttonSlot; i++ {
		send(s, keyRight, keyRight, keyLeft, char('7'), keyDown)
	}
	send(s, keyUp, keyUp, keyTab, keyShiftTab)

	assert.Empty(t, p.calls)
	assert.Nil(t, s.Outcome())
}

func TestCtrlPPredictsDefaults(t *testing.T) {
	p := &stubPredictor{risk: predict.LowRisk}
	s := newForm(p, Options{})

	trigger(t, s, keyCtrlP)

	require.Len(t, p.calls, 1)
	assert.Equal(t, patient.Default(), p.calls[0])
	assert.Equal(t, patient.Row{50, 1, 1, 120, 200, 0, 0, 150, 0, 1.0, 1, 0, 3}, p.calls[0].Encode())
	assert.Contains(t, s.View(100, 30), "✅ Low Risk!")
}

func TestEnterOnButtonPredicts(t *testing.T) {
	p := &stubPredictor{risk: predict.HighRisk}
	s := newForm(p, Options{})

	// Up from the first field wraps to the button.
	send(s, keyUp)
	require.Equal(t, buttonSlot, s.focus)

	trigger(t, s, keyEnter)
	require.Len(t, p.calls, 1)
	assert.Contains(t, s.View(100, 30), "⚠️ High Risk!")
}

func TestEnterOnFieldDoesNotPredict(t *testing.T) {
	p := &stubPredictor{}
	s := newForm(p, Options{})

	_, cmd := s.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.Empty(t, p.calls)
}

func TestSelectionsReachRecord(t *testing.T) {
	p := &stubPredictor{}
	s := newForm(p, Options{})

	focusSlot(s, 1) // sex
	send(s, keyRight)
	focusSlot(s, 2) // chest pain
	send(s, keyRight, keyRight, keyRight)
	focusSlot(s, 12) // thalassemia
	send(s, keyLeft)

	trigger(t, s, keyCtrlP)
	require.Len(t, p.calls, 1)
	rec := p.calls[0]
	assert.Equal(t, patient.SexFemale, rec.Sex)
	assert.Equal(t, patient.ChestPainAsymptomatic, rec.ChestPain)
	assert.Equal(t, patient.ThalReversibleDefect, rec.Thalassemia)
}

func TestTypedValueCommittedOnPredict(t *testing.T) {
	p := &stubPredictor{}
	s := newForm(p, Options{})

	send(s, keyBack, keyBack, char('7'), char('0'))
	trigger(t, s, keyCtrlP)

	require.Len(t, p.calls, 1)
	assert.Equal(t, 70, p.calls[0].Age)
}

func TestTypedValueClampedToDomain(t *testing.T) {
	p := &stubPredictor{}
	s := newForm(p, Options{})

	send(s, keyBack, keyBack, char('9'), char('9'), char('9'), keyDown)
	trigger(t, s, keyCtrlP)

	require.Len(t, p.calls, 1)
	assert.Equal(t, 100, p.calls[0].Age)
}

func TestEditingClearsResult(t *testing.T) {
	s := newForm(&stubPredictor{risk: predict.HighRisk}, Options{})
	trigger(t, s, keyCtrlP)
	require.NotNil(t, s.Outcome())

	// Moving focus keeps the result.
	send(s, keyDown)
	require.NotNil(t, s.Outcome())

	send(s, keyRight)
	assert.Nil(t, s.Outcome())
}

func TestCommitOnFocusChangeClearsResult(t *testing.T) {
	p := &stubPredictor{risk: predict.HighRisk}
	s := newForm(p, Options{})
	trigger(t, s, keyCtrlP)
	require.NotNil(t, s.Outcome())

	send(s, keyBack, keyBack, char('7'), char('0'), keyDown)

	rec, err := s.Record()
	require.NoError(t, err)
	assert.Equal(t, 70, rec.Age)
	assert.Nil(t, s.Outcome())
	assert.NotContains(t, s.View(100, 30), "High Risk!")
}

func TestFocusChangeWithoutEditKeepsResult(t *testing.T) {
	s := newForm(&stubPredictor{risk: predict.LowRisk}, Options{})
	trigger(t, s, keyCtrlP)

	// Typed text that commits to the same value is not an edit.
	send(s, keyBack, char('0'), keyDown, keyUp, keyShiftTab, keyTab)
	assert.NotNil(t, s.Outcome())
}

func TestResetRestoresDefaults(t *testing.T) {
	p := &stubPredictor{}
	s := newForm(p, Options{})

	send(s, keyRight, keyRight, keyDown, keyRight)
	send(s, char('r'))

	rec, err := s.Record()
	require.NoError(t, err)
	assert.Equal(t, patient.Default(), rec)
	assert.Equal(t, 0, s.focus)
	assert.Empty(t, p.calls)
}

func TestPipelineErrorHaltsForm(t *testing.T) {
	p := &stubPredictor{err: errors.New("transform: schema mismatch")}
	s := newForm(p, Options{})

	trigger(t, s, keyCtrlP)
	require.Error(t, s.Err())
	assert.Contains(t, s.View(100, 30), "Prediction failed")

	_, cmd := s.Update(keyCtrlP)
	assert.Nil(t, cmd)
	send(s, keyDown)
	assert.Equal(t, 0, s.focus)
	assert.Len(t, p.calls, 1)
}

func TestHistoryAppendedAfterPrediction(t *testing.T) {
	repo := &memRepo{}
	s := newForm(&stubPredictor{risk: predict.HighRisk}, Options{History: repo, ModelKind: "random_forest"})

	cmd := trigger(t, s, keyCtrlP)
	require.NotNil(t, cmd)
	msg := cmd()
	saved, ok := msg.(historySavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	s.Update(msg)

	require.Len(t, repo.appended, 1)
	got := repo.appended[0]
	assert.Equal(t, patient.Default().Encode().Values(), got.Row)
	assert.Equal(t, 1, got.Label)
	assert.Equal(t, "High Risk", got.Risk)
	assert.Equal(t, "random_forest", got.ModelKind)
}

func TestHistoryWaitsForPendingSave(t *testing.T) {
	repo := &memRepo{}
	s := newForm(&stubPredictor{risk: predict.LowRisk}, Options{History: repo})

	save := trigger(t, s, keyCtrlP)
	require.NotNil(t, save)

	// The append has not landed yet, so the history screen is held back.
	_, cmd := s.Update(char('h'))
	assert.Nil(t, cmd)

	_, cmd = s.Update(save())
	require.Len(t, repo.appended, 1)
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "History", push.Screen.Title())

	// Later presses open it immediately.
	_, cmd = s.Update(char('h'))
	require.NotNil(t, cmd)
	assert.IsType(t, router.PushScreenMsg{}, cmd())
}

func TestFailedSaveStillOpensHistory(t *testing.T) {
	s := newForm(&stubPredictor{}, Options{History: &memRepo{}})
	trigger(t, s, keyCtrlP)
	s.Update(char('h'))

	_, cmd := s.Update(historySavedMsg{Err: errors.New("disk full")})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PushScreenMsg{}, cmd())
}

func TestNoHistoryWhenDisabled(t *testing.T) {
	s := newForm(&stubPredictor{}, Options{})
	assert.Nil(t, trigger(t, s, keyCtrlP))

	_, cmd := s.Update(char('h'))
	assert.Nil(t, cmd)
	for _, h := range s.KeyHints() {
		assert.NotEqual(t, "History", h.Description)
	}
}

func TestHistoryKeyPushesScreen(t *testing.T) {
	s := newForm(&stubPredictor{}, Options{History: &memRepo{}})

	_, cmd := s.Update(char('h'))
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "History", push.Screen.Title())
}

func TestFixtureBundleScenarios(t *testing.T) {
	b, err := artifact.Load(context.Background(), artifacttest.WriteDefault(t), artifact.Options{})
	require.NoError(t, err)
	s := newForm(predict.FromBundle(b), Options{})

	trigger(t, s, keyCtrlP)
	require.NotNil(t, s.Outcome())
	assert.Equal(t, predict.LowRisk, s.Outcome().Risk)

	focusSlot(s, 2) // chest pain -> Asymptomatic
	send(s, keyRight, keyRight, keyRight)
	focusSlot(s, 12) // thalassemia -> Reversible Defect
	send(s, keyLeft)

	trigger(t, s, keyCtrlP)
	require.NoError(t, s.Err())
	assert.Equal(t, predict.HighRisk, s.Outcome().Risk)
	assert.Contains(t, s.View(100, 30), "⚠️ High Risk!")
}
