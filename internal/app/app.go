// Package app hosts the root Bubble Tea model.
package app

import (
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/heartrisk/internal/predict"
	"github.com/abhisek/heartrisk/internal/router"
	"github.com/abhisek/heartrisk/internal/screen"
	"github.com/abhisek/heartrisk/internal/screens/form"
	"github.com/abhisek/heartrisk/internal/screens/welcome"
	"github.com/abhisek/heartrisk/internal/store"
	"github.com/abhisek/heartrisk/internal/ui/layout"
)

// Options holds the dependencies the TUI needs.
type Options struct {
	Predictor predict.Predictor
	// EventRepo is nil when prediction history is disabled.
	EventRepo store.EventRepo
	ModelKind string
	Logger    *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	modelKind string
	width     int
	height    int
}

// newAppModel creates an AppModel that opens on the welcome splash.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	formFactory := func() screen.Screen {
		return form.New(opts.Predictor, form.Options{
			History:   opts.EventRepo,
			ModelKind: opts.ModelKind,
			Logger:    opts.Logger,
		})
	}
	return AppModel{
		router:    router.New(welcome.New(formFactory)),
		modelKind: opts.ModelKind,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.modelKind, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Any key", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(m.height, header, footer))
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	return err
}
