package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/heartrisk/internal/router"
	"github.com/abhisek/heartrisk/internal/screen"
	"github.com/abhisek/heartrisk/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 4500 * time.Millisecond
)

const heartArt = `  ▄███▄   ▄███▄
 █████████████████
 ▀███████████████▀
   ▀███████████▀
     ▀███████▀
       ▀███▀
         ▀`

// pulse frames beat beside the heart
var pulseFrames = []string{"─╮╭─", "─╯╰─"}

type tickMsg time.Time

// WelcomeScreen shows a splash animation before transitioning to the form.
type WelcomeScreen struct {
	nextFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced by nextFactory.
func New(nextFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		nextFactory: nextFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		// Any key skips the rest of the animation.
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.nextFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	heartStyle := lipgloss.NewStyle().Foreground(theme.Primary)

	// Phase 1+: heart
	rendered := heartStyle.Render(heartArt)

	// Phase 2+: pulse trace on both sides
	if w.elapsed >= phase1End {
		frame := w.tickCount % len(pulseFrames)
		pulse := lipgloss.NewStyle().Foreground(theme.Secondary).Render(pulseFrames[frame])

		lines := strings.Split(rendered, "\n")
		if len(lines) > 2 {
			lines[2] = pulse + "  " + lines[2] + "  " + pulse
		}
		rendered = strings.Join(lines, "\n")
	}

	sections = append(sections, rendered)

	// Phase 3+: banner + tagline
	if w.elapsed >= phase2End {
		sections = append(sections, "")
		sections = append(sections, RenderBanner(width))
		sections = append(sections, "")

		tagline := theme.Subtitle.Render("Heart disease risk, one form away")
		sections = append(sections, tagline)
	}

	// "press any key" hint
	if w.elapsed >= phase2End {
		sections = append(sections, "")
		hint := theme.Hint.Render("press any key to continue")
		sections = append(sections, hint)
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
