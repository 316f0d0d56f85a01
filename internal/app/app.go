// Package app hosts the root Bubble Tea model: the screen router, the
// shared header and footer frame, and program startup.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/router"
	"github.com/shuhei10/whquiz/internal/screen"
	"github.com/shuhei10/whquiz/internal/screens/home"
	"github.com/shuhei10/whquiz/internal/themesel"
	"github.com/shuhei10/whquiz/internal/ui/layout"
)

// Options carries the wired services the screens depend on.
type Options struct {
	Coordinator *practice.Coordinator
	Reviews     *review.Store
	Themes      *themesel.Selection
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	homeScreen := home.New(opts.Coordinator, opts.Reviews, opts.Themes)
	return AppModel{
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Esc is owned by the screens: the quiz uses it for its quit
		// confirm and the chapter filter for leaving input mode, so
		// each screen decides when Esc means "go back".
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
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
	status := ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
