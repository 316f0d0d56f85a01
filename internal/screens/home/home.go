package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/router"
	"github.com/shuhei10/whquiz/internal/screen"
	"github.com/shuhei10/whquiz/internal/screens/chapters"
	"github.com/shuhei10/whquiz/internal/themesel"
	"github.com/shuhei10/whquiz/internal/ui/components"
	"github.com/shuhei10/whquiz/internal/ui/theme"
)

// HomeScreen is the grade picker shown at startup.
type HomeScreen struct {
	menu       components.Menu
	reviewLeft map[quiz.Grade]int
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. Review counts are read once at
// construction so the menu can show how much is waiting per grade.
func New(coord *practice.Coordinator, reviews *review.Store, themes *themesel.Selection) *HomeScreen {
	reviewLeft := make(map[quiz.Grade]int, len(quiz.Grades))
	if reviews != nil {
		ctx := context.Background()
		for _, g := range quiz.Grades {
			n, err := reviews.CountAllForGrade(ctx, g)
			if err == nil {
				reviewLeft[g] = n
			}
		}
	}

	items := make([]components.MenuItem, 0, len(quiz.Grades)+1)
	for _, g := range quiz.Grades {
		grade := g
		label := fmt.Sprintf("%d級にちょうせん", int(grade))
		if n := reviewLeft[grade]; n > 0 {
			label = fmt.Sprintf("%s   (復習 %d問)", label, n)
		}
		items = append(items, components.MenuItem{
			Label: label,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: chapters.New(coord, reviews, themes, grade)}
				}
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:  "おわる",
		Action: func() tea.Cmd { return tea.Quit },
	})

	return &HomeScreen{
		menu:       components.NewMenu(items),
		reviewLeft: reviewLeft,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("世界遺産クイズ"))
	sections = append(sections, theme.Subtitle.Width(width).Render("World Heritage Quiz"))
	sections = append(sections, "")
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
