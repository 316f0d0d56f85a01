// Package chapters is the per-grade hub: it lists the grade's chapters
// with question and review counts, manages the persisted theme
// selection, and launches practice, test, and review attempts.
package chapters

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/shuhei10/whquiz/internal/pool"
	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/router"
	"github.com/shuhei10/whquiz/internal/screen"
	quizscreen "github.com/shuhei10/whquiz/internal/screens/quiz"
	"github.com/shuhei10/whquiz/internal/themesel"
	"github.com/shuhei10/whquiz/internal/ui/components"
	"github.com/shuhei10/whquiz/internal/ui/layout"
	"github.com/shuhei10/whquiz/internal/ui/theme"
)

// ChaptersScreen lists the chapters of one grade.
type ChaptersScreen struct {
	coord   *practice.Coordinator
	reviews *review.Store
	themes  *themesel.Selection
	grade   quiz.Grade

	// seq guards against stale async results after a reload.
	seq     int
	loading bool
	errMsg  string

	payload   *pool.Payload
	allThemes []quiz.Theme
	selected  []string
	counts    map[string]int
	totalLeft int
	cursor    int
	filterOn  bool
	filter    components.TextInput

	// count is the requested session length; 0 means the default.
	count      int
	countOn    bool
	countInput components.TextInput
}

var _ screen.Screen = (*ChaptersScreen)(nil)
var _ screen.KeyHintProvider = (*ChaptersScreen)(nil)
var _ screen.StatusProvider = (*ChaptersScreen)(nil)

// New creates the chapter list for grade.
func New(coord *practice.Coordinator, reviews *review.Store, themes *themesel.Selection, grade quiz.Grade) *ChaptersScreen {
	return &ChaptersScreen{
		coord:      coord,
		reviews:    reviews,
		themes:     themes,
		grade:      grade,
		filter:     components.NewTextInput("章をしぼりこむ...", false, 30),
		countInput: components.NewTextInput("問題数", true, 3),
	}
}

func (c *ChaptersScreen) Init() tea.Cmd {
	return c.reload()
}

// reload starts a fresh pool load and review count scan, invalidating
// any loads still in flight.
func (c *ChaptersScreen) reload() tea.Cmd {
	c.seq++
	c.loading = true
	c.errMsg = ""
	seq := c.seq
	return tea.Batch(c.loadPool(seq), c.loadCounts(seq))
}

func (c *ChaptersScreen) loadPool(seq int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		payload, err := c.coord.Source().LoadPool(ctx, c.grade)
		return poolLoadedMsg{seq: seq, payload: payload, err: err}
	}
}

func (c *ChaptersScreen) loadCounts(seq int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		chaptersWithSets, err := c.reviews.Chapters(ctx, c.grade)
		if err != nil {
			return reviewCountsMsg{seq: seq, err: err}
		}
		counts := make(map[string]int, len(chaptersWithSets))
		for _, ch := range chaptersWithSets {
			n, err := c.reviews.Count(ctx, c.grade, ch)
			if err != nil {
				return reviewCountsMsg{seq: seq, err: err}
			}
			counts[ch] = n
		}
		// The header total is the deduplicated grade-wide union, matching
		// what the grade picker shows; summing chapters would double-count
		// an id present under two chapter keys.
		total, err := c.reviews.CountAllForGrade(ctx, c.grade)
		if err != nil {
			return reviewCountsMsg{seq: seq, err: err}
		}
		return reviewCountsMsg{seq: seq, counts: counts, total: total}
	}
}

func (c *ChaptersScreen) Title() string {
	return fmt.Sprintf("%d級", int(c.grade))
}

func (c *ChaptersScreen) Status() string {
	if c.payload == nil {
		return ""
	}
	switch c.payload.Origin {
	case pool.OriginCache:
		return "オフライン (キャッシュ)"
	case pool.OriginNetwork:
		return "オンライン"
	default:
		return ""
	}
}

func (c *ChaptersScreen) KeyHints() []layout.KeyHint {
	if c.countOn {
		return []layout.KeyHint{
			{Key: "Enter", Description: "決定"},
			{Key: "Esc", Description: "やめる"},
		}
	}
	if c.filterOn {
		return []layout.KeyHint{
			{Key: "Enter", Description: "決定"},
			{Key: "Esc", Description: "やめる"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "練習"},
		{Key: "t", Description: "テスト"},
		{Key: "r", Description: "復習"},
		{Key: "Space", Description: "選択"},
		{Key: "n", Description: "問題数"},
		{Key: "/", Description: "しぼりこみ"},
	}
}

func (c *ChaptersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case poolLoadedMsg:
		if msg.seq != c.seq {
			return c, nil
		}
		c.loading = false
		if msg.err != nil {
			c.errMsg = msg.err.Error()
			return c, nil
		}
		c.payload = msg.payload
		c.allThemes = quiz.SortThemes(msg.payload.Themes)
		return c, c.loadSelection()

	case reviewCountsMsg:
		if msg.seq != c.seq {
			return c, nil
		}
		if msg.err == nil {
			c.counts = msg.counts
			c.totalLeft = msg.total
		}
		return c, nil

	case selectionLoadedMsg:
		c.selected = msg.slugs
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	if c.countOn {
		var cmd tea.Cmd
		c.countInput, cmd = c.countInput.Update(msg)
		return c, cmd
	}
	if c.filterOn {
		var cmd tea.Cmd
		c.filter, cmd = c.filter.Update(msg)
		return c, cmd
	}
	return c, nil
}

// selectionLoadedMsg carries the persisted theme selection.
type selectionLoadedMsg struct {
	slugs []string
}

func (c *ChaptersScreen) loadSelection() tea.Cmd {
	return func() tea.Msg {
		slugs, err := c.themes.Load(context.Background(), c.grade)
		if err != nil {
			return selectionLoadedMsg{}
		}
		return selectionLoadedMsg{slugs: slugs}
	}
}

func (c *ChaptersScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if c.countOn {
		switch key {
		case "esc":
			c.countOn = false
			c.countInput.Reset()
			return c, nil
		case "enter":
			if n, err := c.countInput.NumericValue(); err == nil && n > 0 {
				c.count = n
			} else {
				c.count = 0
			}
			c.countOn = false
			c.countInput.Reset()
			return c, nil
		}
		var cmd tea.Cmd
		c.countInput, cmd = c.countInput.Update(msg)
		return c, cmd
	}

	if c.filterOn {
		switch key {
		case "esc":
			c.filterOn = false
			c.filter.Reset()
			c.cursor = 0
			return c, nil
		case "enter":
			c.filterOn = false
			c.cursor = 0
			return c, nil
		}
		var cmd tea.Cmd
		c.filter, cmd = c.filter.Update(msg)
		c.clampCursor()
		return c, cmd
	}

	if c.errMsg != "" && key == "enter" {
		return c, c.reload()
	}

	switch key {
	case "esc":
		return c, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.visibleThemes()) {
			c.cursor++
		}
	case "/":
		c.filterOn = true
		return c, c.filter.Init()
	case "n":
		c.countOn = true
		return c, c.countInput.Init()
	case "ctrl+r":
		return c, c.reload()
	case " ", "space":
		return c, c.toggleSelected()
	case "a":
		return c, c.clearSelection()
	case "enter":
		return c.startAttempt(practice.ModePractice)
	case "t":
		return c.startAttempt(practice.ModeTest)
	case "r":
		return c.startAttempt(practice.ModeReview)
	}
	return c, nil
}

// visibleThemes applies the filter input to the theme list. Row 0 of
// the cursor space is always the "all chapters" entry; themes follow.
func (c *ChaptersScreen) visibleThemes() []quiz.Theme {
	needle := strings.TrimSpace(c.filter.Value())
	if needle == "" {
		return c.allThemes
	}
	var out []quiz.Theme
	for _, t := range c.allThemes {
		if strings.Contains(t.Title, needle) || strings.Contains(t.Slug, needle) {
			out = append(out, t)
		}
	}
	return out
}

func (c *ChaptersScreen) clampCursor() {
	if max := len(c.visibleThemes()); c.cursor > max {
		c.cursor = max
	}
}

// cursorTheme returns the theme under the cursor, or nil when the
// cursor is on the "all chapters" row.
func (c *ChaptersScreen) cursorTheme() *quiz.Theme {
	if c.cursor == 0 {
		return nil
	}
	visible := c.visibleThemes()
	if c.cursor-1 >= len(visible) {
		return nil
	}
	return &visible[c.cursor-1]
}

func (c *ChaptersScreen) toggleSelected() tea.Cmd {
	t := c.cursorTheme()
	if t == nil {
		return nil
	}
	c.selected = themesel.Toggle(c.selected, t.Slug)
	selected := c.selected
	return func() tea.Msg {
		_ = c.themes.Save(context.Background(), c.grade, selected)
		return nil
	}
}

// clearSelection empties the stored selection, which means every
// chapter is in play again.
func (c *ChaptersScreen) clearSelection() tea.Cmd {
	if len(c.selected) == 0 {
		return nil
	}
	c.selected = nil
	return func() tea.Msg {
		_ = c.themes.Save(context.Background(), c.grade, nil)
		return nil
	}
}

func (c *ChaptersScreen) startAttempt(mode practice.Mode) (screen.Screen, tea.Cmd) {
	if c.payload == nil {
		return c, nil
	}
	req := practice.Request{Grade: c.grade, Count: c.count, Mode: mode}
	if t := c.cursorTheme(); t != nil {
		req.Chapter = t.Title
	}
	return c, func() tea.Msg {
		return router.PushScreenMsg{Screen: quizscreen.New(c.coord, req)}
	}
}

func (c *ChaptersScreen) View(width, height int) string {
	if c.errMsg != "" {
		msg := theme.Incorrect.Render("読み込みに失敗しました") + "\n\n" +
			theme.Body.Render(c.errMsg) + "\n\n" +
			theme.Hint.Render("Enter でもう一度")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}
	if c.loading || c.payload == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("問題を読み込んでいます..."))
	}

	var b strings.Builder

	if c.countOn {
		b.WriteString("  1回の問題数: " + c.countInput.View() + "\n\n")
	}
	if c.filterOn || c.filter.Value() != "" {
		b.WriteString("  " + c.filter.View() + "\n\n")
	}

	b.WriteString(c.renderRow(0, "すべての章から出題", len(c.payload.Questions), c.totalLeft))

	for i, t := range c.visibleThemes() {
		left := c.counts[t.Title]
		b.WriteString(c.renderRow(i+1, t.Title, t.Count, left))
	}

	if len(c.selected) > 0 {
		b.WriteString("\n" + theme.Hint.Render(
			fmt.Sprintf("  %d章を選択中 (すべての章から出題は選択した章だけ / a で解除)", len(c.selected))))
	}
	if c.count > 0 {
		b.WriteString("\n" + theme.Hint.Render(
			fmt.Sprintf("  1回の問題数: %d問", c.count)))
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (c *ChaptersScreen) renderRow(row int, label string, questions, reviewLeft int) string {
	cursor := "   "
	if row == c.cursor {
		cursor = " ▸ "
	}

	mark := "  "
	if t := c.rowTheme(row); t != nil && c.isSelected(t.Slug) {
		mark = "◉ "
	} else if t != nil {
		mark = "○ "
	}

	line := fmt.Sprintf("%s%s%s", cursor, mark, label)
	detail := fmt.Sprintf("  %d問", questions)
	if reviewLeft > 0 {
		detail += fmt.Sprintf("  復習 %d", reviewLeft)
	}

	style := theme.Unselected
	if row == c.cursor {
		style = theme.Selected
	}
	return style.Render(line) + theme.Hint.Render(detail) + "\n"
}

func (c *ChaptersScreen) rowTheme(row int) *quiz.Theme {
	if row == 0 {
		return nil
	}
	visible := c.visibleThemes()
	if row-1 >= len(visible) {
		return nil
	}
	return &visible[row-1]
}

func (c *ChaptersScreen) isSelected(slug string) bool {
	for _, s := range c.selected {
		if s == slug {
			return true
		}
	}
	return false
}
