// Package quiz drives one quiz attempt: question presentation, answer
// submission, per-question feedback, and the hand-off to the result
// screen.
package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/router"
	"github.com/shuhei10/whquiz/internal/screen"
	"github.com/shuhei10/whquiz/internal/screens/result"
	"github.com/shuhei10/whquiz/internal/session"
	"github.com/shuhei10/whquiz/internal/ui/components"
	"github.com/shuhei10/whquiz/internal/ui/layout"
	"github.com/shuhei10/whquiz/internal/ui/theme"
)

// QuizScreen runs one attempt assembled by the coordinator.
type QuizScreen struct {
	coord *practice.Coordinator
	req   practice.Request

	seq     int
	attempt *practice.Attempt
	mc      components.MultiChoice
	errMsg  string

	showingFeedback bool
	lastCorrect     bool
	quitConfirm     bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen; the session is assembled asynchronously in
// Init.
func New(coord *practice.Coordinator, req practice.Request) *QuizScreen {
	return &QuizScreen{coord: coord, req: req}
}

func (q *QuizScreen) Init() tea.Cmd {
	q.seq++
	seq := q.seq
	return func() tea.Msg {
		att, err := q.coord.Assemble(context.Background(), q.req)
		return attemptReadyMsg{seq: seq, attempt: att, err: err}
	}
}

func (q *QuizScreen) Title() string {
	switch q.req.Mode {
	case practice.ModeTest:
		return "テスト"
	case practice.ModeReview:
		return "復習"
	default:
		return "練習"
	}
}

func (q *QuizScreen) KeyHints() []layout.KeyHint {
	if q.quitConfirm {
		return []layout.KeyHint{
			{Key: "y", Description: "終了する"},
			{Key: "n", Description: "続ける"},
		}
	}
	if q.showingFeedback {
		return []layout.KeyHint{
			{Key: "any key", Description: "次へ"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-9", Description: "答える"},
		{Key: "Enter", Description: "決定"},
		{Key: "Esc", Description: "中断"},
	}
}

func (q *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case attemptReadyMsg:
		return q.handleReady(msg)
	case advanceMsg:
		return q.advance()
	case tea.KeyMsg:
		return q.handleKey(msg)
	}
	return q, nil
}

func (q *QuizScreen) handleReady(msg attemptReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.seq != q.seq {
		return q, nil
	}
	if msg.err != nil {
		q.errMsg = msg.err.Error()
		return q, nil
	}
	q.attempt = msg.attempt

	// Nothing to serve, e.g. review mode with an empty review set.
	if q.attempt.Session.Phase() == session.PhaseFinished {
		return q, q.finish()
	}

	q.mc = components.NewMultiChoice(*q.attempt.Session.Current())
	return q, nil
}

func (q *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if q.errMsg != "" {
		return q, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if q.attempt == nil {
		return q, nil
	}

	if q.quitConfirm {
		switch key {
		case "y", "Y":
			q.quitConfirm = false
			return q, q.finish()
		case "n", "N", "esc":
			q.quitConfirm = false
		}
		return q, nil
	}

	if q.showingFeedback {
		return q, func() tea.Msg { return advanceMsg{} }
	}

	switch key {
	case "esc":
		q.quitConfirm = true
		return q, nil
	case "enter":
		return q.submit()
	case "up", "k", "down", "j":
		var cmd tea.Cmd
		q.mc, cmd = q.mc.Update(msg)
		return q, cmd
	}

	// Digit keys pick and submit in one stroke.
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if q.mc.SelectIndex(int(key[0] - '1')) {
			return q.submit()
		}
	}

	return q, nil
}

func (q *QuizScreen) submit() (screen.Screen, tea.Cmd) {
	current := q.attempt.Session.Current()
	if current == nil {
		return q, q.finish()
	}

	choiceID := q.mc.Choose()
	if choiceID == "" {
		return q, nil
	}

	correct, accepted := q.attempt.Session.Answer(current.ID, choiceID)
	if !accepted {
		return q, func() tea.Msg { return advanceMsg{} }
	}
	q.lastCorrect = correct

	// Test mode withholds feedback until the result screen.
	if q.attempt.Mode == practice.ModeTest {
		return q, func() tea.Msg { return advanceMsg{} }
	}

	q.showingFeedback = true
	return q, nil
}

func (q *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	q.showingFeedback = false
	if q.attempt.Session.Advance() {
		return q, q.finish()
	}
	q.mc = components.NewMultiChoice(*q.attempt.Session.Current())
	return q, nil
}

// finish summarizes the attempt and swaps in the result screen, so Esc
// from the result returns to the chapter list rather than a dead quiz.
func (q *QuizScreen) finish() tea.Cmd {
	att := q.attempt
	coord := q.coord
	req := q.req
	again := func(mode practice.Mode) screen.Screen {
		r := req
		r.Mode = mode
		return New(coord, r)
	}
	return func() tea.Msg {
		return router.ReplaceScreenMsg{
			Screen: result.New(coord, att, att.Session.Finish(), again),
		}
	}
}

func (q *QuizScreen) View(width, height int) string {
	if q.errMsg != "" {
		msg := theme.Incorrect.Render("開始できませんでした") + "\n\n" +
			theme.Body.Render(q.errMsg) + "\n\n" +
			theme.Hint.Render("何かキーを押すと戻ります")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}
	if q.attempt == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("準備中..."))
	}
	if q.quitConfirm {
		msg := theme.Body.Render("ここでやめますか？") + "\n\n" +
			theme.Hint.Render("答えた分だけ記録されます  (y/n)")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	var b strings.Builder

	sess := q.attempt.Session
	answered := len(sess.Questions) - remaining(sess)
	progress := components.NewProgressBar(
		fmt.Sprintf("%d / %d", answered, len(sess.Questions)),
		float64(answered)/float64(len(sess.Questions)),
		false, min(width-8, 60))
	b.WriteString("  " + progress.View() + "\n\n")

	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(q.mc.View()))

	if q.showingFeedback {
		b.WriteString("\n")
		if q.lastCorrect {
			b.WriteString("  " + theme.Correct.Render("○ せいかい！") + "\n")
		} else {
			b.WriteString("  " + theme.Incorrect.Render("✗ ざんねん...") + "\n")
		}
		if exp := q.mc.Question.Explanation; exp != "" {
			b.WriteString("\n" + lipgloss.NewStyle().
				PaddingLeft(2).
				Width(min(width-4, 76)).
				Foreground(theme.TextDim).
				Render(exp) + "\n")
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func remaining(s *session.Session) int {
	n := 0
	for _, q := range s.Questions {
		if _, ok := s.Answered(q.ID); !ok {
			n++
		}
	}
	return n
}
