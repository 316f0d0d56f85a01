// Package result shows the outcome of a finished attempt and commits
// it to the review sets.
package result

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/router"
	"github.com/shuhei10/whquiz/internal/screen"
	"github.com/shuhei10/whquiz/internal/session"
	"github.com/shuhei10/whquiz/internal/ui/layout"
	"github.com/shuhei10/whquiz/internal/ui/theme"
)

// commitDoneMsg reports the review set update.
type commitDoneMsg struct {
	err error
}

// ResultScreen displays a session summary.
type ResultScreen struct {
	coord   *practice.Coordinator
	attempt *practice.Attempt
	summary session.Summary

	// again builds a fresh attempt screen for the same request in the
	// given mode. Supplied by the quiz screen; nil disables retry.
	again func(practice.Mode) screen.Screen

	committed bool
	commitErr error
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for a finished attempt.
func New(coord *practice.Coordinator, attempt *practice.Attempt, summary session.Summary, again func(practice.Mode) screen.Screen) *ResultScreen {
	return &ResultScreen{coord: coord, attempt: attempt, summary: summary, again: again}
}

// Init commits the outcome to the review sets in the background.
func (r *ResultScreen) Init() tea.Cmd {
	return func() tea.Msg {
		err := r.coord.CommitSummary(context.Background(), r.attempt, r.summary)
		return commitDoneMsg{err: err}
	}
}

func (r *ResultScreen) Title() string {
	return "結果"
}

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "もどる"},
	}
	if r.again != nil {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "もういちど"})
	}
	if r.canReviewMissed() {
		hints = append(hints, layout.KeyHint{Key: "m", Description: "まちがいを復習"})
	}
	return hints
}

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case commitDoneMsg:
		r.committed = true
		r.commitErr = msg.err
		return r, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			return r, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			if r.again != nil {
				mode := r.attempt.Mode
				return r, func() tea.Msg {
					return router.ReplaceScreenMsg{Screen: r.again(mode)}
				}
			}
		case "m":
			// Review the misses right away. Waits for the commit so the
			// fresh review attempt sees the ids recorded by this one.
			if r.canReviewMissed() {
				return r, func() tea.Msg {
					return router.ReplaceScreenMsg{Screen: r.again(practice.ModeReview)}
				}
			}
		}
	}
	return r, nil
}

func (r *ResultScreen) canReviewMissed() bool {
	return r.again != nil && r.committed && r.commitErr == nil &&
		r.attempt.Mode != practice.ModeReview && len(r.summary.WrongIDs) > 0
}

func (r *ResultScreen) View(width, height int) string {
	sum := r.summary

	var b strings.Builder

	if sum.Total == 0 {
		b.WriteString(theme.Title.Width(width).Render("出題できる問題がありません"))
		b.WriteString("\n\n")
		if r.attempt.Mode == practice.ModeReview {
			b.WriteString(theme.Subtitle.Width(width).Render("復習する問題はぜんぶクリアしました！"))
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
	}

	b.WriteString(theme.Title.Width(width).Render("おつかれさま！"))
	b.WriteString("\n\n")

	accuracy := 0.0
	if sum.Answered > 0 {
		accuracy = float64(sum.Correct) / float64(sum.Answered)
	}
	statsLine := fmt.Sprintf("せいかい %d / %d        正答率 %.0f%%",
		sum.Correct, sum.Answered, accuracy*100)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n\n")

	if sum.Answered < sum.Total {
		b.WriteString(theme.Subtitle.Width(width).Render(
			fmt.Sprintf("(%d問は未回答のまま終了)", sum.Total-sum.Answered)))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Subtitle.Width(width).Render(r.reviewLine()))

	if r.commitErr != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("記録の保存に失敗しました: " + r.commitErr.Error()))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func (r *ResultScreen) reviewLine() string {
	switch r.attempt.Mode {
	case practice.ModeReview:
		if n := len(r.summary.CorrectIDs); n > 0 {
			return fmt.Sprintf("%d問を復習リストからクリア！", n)
		}
		return "復習リストはそのままです"
	default:
		if n := len(r.summary.WrongIDs); n > 0 {
			return fmt.Sprintf("まちがえた%d問を復習リストに入れました", n)
		}
		return "まちがいなし！復習リストに追加はありません"
	}
}
