package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/ui/theme"
)

// MultiChoice renders a question's choices and tracks the cursor until
// one choice is submitted. Choice labels come from the question data,
// not from position.
type MultiChoice struct {
	Question  quiz.Question
	Selected  int
	Submitted bool
	ChosenID  string
}

// NewMultiChoice creates a selector for one question.
func NewMultiChoice(q quiz.Question) MultiChoice {
	return MultiChoice{Question: q, Selected: 0}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation. Submission is driven by the
// owning screen via Choose so it can decide what a submit means.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Question.Choices)-1 {
			m.Selected++
		}
	}

	return m, nil
}

// Choose marks the choice at the cursor as submitted and returns its id.
func (m *MultiChoice) Choose() string {
	if m.Submitted || m.Selected < 0 || m.Selected >= len(m.Question.Choices) {
		return ""
	}
	m.Submitted = true
	m.ChosenID = m.Question.Choices[m.Selected].ID
	return m.ChosenID
}

// SelectIndex moves the cursor to i if a choice exists there.
func (m *MultiChoice) SelectIndex(i int) bool {
	if i < 0 || i >= len(m.Question.Choices) {
		return false
	}
	m.Selected = i
	return true
}

// View renders the question title and its choices. After submission the
// correct choice is highlighted and a wrong pick is marked.
func (m MultiChoice) View() string {
	questionStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	s := questionStyle.Render(m.Question.Title) + "\n\n"

	for i, c := range m.Question.Choices {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s)  %s", prefix, c.ID, c.Text)

		if m.Submitted {
			switch {
			case c.ID == m.Question.AnswerID:
				s += lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(line) + "\n"
			case c.ID == m.ChosenID:
				s += lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(line) + "\n"
			default:
				s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
			}
		} else {
			if i == m.Selected {
				s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line) + "\n"
			} else {
				s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
			}
		}
	}

	return s
}

// IsCorrect returns true if the submitted choice is the answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenID == m.Question.AnswerID
}
