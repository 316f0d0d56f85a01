package quiz

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/shuhei10/whquiz/internal/kv"
	"github.com/shuhei10/whquiz/internal/pool"
	"github.com/shuhei10/whquiz/internal/practice"
	qz "github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/router"
	"github.com/shuhei10/whquiz/internal/themesel"
)

type fixedSource struct {
	questions []qz.Question
}

func (s *fixedSource) LoadPool(_ context.Context, _ qz.Grade) (*pool.Payload, error) {
	return &pool.Payload{Questions: s.questions, Origin: pool.OriginBank}, nil
}

func testQuestion() qz.Question {
	return qz.Question{
		ID:      "q1",
		Grade:   qz.Grade4,
		Chapter: "屋久島",
		Title:   "縄文杉はどの島？",
		Choices: []qz.Choice{
			{ID: "A", Text: "屋久島"},
			{ID: "B", Text: "奄美大島"},
		},
		AnswerID:    "A",
		Explanation: "縄文杉は屋久島にある。",
	}
}

func testScreen(t *testing.T, mode practice.Mode) *QuizScreen {
	t.Helper()
	mem := kv.NewMemory()
	coord := practice.New(&fixedSource{questions: []qz.Question{testQuestion()}},
		review.New(mem), themesel.New(mem), mem)
	return New(coord, practice.Request{Grade: qz.Grade4, Count: 5, Mode: mode})
}

// ready runs Init and feeds the assembled attempt back into the screen.
func ready(t *testing.T, s *QuizScreen) *QuizScreen {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init returned nil cmd")
	}
	updated, _ := s.Update(cmd())
	return updated.(*QuizScreen)
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestQuizScreenAnswerShowsFeedback(t *testing.T) {
	s := ready(t, testScreen(t, practice.ModePractice))

	if s.attempt == nil {
		t.Fatal("attempt not assembled")
	}

	updated, _ := s.Update(keyPress('1')) // choice A, correct
	s = updated.(*QuizScreen)

	if !s.showingFeedback {
		t.Error("expected feedback after answering in practice mode")
	}
	if !s.lastCorrect {
		t.Error("choice A should be correct")
	}

	view := s.View(80, 24)
	if view == "" {
		t.Error("expected non-empty feedback view")
	}
}

func TestQuizScreenFinishReplacesWithResult(t *testing.T) {
	s := ready(t, testScreen(t, practice.ModePractice))

	updated, _ := s.Update(keyPress('1'))
	s = updated.(*QuizScreen)

	// Any key dismisses feedback.
	updated, cmd := s.Update(keyPress(' '))
	s = updated.(*QuizScreen)
	if cmd == nil {
		t.Fatal("expected advance cmd after feedback")
	}

	// The single question is answered, so advancing finishes the attempt.
	updated, cmd = s.Update(cmd())
	s = updated.(*QuizScreen)
	if cmd == nil {
		t.Fatal("expected finish cmd")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg carrying the result screen")
	}
}

func TestQuizScreenTestModeWithholdsFeedback(t *testing.T) {
	s := ready(t, testScreen(t, practice.ModeTest))

	updated, cmd := s.Update(keyPress('2')) // wrong on purpose
	s = updated.(*QuizScreen)

	if s.showingFeedback {
		t.Error("test mode must not show per-question feedback")
	}
	if cmd == nil {
		t.Fatal("expected immediate advance in test mode")
	}
}

func TestQuizScreenEmptyReviewFinishesImmediately(t *testing.T) {
	s := testScreen(t, practice.ModeReview)

	cmd := s.Init()
	updated, finishCmd := s.Update(cmd())
	s = updated.(*QuizScreen)

	if finishCmd == nil {
		t.Fatal("expected finish cmd for an empty review set")
	}
	if _, ok := finishCmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg for the empty result")
	}
}

func TestQuizScreenQuitConfirm(t *testing.T) {
	s := ready(t, testScreen(t, practice.ModePractice))

	updated, _ := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	s = updated.(*QuizScreen)
	if !s.quitConfirm {
		t.Fatal("expected quit confirm after esc")
	}

	updated, _ = s.Update(keyPress('n'))
	s = updated.(*QuizScreen)
	if s.quitConfirm {
		t.Error("n should dismiss the quit confirm")
	}

	updated, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	s = updated.(*QuizScreen)
	updated, cmd := s.Update(keyPress('y'))
	s = updated.(*QuizScreen)
	if cmd == nil {
		t.Fatal("expected finish cmd after confirming quit")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg after quitting early")
	}
}
