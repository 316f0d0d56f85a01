package session

import (
	"fmt"
	"testing"

	"github.com/shuhei10/whquiz/internal/quiz"
)

func testPool(n int) []quiz.Question {
	pool := make([]quiz.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, quiz.Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Grade:   quiz.Grade4,
			Chapter: "屋久島",
			Title:   fmt.Sprintf("question %d", i+1),
			Choices: []quiz.Choice{
				{ID: "A", Text: "right"},
				{ID: "B", Text: "wrong"},
			},
			AnswerID: "A",
		})
	}
	return pool
}

func idSet(qs []quiz.Question) map[string]bool {
	set := make(map[string]bool, len(qs))
	for _, q := range qs {
		set[q.ID] = true
	}
	return set
}

func TestStart_CountLargerThanPool(t *testing.T) {
	pool := testPool(2)
	s := Start(pool, 10)

	if len(s.Questions) != 2 {
		t.Fatalf("len(Questions) = %d, want 2", len(s.Questions))
	}
	set := idSet(s.Questions)
	if !set["q1"] || !set["q2"] {
		t.Errorf("Questions = %v, want permutation of pool", s.Questions)
	}
}

func TestStart_IsPermutationOfPool(t *testing.T) {
	pool := testPool(8)
	s := Start(pool, len(pool))

	if len(s.Questions) != len(pool) {
		t.Fatalf("len(Questions) = %d, want %d", len(s.Questions), len(pool))
	}
	set := idSet(s.Questions)
	for _, q := range pool {
		if !set[q.ID] {
			t.Errorf("question %s missing from shuffled set", q.ID)
		}
	}
	if len(set) != len(pool) {
		t.Errorf("shuffled set has duplicates: %d distinct ids", len(set))
	}
}

func TestStart_CountSmallerThanPool(t *testing.T) {
	pool := testPool(10)
	s := Start(pool, 4)

	if len(s.Questions) != 4 {
		t.Fatalf("len(Questions) = %d, want 4", len(s.Questions))
	}
	poolIDs := idSet(pool)
	seen := make(map[string]bool)
	for _, q := range s.Questions {
		if !poolIDs[q.ID] {
			t.Errorf("question %s not drawn from pool", q.ID)
		}
		if seen[q.ID] {
			t.Errorf("duplicate question %s in session", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestStart_EmptyPool(t *testing.T) {
	s := Start(nil, 10)
	if len(s.Questions) != 0 {
		t.Fatalf("len(Questions) = %d, want 0", len(s.Questions))
	}
	if s.Phase() != PhaseFinished {
		t.Errorf("Phase = %v, want PhaseFinished", s.Phase())
	}
	sum := s.Finish()
	if sum.Correct != 0 || sum.Answered != 0 {
		t.Errorf("Finish() = %+v, want zero summary", sum)
	}
}

func TestAnswer_OnePerQuestion(t *testing.T) {
	s := Start(testPool(3), 3)
	q := s.Current()
	if q == nil {
		t.Fatal("no current question")
	}

	correct, accepted := s.Answer(q.ID, "A")
	if !accepted || !correct {
		t.Fatalf("first Answer = (%v, %v), want (true, true)", correct, accepted)
	}

	// Second answer for the same question never changes the outcome.
	if _, accepted := s.Answer(q.ID, "B"); accepted {
		t.Error("second Answer was accepted")
	}
	rec, ok := s.Answered(q.ID)
	if !ok || !rec.Correct || rec.ChoiceID != "A" {
		t.Errorf("Answered = %+v, %v; want first answer preserved", rec, ok)
	}
}

func TestAnswer_TwiceDoesNotChangeSummary(t *testing.T) {
	s := Start(testPool(2), 2)
	first := s.Current()
	s.Answer(first.ID, "B") // wrong
	s.Answer(first.ID, "A") // ignored
	s.Advance()
	second := s.Current()
	s.Answer(second.ID, "A") // correct
	s.Advance()

	sum := s.Finish()
	if sum.Correct != 1 {
		t.Errorf("Correct = %d, want 1", sum.Correct)
	}
	if len(sum.WrongIDs) != 1 || sum.WrongIDs[0] != first.ID {
		t.Errorf("WrongIDs = %v, want [%s]", sum.WrongIDs, first.ID)
	}
	if len(sum.CorrectIDs) != 1 || sum.CorrectIDs[0] != second.ID {
		t.Errorf("CorrectIDs = %v, want [%s]", sum.CorrectIDs, second.ID)
	}
}

func TestAnswer_UnknownQuestionRejected(t *testing.T) {
	s := Start(testPool(2), 2)
	if _, accepted := s.Answer("nope", "A"); accepted {
		t.Error("answer for unknown question was accepted")
	}
	if sum := s.Finish(); sum.Answered != 0 {
		t.Errorf("Answered = %d, want 0", sum.Answered)
	}
}

func TestAdvance_FinishesAfterLastQuestion(t *testing.T) {
	s := Start(testPool(2), 2)

	s.Answer(s.Current().ID, "A")
	if done := s.Advance(); done {
		t.Fatal("Advance done after first of two questions")
	}
	s.Answer(s.Current().ID, "A")
	if done := s.Advance(); !done {
		t.Fatal("Advance not done after last question")
	}
	if s.Phase() != PhaseFinished {
		t.Errorf("Phase = %v, want PhaseFinished", s.Phase())
	}
	if s.Current() != nil {
		t.Error("Current() != nil after finish")
	}

	// No transition back: answers after finish are rejected.
	if _, accepted := s.Answer(s.Questions[0].ID, "A"); accepted {
		t.Error("answer accepted after finish")
	}
}

func TestFinish_PartialProgress(t *testing.T) {
	s := Start(testPool(5), 5)
	s.Answer(s.Current().ID, "B")

	sum := s.Finish()
	if sum.Answered != 1 || sum.Correct != 0 {
		t.Errorf("partial summary = %+v", sum)
	}
	if sum.Total != 5 {
		t.Errorf("Total = %d, want 5", sum.Total)
	}
}
