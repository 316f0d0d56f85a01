package practice

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shuhei10/whquiz/internal/kv"
	"github.com/shuhei10/whquiz/internal/pool"
	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/session"
	"github.com/shuhei10/whquiz/internal/themesel"
)

type fixedSource struct {
	payload *pool.Payload
	err     error
}

func (s *fixedSource) LoadPool(_ context.Context, _ quiz.Grade) (*pool.Payload, error) {
	return s.payload, s.err
}

func question(id, chapter, slug string) quiz.Question {
	return quiz.Question{
		ID:          id,
		Grade:       quiz.Grade4,
		Chapter:     chapter,
		ChapterSlug: slug,
		Title:       "title " + id,
		Choices:     []quiz.Choice{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}},
		AnswerID:    "A",
	}
}

func testCoordinator(questions ...quiz.Question) (*Coordinator, kv.Store) {
	mem := kv.NewMemory()
	src := &fixedSource{payload: &pool.Payload{Questions: questions, Origin: pool.OriginBank}}
	return New(src, review.New(mem), themesel.New(mem), mem), mem
}

func idsOf(qs []quiz.Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	sort.Strings(ids)
	return ids
}

func TestAssemblePracticeWholeGrade(t *testing.T) {
	c, _ := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "屋久島", "g4-yakushima"),
		question("q3", "奄美", "g4-amami"),
	)

	att, err := c.Assemble(context.Background(), Request{Grade: quiz.Grade4, Count: 2, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(att.Session.Questions) != 2 {
		t.Errorf("session size = %d, want 2", len(att.Session.Questions))
	}
	if att.Session.Phase() != session.PhaseInProgress {
		t.Errorf("phase = %v", att.Session.Phase())
	}
}

func TestAssembleChapterFilter(t *testing.T) {
	c, _ := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "奄美", "g4-amami"),
		question("q3", "奄美", "g4-amami"),
	)

	att, err := c.Assemble(context.Background(), Request{Grade: quiz.Grade4, Chapter: " 奄美 ", Count: 10, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got := idsOf(att.Session.Questions)
	if len(got) != 2 || got[0] != "q2" || got[1] != "q3" {
		t.Errorf("session questions = %v, want [q2 q3]", got)
	}
}

func TestAssembleThemeSelection(t *testing.T) {
	c, mem := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "奄美", "g4-amami"),
	)
	ctx := context.Background()

	if err := themesel.New(mem).Save(ctx, quiz.Grade4, []string{"g4-amami"}); err != nil {
		t.Fatalf("Save selection: %v", err)
	}

	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got := idsOf(att.Session.Questions)
	if len(got) != 1 || got[0] != "q2" {
		t.Errorf("session questions = %v, want [q2]", got)
	}
}

func TestAssembleStaleSelectionFallsBackToFullPool(t *testing.T) {
	c, mem := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "奄美", "g4-amami"),
	)
	ctx := context.Background()

	// Selection references a chapter that no longer exists in the pool.
	if err := themesel.New(mem).Save(ctx, quiz.Grade4, []string{"g4-gone"}); err != nil {
		t.Fatalf("Save selection: %v", err)
	}

	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(att.Session.Questions) != 2 {
		t.Errorf("session size = %d, want full pool of 2", len(att.Session.Questions))
	}
}

func TestAssembleReviewRestrictsToMissed(t *testing.T) {
	c, mem := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "屋久島", "g4-yakushima"),
		question("q3", "奄美", "g4-amami"),
	)
	ctx := context.Background()

	rs := review.New(mem)
	if err := rs.Add(ctx, quiz.Grade4, "屋久島", []string{"q2"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := rs.Add(ctx, quiz.Grade4, "奄美", []string{"q3"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Chapter-scoped review.
	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Chapter: "屋久島", Count: 10, Mode: ModeReview})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got := idsOf(att.Session.Questions)
	if len(got) != 1 || got[0] != "q2" {
		t.Errorf("chapter review questions = %v, want [q2]", got)
	}

	// Grade-wide review draws across chapters.
	att, err = c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModeReview})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got = idsOf(att.Session.Questions)
	if len(got) != 2 || got[0] != "q2" || got[1] != "q3" {
		t.Errorf("grade review questions = %v, want [q2 q3]", got)
	}
}

func TestAssembleReviewEmptySetFinishesImmediately(t *testing.T) {
	c, _ := testCoordinator(question("q1", "屋久島", "g4-yakushima"))

	att, err := c.Assemble(context.Background(), Request{Grade: quiz.Grade4, Count: 10, Mode: ModeReview})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(att.Session.Questions) != 0 {
		t.Errorf("session size = %d, want 0", len(att.Session.Questions))
	}
	if att.Session.Phase() != session.PhaseFinished {
		t.Errorf("phase = %v, want finished", att.Session.Phase())
	}
}

func TestAssembleInvalidGrade(t *testing.T) {
	c, _ := testCoordinator()
	if _, err := c.Assemble(context.Background(), Request{Grade: 7, Mode: ModePractice}); err == nil {
		t.Error("expected error for invalid grade")
	}
}

func TestAssemblePoolError(t *testing.T) {
	mem := kv.NewMemory()
	src := &fixedSource{err: errors.New("boom")}
	c := New(src, review.New(mem), themesel.New(mem), mem)

	if _, err := c.Assemble(context.Background(), Request{Grade: quiz.Grade4, Mode: ModePractice}); err == nil {
		t.Error("expected error when pool load fails")
	}
}

func TestCommitSummaryPracticeAddsWrongByChapter(t *testing.T) {
	c, mem := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "奄美", "g4-amami"),
	)
	ctx := context.Background()

	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	att.Session.Answer("q1", "B") // wrong
	att.Session.Answer("q2", "B") // wrong

	if err := c.CommitSummary(ctx, att, att.Session.Finish()); err != nil {
		t.Fatalf("CommitSummary: %v", err)
	}

	rs := review.New(mem)
	yaku, _ := rs.Load(ctx, quiz.Grade4, "屋久島")
	amami, _ := rs.Load(ctx, quiz.Grade4, "奄美")
	if len(yaku) != 1 || yaku[0] != "q1" {
		t.Errorf("屋久島 set = %v, want [q1]", yaku)
	}
	if len(amami) != 1 || amami[0] != "q2" {
		t.Errorf("奄美 set = %v, want [q2]", amami)
	}
}

func TestCommitSummaryRecordsAttemptLog(t *testing.T) {
	c, mem := testCoordinator(question("q1", "屋久島", "g4-yakushima"))
	ctx := context.Background()

	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	att.Session.Answer("q1", "A")

	if err := c.CommitSummary(ctx, att, att.Session.Finish()); err != nil {
		t.Fatalf("CommitSummary: %v", err)
	}

	log, ok, err := LastAttempt(ctx, mem, quiz.Grade4)
	if err != nil {
		t.Fatalf("LastAttempt: %v", err)
	}
	if !ok {
		t.Fatal("no attempt log recorded")
	}
	if log.SessionID == "" || log.SessionID != att.Session.ID {
		t.Errorf("log session id = %q, want %q", log.SessionID, att.Session.ID)
	}
	if log.Mode != ModePractice || log.Correct != 1 || log.Answered != 1 || log.Total != 1 {
		t.Errorf("log = %+v, want practice 1/1 of 1", log)
	}
	if log.FinishedAt.IsZero() {
		t.Error("log missing finish time")
	}

	// No attempt for another grade.
	if _, ok, err := LastAttempt(ctx, mem, quiz.Grade3); err != nil || ok {
		t.Errorf("LastAttempt grade 3 = ok=%v err=%v, want absent", ok, err)
	}
}

func TestCommitSummaryReviewRemovesCorrect(t *testing.T) {
	c, mem := testCoordinator(
		question("q1", "屋久島", "g4-yakushima"),
		question("q2", "屋久島", "g4-yakushima"),
	)
	ctx := context.Background()

	rs := review.New(mem)
	if err := rs.Add(ctx, quiz.Grade4, "屋久島", []string{"q1", "q2"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModeReview})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	att.Session.Answer("q1", "A") // correct, leaves the set
	att.Session.Answer("q2", "B") // still wrong, stays

	if err := c.CommitSummary(ctx, att, att.Session.Finish()); err != nil {
		t.Fatalf("CommitSummary: %v", err)
	}

	left, _ := rs.Load(ctx, quiz.Grade4, "屋久島")
	if len(left) != 1 || left[0] != "q2" {
		t.Errorf("remaining set = %v, want [q2]", left)
	}
}

func TestCommitSummaryPracticeCorrectDoesNotRemove(t *testing.T) {
	c, mem := testCoordinator(question("q1", "屋久島", "g4-yakushima"))
	ctx := context.Background()

	rs := review.New(mem)
	if err := rs.Add(ctx, quiz.Grade4, "屋久島", []string{"q1"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	att, err := c.Assemble(ctx, Request{Grade: quiz.Grade4, Count: 10, Mode: ModePractice})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	att.Session.Answer("q1", "A") // correct

	if err := c.CommitSummary(ctx, att, att.Session.Finish()); err != nil {
		t.Fatalf("CommitSummary: %v", err)
	}

	left, _ := rs.Load(ctx, quiz.Grade4, "屋久島")
	if len(left) != 1 {
		t.Errorf("set = %v, practice must not clear review entries", left)
	}
}
