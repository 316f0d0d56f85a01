// Package session implements the in-memory engine for one bounded
// practice, test, or review attempt: a fixed shuffled question list,
// one-answer-per-question progression, and a final summary.
package session

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/shuhei10/whquiz/internal/quiz"
)

// Phase is the lifecycle state of a session. Transitions only move
// forward; a new attempt requires a new Session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseFinished
)

// AnswerRecord is one accepted answer.
type AnswerRecord struct {
	QuestionID string
	ChoiceID   string
	Correct    bool
}

// Session is one attempt. Create with Start, mutate only through
// Answer and Advance, and read the result with Finish.
type Session struct {
	ID        string
	Questions []quiz.Question

	index    int
	phase    Phase
	answered map[string]AnswerRecord
	log      []AnswerRecord
}

// Start shuffles a copy of pool uniformly (Fisher–Yates) and keeps the
// first min(count, len(pool)) questions as the fixed order for the whole
// attempt. count larger than the pool degrades to "all of pool,
// shuffled". An empty pool yields an already-finished session with no
// questions; the caller treats that as "nothing to practice".
func Start(pool []quiz.Question, count int) *Session {
	arr := make([]quiz.Question, len(pool))
	copy(arr, pool)
	rand.Shuffle(len(arr), func(i, j int) {
		arr[i], arr[j] = arr[j], arr[i]
	})

	if count < 0 {
		count = 0
	}
	if count > len(arr) {
		count = len(arr)
	}
	arr = arr[:count]

	s := &Session{
		ID:        uuid.New().String(),
		Questions: arr,
		phase:     PhaseInProgress,
		answered:  make(map[string]AnswerRecord, len(arr)),
	}
	if len(arr) == 0 {
		s.phase = PhaseFinished
	}
	return s
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns the question at the cursor, or nil when the session
// has no remaining questions.
func (s *Session) Current() *quiz.Question {
	if s.phase != PhaseInProgress || s.index >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.index]
}

// Answered returns the accepted answer for questionID, if any.
func (s *Session) Answered(questionID string) (AnswerRecord, bool) {
	rec, ok := s.answered[questionID]
	return rec, ok
}

// Answer records the choice for a question in this session. Exactly one
// answer is accepted per question: a repeat call is a no-op with
// accepted=false and never alters the recorded outcome or the score.
// Answers against unknown questions or a finished session are rejected.
func (s *Session) Answer(questionID, choiceID string) (correct, accepted bool) {
	if s.phase != PhaseInProgress {
		return false, false
	}
	if _, dup := s.answered[questionID]; dup {
		return false, false
	}

	var q *quiz.Question
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			q = &s.Questions[i]
			break
		}
	}
	if q == nil {
		return false, false
	}

	rec := AnswerRecord{
		QuestionID: questionID,
		ChoiceID:   choiceID,
		Correct:    choiceID == q.AnswerID,
	}
	s.answered[questionID] = rec
	s.log = append(s.log, rec)
	return rec.Correct, true
}

// Advance moves the cursor to the next unanswered question in list
// order. When none remain the session becomes Finished and done is true.
func (s *Session) Advance() (done bool) {
	if s.phase != PhaseInProgress {
		return true
	}
	for i := s.index + 1; i < len(s.Questions); i++ {
		if _, ok := s.answered[s.Questions[i].ID]; !ok {
			s.index = i
			return false
		}
	}
	s.phase = PhaseFinished
	return true
}

// Summary is the outcome of a session, derived strictly from the
// answered log. Each answered question contributes exactly one id.
type Summary struct {
	Correct    int
	Answered   int
	Total      int
	WrongIDs   []string
	CorrectIDs []string
}

// Finish summarizes the attempt. It may be called before the session is
// Finished to abandon early; either way only logged answers count.
func (s *Session) Finish() Summary {
	sum := Summary{Total: len(s.Questions)}
	for _, rec := range s.log {
		sum.Answered++
		if rec.Correct {
			sum.Correct++
			sum.CorrectIDs = append(sum.CorrectIDs, rec.QuestionID)
		} else {
			sum.WrongIDs = append(sum.WrongIDs, rec.QuestionID)
		}
	}
	return sum
}
