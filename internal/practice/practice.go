// Package practice assembles quiz attempts. It narrows the grade's
// question pool by chapter or theme selection, restricts review mode to
// previously missed questions, starts the session, and commits the
// outcome back to the review sets.
package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shuhei10/whquiz/internal/kv"
	"github.com/shuhei10/whquiz/internal/pool"
	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/session"
	"github.com/shuhei10/whquiz/internal/themesel"
)

// Mode selects how an attempt draws questions and how its outcome
// feeds the review sets.
type Mode string

const (
	// ModePractice draws from the full (possibly theme-filtered) pool;
	// missed questions are added to the review sets.
	ModePractice Mode = "practice"
	// ModeTest behaves like practice for drawing and review updates but
	// is presented without per-question feedback.
	ModeTest Mode = "test"
	// ModeReview draws only previously missed questions; answering one
	// correctly removes it from its review set.
	ModeReview Mode = "review"
)

// DefaultCount is the session length when the caller doesn't ask for a
// specific one.
const DefaultCount = 10

// Request describes one attempt to assemble.
type Request struct {
	Grade quiz.Grade
	// Chapter narrows the pool to one chapter by display name. Empty
	// means all chapters, subject to the stored theme selection.
	Chapter string
	// Count is the maximum number of questions; <= 0 means DefaultCount.
	Count int
	Mode  Mode
}

// Attempt is an assembled session plus the context needed to commit its
// outcome.
type Attempt struct {
	Session *session.Session
	Payload *pool.Payload
	Grade   quiz.Grade
	Chapter string
	Mode    Mode
}

// AttemptLog is the persisted record of a grade's most recent finished
// attempt, read back by the stats command.
type AttemptLog struct {
	SessionID  string    `json:"sessionId"`
	Mode       Mode      `json:"mode"`
	Chapter    string    `json:"chapter,omitempty"`
	Correct    int       `json:"correct"`
	Answered   int       `json:"answered"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finishedAt"`
}

func attemptLogKey(grade quiz.Grade) string {
	return fmt.Sprintf("whq:lastAttempt:g%d", grade)
}

// LastAttempt returns the most recent finished attempt recorded for the
// grade, if any.
func LastAttempt(ctx context.Context, store kv.Store, grade quiz.Grade) (AttemptLog, bool, error) {
	raw, ok, err := store.Get(ctx, attemptLogKey(grade))
	if err != nil || !ok {
		return AttemptLog{}, false, err
	}
	var log AttemptLog
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		return AttemptLog{}, false, nil
	}
	return log, true, nil
}

// Coordinator wires the pool source, the review sets, the theme
// selection, and the attempt log into attempt assembly and outcome
// commits.
type Coordinator struct {
	source  pool.Source
	reviews *review.Store
	themes  *themesel.Selection
	kv      kv.Store
}

// New creates a Coordinator. store holds the attempt log.
func New(source pool.Source, reviews *review.Store, themes *themesel.Selection, store kv.Store) *Coordinator {
	return &Coordinator{source: source, reviews: reviews, themes: themes, kv: store}
}

// Source exposes the pool source for callers that need the raw pool,
// e.g. the chapter list.
func (c *Coordinator) Source() pool.Source {
	return c.source
}

// Assemble loads the pool for the request's grade, narrows it, and
// starts a session. In review mode an empty review set yields an
// already-finished session with no questions rather than an error.
func (c *Coordinator) Assemble(ctx context.Context, req Request) (*Attempt, error) {
	if !req.Grade.Valid() {
		return nil, fmt.Errorf("invalid grade %d", req.Grade)
	}

	payload, err := c.source.LoadPool(ctx, req.Grade)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}

	chapter := quiz.NormalizeChapter(req.Chapter)
	candidates, err := c.narrow(ctx, req.Grade, chapter, payload.Questions)
	if err != nil {
		return nil, err
	}

	if req.Mode == ModeReview {
		candidates, err = c.restrictToReview(ctx, req.Grade, chapter, candidates)
		if err != nil {
			return nil, err
		}
	}

	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}

	return &Attempt{
		Session: session.Start(candidates, count),
		Payload: payload,
		Grade:   req.Grade,
		Chapter: chapter,
		Mode:    req.Mode,
	}, nil
}

// narrow applies the chapter filter, or the stored theme selection when
// no chapter is named. A theme selection that matches nothing in the
// current pool falls back to the whole pool so the user is never left
// with an unstartable session because of a stale selection.
func (c *Coordinator) narrow(ctx context.Context, grade quiz.Grade, chapter string, questions []quiz.Question) ([]quiz.Question, error) {
	if chapter != "" {
		var out []quiz.Question
		for _, q := range questions {
			if q.Chapter == chapter {
				out = append(out, q)
			}
		}
		return out, nil
	}

	selected, err := c.themes.Load(ctx, grade)
	if err != nil {
		return nil, fmt.Errorf("load theme selection: %w", err)
	}
	filtered := themesel.Filter(questions, selected)
	if len(filtered) == 0 && len(selected) > 0 {
		return questions, nil
	}
	return filtered, nil
}

func (c *Coordinator) restrictToReview(ctx context.Context, grade quiz.Grade, chapter string, questions []quiz.Question) ([]quiz.Question, error) {
	var ids []string
	var err error
	if chapter != "" {
		ids, err = c.reviews.Load(ctx, grade, chapter)
	} else {
		ids, err = c.reviews.LoadAllForGrade(ctx, grade)
	}
	if err != nil {
		return nil, fmt.Errorf("load review set: %w", err)
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []quiz.Question
	for _, q := range questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

// CommitSummary applies a finished attempt's outcome to the review
// sets. Practice and test add each missed question to its own chapter's
// set; review removes each correctly answered question from its
// chapter's set. Ids are grouped by the chapter the question belongs
// to, so a grade-wide attempt updates every affected chapter. The
// attempt itself is then recorded in the grade's attempt log.
func (c *Coordinator) CommitSummary(ctx context.Context, att *Attempt, sum session.Summary) error {
	chapterOf := make(map[string]string, len(att.Session.Questions))
	for _, q := range att.Session.Questions {
		chapterOf[q.ID] = quiz.NormalizeChapter(q.Chapter)
	}

	byChapter := func(ids []string) map[string][]string {
		groups := make(map[string][]string)
		for _, id := range ids {
			ch := chapterOf[id]
			if ch == "" {
				continue
			}
			groups[ch] = append(groups[ch], id)
		}
		return groups
	}

	switch att.Mode {
	case ModeReview:
		for ch, ids := range byChapter(sum.CorrectIDs) {
			if err := c.reviews.Remove(ctx, att.Grade, ch, ids); err != nil {
				return fmt.Errorf("remove reviewed ids: %w", err)
			}
		}
	default:
		for ch, ids := range byChapter(sum.WrongIDs) {
			if err := c.reviews.Add(ctx, att.Grade, ch, ids); err != nil {
				return fmt.Errorf("record missed ids: %w", err)
			}
		}
	}

	return c.recordAttempt(ctx, att, sum)
}

func (c *Coordinator) recordAttempt(ctx context.Context, att *Attempt, sum session.Summary) error {
	log := AttemptLog{
		SessionID:  att.Session.ID,
		Mode:       att.Mode,
		Chapter:    att.Chapter,
		Correct:    sum.Correct,
		Answered:   sum.Answered,
		Total:      sum.Total,
		FinishedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal attempt log: %w", err)
	}
	if err := c.kv.Set(ctx, attemptLogKey(att.Grade), string(raw)); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}
