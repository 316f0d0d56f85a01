// Package pool supplies the candidate question list and theme metadata
// for a grade, either over HTTP with an offline cache or from the local
// question bank.
package pool

import (
	"context"
	"time"

	"github.com/shuhei10/whquiz/internal/quiz"
)

// Origin says where a payload came from.
type Origin string

const (
	OriginNetwork Origin = "network"
	OriginCache   Origin = "cache"
	OriginBank    Origin = "bank"
)

// Payload is one successful pool load for a grade.
type Payload struct {
	SavedAt   time.Time       `json:"savedAt"`
	Questions []quiz.Question `json:"questions"`
	Themes    []quiz.Theme    `json:"themes"`
	Origin    Origin          `json:"-"`
}

// Source loads the question pool for a grade. Implementations must
// distinguish transport failure (returned as an error, possibly after
// an internal cache fallback) from individually malformed entries,
// which are dropped silently via Sanitize.
type Source interface {
	LoadPool(ctx context.Context, grade quiz.Grade) (*Payload, error)
}

// Sanitize drops malformed questions (missing id or title, fewer than
// two usable choices, or an answer id matching no choice) and questions
// belonging to a different grade, keeping the rest. A malformed entry
// is a data problem in the authored content, not a load failure.
func Sanitize(questions []quiz.Question, grade quiz.Grade) []quiz.Question {
	out := make([]quiz.Question, 0, len(questions))
	for _, q := range questions {
		if q.Grade != grade || !q.Usable() {
			continue
		}
		out = append(out, q)
	}
	return out
}

// ThemesForGrade keeps only the themes belonging to grade.
func ThemesForGrade(themes []quiz.Theme, grade quiz.Grade) []quiz.Theme {
	out := make([]quiz.Theme, 0, len(themes))
	for _, t := range themes {
		if t.Grade == grade {
			out = append(out, t)
		}
	}
	return out
}
