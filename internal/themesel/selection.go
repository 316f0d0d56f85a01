// Package themesel persists, per grade, the set of chapter slugs the
// user has opted into for filtered practice. An empty selection means
// "all chapters", never "no chapters".
package themesel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shuhei10/whquiz/internal/kv"
	"github.com/shuhei10/whquiz/internal/quiz"
)

// Selection stores per-grade chapter slug selections.
type Selection struct {
	kv kv.Store
}

// New creates a Selection over the given key-value storage.
func New(store kv.Store) *Selection {
	return &Selection{kv: store}
}

func key(grade quiz.Grade) string {
	return fmt.Sprintf("whq:selectedThemeSlugs:g%d", grade)
}

// Load returns the selected slugs for the grade; [] means all chapters.
func (s *Selection) Load(ctx context.Context, grade quiz.Grade) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, key(grade))
	if err != nil {
		return nil, fmt.Errorf("load theme selection: %w", err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var slugs []string
	if err := json.Unmarshal([]byte(raw), &slugs); err != nil {
		return []string{}, nil
	}
	out := slugs[:0]
	for _, slug := range slugs {
		if slug != "" {
			out = append(out, slug)
		}
	}
	return out, nil
}

// Save replaces the stored selection wholesale.
func (s *Selection) Save(ctx context.Context, grade quiz.Grade, slugs []string) error {
	if slugs == nil {
		slugs = []string{}
	}
	raw, err := json.Marshal(slugs)
	if err != nil {
		return fmt.Errorf("marshal theme selection: %w", err)
	}
	if err := s.kv.Set(ctx, key(grade), string(raw)); err != nil {
		return fmt.Errorf("save theme selection: %w", err)
	}
	return nil
}

// Toggle returns selected with slug added if absent or removed if
// present. Pure; it does not persist.
func Toggle(selected []string, slug string) []string {
	for i, s := range selected {
		if s == slug {
			out := make([]string, 0, len(selected)-1)
			out = append(out, selected[:i]...)
			return append(out, selected[i+1:]...)
		}
	}
	out := make([]string, 0, len(selected)+1)
	out = append(out, selected...)
	return append(out, slug)
}

// Filter returns the questions whose ChapterSlug is in selected. An
// empty selection selects everything. Questions without a slug never
// match a non-empty selection.
func Filter(questions []quiz.Question, selected []string) []quiz.Question {
	if len(selected) == 0 {
		return questions
	}
	set := make(map[string]bool, len(selected))
	for _, s := range selected {
		set[s] = true
	}
	var out []quiz.Question
	for _, q := range questions {
		if q.ChapterSlug != "" && set[q.ChapterSlug] {
			out = append(out, q)
		}
	}
	return out
}
