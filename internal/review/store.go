// Package review persists the per-(grade, chapter) sets of question ids
// the user has answered incorrectly, so review mode can re-serve only
// the missed questions.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shuhei10/whquiz/internal/kv"
	"github.com/shuhei10/whquiz/internal/quiz"
)

// keyPrefix namespaces all review keys in the shared key-value store.
const keyPrefix = "whq:wrong:"

// Store owns the wrong-answer sets. Storage is keyed per chapter so a
// chapter-scoped reset never touches unrelated chapters and the
// per-grade aggregate stays a derived view, not a second source of
// truth.
//
// Writes are read-modify-write on a single key with no locking:
// concurrent writers to the same (grade, chapter) are last-write-wins.
type Store struct {
	kv kv.Store
}

// New creates a Store over the given key-value storage.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

func gradePrefix(grade quiz.Grade) string {
	return fmt.Sprintf("%sg%d:", keyPrefix, grade)
}

func key(grade quiz.Grade, chapter string) string {
	return gradePrefix(grade) + chapter
}

// Add unions ids into the set for (grade, chapter) and persists it.
// An empty chapter after trimming is a documented no-op, guarding
// against caller bugs rather than signaling an error.
func (s *Store) Add(ctx context.Context, grade quiz.Grade, chapter string, ids []string) error {
	chapter = quiz.NormalizeChapter(chapter)
	if chapter == "" || len(ids) == 0 {
		return nil
	}
	current, err := s.load(ctx, key(grade, chapter))
	if err != nil {
		return err
	}
	return s.save(ctx, key(grade, chapter), append(current, ids...))
}

// Remove subtracts ids from the set for (grade, chapter). The result is
// persisted even when empty; Load reports [] for both an empty set and
// one that was never written.
func (s *Store) Remove(ctx context.Context, grade quiz.Grade, chapter string, ids []string) error {
	chapter = quiz.NormalizeChapter(chapter)
	if chapter == "" || len(ids) == 0 {
		return nil
	}
	current, err := s.load(ctx, key(grade, chapter))
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	next := current[:0]
	for _, id := range current {
		if !drop[id] {
			next = append(next, id)
		}
	}
	return s.save(ctx, key(grade, chapter), next)
}

// Load returns the current set for (grade, chapter) as a list; empty if
// never written.
func (s *Store) Load(ctx context.Context, grade quiz.Grade, chapter string) ([]string, error) {
	chapter = quiz.NormalizeChapter(chapter)
	if chapter == "" {
		return []string{}, nil
	}
	return s.load(ctx, key(grade, chapter))
}

// LoadAllForGrade scans every persisted chapter set of the grade and
// returns the deduplicated union.
func (s *Store) LoadAllForGrade(ctx context.Context, grade quiz.Grade) ([]string, error) {
	keys, err := s.kv.Keys(ctx, gradePrefix(grade))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	union := []string{}
	for _, k := range keys {
		ids, err := s.load(ctx, k)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				union = append(union, id)
			}
		}
	}
	return union, nil
}

// Count returns the size of the set for (grade, chapter).
func (s *Store) Count(ctx context.Context, grade quiz.Grade, chapter string) (int, error) {
	ids, err := s.Load(ctx, grade, chapter)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// CountAllForGrade returns the size of the grade-wide union.
func (s *Store) CountAllForGrade(ctx context.Context, grade quiz.Grade) (int, error) {
	ids, err := s.LoadAllForGrade(ctx, grade)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Clear deletes the entry for (grade, chapter) entirely; a subsequent
// Load is indistinguishable from "never written".
func (s *Store) Clear(ctx context.Context, grade quiz.Grade, chapter string) error {
	chapter = quiz.NormalizeChapter(chapter)
	if chapter == "" {
		return nil
	}
	return s.kv.Remove(ctx, key(grade, chapter))
}

// ClearAllForGrade deletes every chapter set belonging to the grade.
func (s *Store) ClearAllForGrade(ctx context.Context, grade quiz.Grade) error {
	keys, err := s.kv.Keys(ctx, gradePrefix(grade))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.kv.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Chapters returns the chapter names that currently have a persisted
// set for the grade, sorted.
func (s *Store) Chapters(ctx context.Context, grade quiz.Grade) ([]string, error) {
	keys, err := s.kv.Keys(ctx, gradePrefix(grade))
	if err != nil {
		return nil, err
	}
	prefix := gradePrefix(grade)
	chapters := make([]string, 0, len(keys))
	for _, k := range keys {
		chapters = append(chapters, k[len(prefix):])
	}
	sort.Strings(chapters)
	return chapters, nil
}

func (s *Store) load(ctx context.Context, k string) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("load review set: %w", err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// A corrupt value is treated as empty rather than poisoning
		// every later session.
		return []string{}, nil
	}
	return ids, nil
}

func (s *Store) save(ctx context.Context, k string, ids []string) error {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	raw, err := json.Marshal(uniq)
	if err != nil {
		return fmt.Errorf("marshal review set: %w", err)
	}
	if err := s.kv.Set(ctx, k, string(raw)); err != nil {
		return fmt.Errorf("save review set: %w", err)
	}
	return nil
}
