package quiz

import "strings"

// Grade is the difficulty tier of the question bank.
type Grade int

const (
	Grade2 Grade = 2
	Grade3 Grade = 3
	Grade4 Grade = 4
)

// Grades lists all valid grades, easiest last.
var Grades = []Grade{Grade2, Grade3, Grade4}

// Valid reports whether g is one of the supported grades.
func (g Grade) Valid() bool {
	return g == Grade2 || g == Grade3 || g == Grade4
}

// Choice is a single answer option within a question.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one multiple-choice question. Immutable once loaded;
// owned by the pool source.
type Question struct {
	ID          string   `json:"id"`
	Grade       Grade    `json:"grade"`
	Chapter     string   `json:"chapter"`
	ChapterSlug string   `json:"chapter_slug,omitempty"`
	Title       string   `json:"title"`
	Choices     []Choice `json:"choices"`
	AnswerID    string   `json:"answerId"`
	Explanation string   `json:"explanation,omitempty"`
	ImagePath   string   `json:"image,omitempty"`
	ImageAlt    string   `json:"imageAlt,omitempty"`
}

// Usable reports whether the question is well-formed enough to serve:
// it has an id and a title, at least two choices, and an answer id
// that matches one of the choices. Malformed records are a loader-side
// data problem and are dropped before pool inclusion.
func (q Question) Usable() bool {
	if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Title) == "" {
		return false
	}
	if len(q.Choices) < 2 {
		return false
	}
	for _, c := range q.Choices {
		if c.ID == q.AnswerID {
			return true
		}
	}
	return false
}

// NormalizeChapter trims surrounding whitespace from a chapter name.
// An empty result means "no chapter".
func NormalizeChapter(chapter string) string {
	return strings.TrimSpace(chapter)
}
