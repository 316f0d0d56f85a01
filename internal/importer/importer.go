// Package importer loads question export files into the local bank.
// Imports are idempotent: chapters are upserted by slug, questions by
// external id, and a question's choices are fully replaced each time.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/store"
)

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
	Total    int
}

// record mirrors one export entry. Older exports used different field
// names, so several aliases are decoded and resolved in order.
type record struct {
	ID          string        `json:"id"`
	ExternalID  string        `json:"external_id"`
	Grade       int           `json:"grade"`
	Chapter     string        `json:"chapter"`
	Title       string        `json:"title"`
	Question    string        `json:"question"`
	Text        string        `json:"text"`
	Explanation string        `json:"explanation"`
	AnswerExpl  string        `json:"answerExplanation"`
	Image       string        `json:"image"`
	ImagePath   string        `json:"image_path"`
	ImageAlt    string        `json:"imageAlt"`
	AnswerID    string        `json:"answerId"`
	AnswerAlt   string        `json:"answer_choice_label"`
	Choices     []quiz.Choice `json:"choices"`
}

func (r record) externalID() string  { return firstNonEmpty(r.ExternalID, r.ID) }
func (r record) title() string       { return firstNonEmpty(r.Title, r.Question, r.Text) }
func (r record) explanation() string { return firstNonEmpty(r.Explanation, r.AnswerExpl) }
func (r record) imagePath() string   { return firstNonEmpty(r.ImagePath, r.Image) }
func (r record) answerLabel() string { return firstNonEmpty(r.AnswerID, r.AnswerAlt) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var (
	slugSpaces = regexp.MustCompile(`\s+`)
	slugStrip  = regexp.MustCompile(`[^\w\-ぁ-んァ-ヶ一-龠]`)
)

// Slugify builds a chapter slug from a grade and a chapter title, e.g.
// Slugify(4, "屋久島") == "g4-屋久島". Whitespace runs become dashes and
// anything outside word characters, dashes, kana, and kanji is dropped.
func Slugify(grade quiz.Grade, chapterTitle string) string {
	s := fmt.Sprintf("g%d-%s", int(grade), strings.TrimSpace(chapterTitle))
	s = strings.ToLower(s)
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugStrip.ReplaceAllString(s, "")
}

// Import reads an export file from r and loads it into the bank in one
// transaction. Records without an id, chapter, or title are skipped;
// defaultGrade applies to records that carry no grade of their own.
func Import(ctx context.Context, st *store.Store, r io.Reader, defaultGrade quiz.Grade) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read payload: %w", err)
	}
	if err := validatePayload(raw); err != nil {
		return Result{}, err
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return Result{}, fmt.Errorf("decode payload: %w", err)
	}

	res := Result{Total: len(records)}
	err = st.InTx(ctx, func(b *store.Bank) error {
		for _, rec := range records {
			externalID := rec.externalID()
			chapterTitle := strings.TrimSpace(rec.Chapter)
			title := rec.title()
			if externalID == "" || chapterTitle == "" || title == "" {
				res.Skipped++
				continue
			}

			grade := quiz.Grade(rec.Grade)
			if !grade.Valid() {
				grade = defaultGrade
			}

			chapterID, err := b.UpsertChapter(ctx, Slugify(grade, chapterTitle), chapterTitle, grade)
			if err != nil {
				return err
			}

			answerLabel := rec.answerLabel()
			questionID, err := b.UpsertQuestion(ctx, store.QuestionRow{
				ExternalID:  externalID,
				ChapterID:   chapterID,
				Title:       title,
				Explanation: rec.explanation(),
				ImagePath:   rec.imagePath(),
				ImageAlt:    strings.TrimSpace(rec.ImageAlt),
				AnswerLabel: answerLabel,
			})
			if err != nil {
				return err
			}

			if err := b.ReplaceChoices(ctx, questionID, rec.Choices, answerLabel); err != nil {
				return err
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
