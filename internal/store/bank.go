package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shuhei10/whquiz/internal/quiz"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Bank is the question bank repository: chapters, questions, and
// choices populated by the importer and read by the pool source.
type Bank struct {
	db dbtx
}

// QuestionRow is the bank's write model for one question.
type QuestionRow struct {
	ExternalID  string
	ChapterID   int64
	Title       string
	Explanation string
	ImagePath   string
	ImageAlt    string
	AnswerLabel string
}

// UpsertChapter inserts or updates a chapter keyed by slug and returns
// its id. On conflict the latest title and grade win.
func (b *Bank) UpsertChapter(ctx context.Context, slug, title string, grade quiz.Grade) (int64, error) {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO chapters (slug, title, grade, sort_order)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(slug) DO UPDATE SET title = excluded.title, grade = excluded.grade`,
		slug, title, int(grade))
	if err != nil {
		return 0, fmt.Errorf("upsert chapter %q: %w", slug, err)
	}

	var id int64
	err = b.db.QueryRowContext(ctx, `SELECT id FROM chapters WHERE slug = ?`, slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve chapter %q: %w", slug, err)
	}
	return id, nil
}

// UpsertQuestion inserts or updates a question keyed by external id and
// returns its row id. The most recently imported record wins.
func (b *Bank) UpsertQuestion(ctx context.Context, row QuestionRow) (int64, error) {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO questions
			(external_id, chapter_id, title, explanation, image_path, image_alt, answer_choice_label, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(external_id) DO UPDATE SET
			chapter_id = excluded.chapter_id,
			title = excluded.title,
			explanation = excluded.explanation,
			image_path = excluded.image_path,
			image_alt = excluded.image_alt,
			answer_choice_label = excluded.answer_choice_label,
			is_active = 1`,
		row.ExternalID, row.ChapterID, row.Title,
		nullable(row.Explanation), nullable(row.ImagePath), nullable(row.ImageAlt),
		nullable(row.AnswerLabel))
	if err != nil {
		return 0, fmt.Errorf("upsert question %q: %w", row.ExternalID, err)
	}

	var id int64
	err = b.db.QueryRowContext(ctx, `SELECT id FROM questions WHERE external_id = ?`, row.ExternalID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve question %q: %w", row.ExternalID, err)
	}
	return id, nil
}

// ReplaceChoices deletes a question's choices and inserts the given
// ones in order. Every import of a question fully replaces its choices.
func (b *Bank) ReplaceChoices(ctx context.Context, questionID int64, choices []quiz.Choice, answerLabel string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM choices WHERE question_id = ?`, questionID); err != nil {
		return fmt.Errorf("delete choices: %w", err)
	}
	order := 1
	for _, c := range choices {
		if c.ID == "" || c.Text == "" {
			continue
		}
		correct := 0
		if answerLabel != "" && c.ID == answerLabel {
			correct = 1
		}
		_, err := b.db.ExecContext(ctx, `
			INSERT INTO choices (question_id, choice_label, choice_text, is_correct, sort_order)
			VALUES (?, ?, ?, ?, ?)`,
			questionID, c.ID, c.Text, correct, order)
		if err != nil {
			return fmt.Errorf("insert choice %q: %w", c.ID, err)
		}
		order++
	}
	return nil
}

// ThemesForGrade returns chapter metadata with active question counts,
// ordered by sort order.
func (b *Bank) ThemesForGrade(ctx context.Context, grade quiz.Grade) ([]quiz.Theme, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT c.id, c.slug, c.title, c.sort_order,
		       COUNT(q.id)
		FROM chapters c
		LEFT JOIN questions q ON q.chapter_id = c.id AND q.is_active = 1
		WHERE c.grade = ?
		GROUP BY c.id
		ORDER BY c.sort_order, c.id`, int(grade))
	if err != nil {
		return nil, fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	var themes []quiz.Theme
	for rows.Next() {
		var t quiz.Theme
		t.Grade = grade
		if err := rows.Scan(&t.ChapterID, &t.Slug, &t.Title, &t.SortOrder, &t.Count); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// PoolForGrade returns every active, well-formed question of the grade
// with its choices, chapter name, and chapter slug.
func (b *Bank) PoolForGrade(ctx context.Context, grade quiz.Grade) ([]quiz.Question, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT q.id, q.external_id, q.title, q.explanation, q.image_path, q.image_alt,
		       q.answer_choice_label, c.title, c.slug
		FROM questions q
		JOIN chapters c ON c.id = q.chapter_id
		WHERE c.grade = ? AND q.is_active = 1
		ORDER BY q.id`, int(grade))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []quiz.Question
	rowIDs := make(map[string]int64)
	for rows.Next() {
		var (
			rowID                            int64
			explanation, imagePath, imageAlt sql.NullString
			answerLabel                      sql.NullString
			q                                quiz.Question
		)
		if err := rows.Scan(&rowID, &q.ID, &q.Title, &explanation, &imagePath, &imageAlt,
			&answerLabel, &q.Chapter, &q.ChapterSlug); err != nil {
			return nil, err
		}
		q.Grade = grade
		q.Explanation = explanation.String
		q.ImagePath = imagePath.String
		q.ImageAlt = imageAlt.String
		q.AnswerID = answerLabel.String
		rowIDs[q.ID] = rowID
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		choices, err := b.choicesFor(ctx, rowIDs[questions[i].ID])
		if err != nil {
			return nil, err
		}
		questions[i].Choices = choices
	}
	return questions, nil
}

func (b *Bank) choicesFor(ctx context.Context, questionID int64) ([]quiz.Choice, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT choice_label, choice_text
		FROM choices
		WHERE question_id = ?
		ORDER BY sort_order`, questionID)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	var choices []quiz.Choice
	for rows.Next() {
		var c quiz.Choice
		if err := rows.Scan(&c.ID, &c.Text); err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
