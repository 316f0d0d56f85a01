package quiz

import "testing"

func TestQuestionUsable(t *testing.T) {
	base := Question{
		ID:      "g4-001",
		Grade:   Grade4,
		Chapter: "屋久島",
		Title:   "縄文杉はどの島にある？",
		Choices: []Choice{
			{ID: "A", Text: "屋久島"},
			{ID: "B", Text: "奄美大島"},
		},
		AnswerID: "A",
	}

	tests := []struct {
		name   string
		mutate func(q *Question)
		want   bool
	}{
		{"well-formed", func(q *Question) {}, true},
		{"missing id", func(q *Question) { q.ID = "  " }, false},
		{"missing title", func(q *Question) { q.Title = "" }, false},
		{"single choice", func(q *Question) { q.Choices = q.Choices[:1] }, false},
		{"dangling answer", func(q *Question) { q.AnswerID = "Z" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			q.Choices = append([]Choice(nil), base.Choices...)
			tt.mutate(&q)
			if got := q.Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeValid(t *testing.T) {
	for _, g := range Grades {
		if !g.Valid() {
			t.Errorf("Grade %d should be valid", g)
		}
	}
	for _, g := range []Grade{0, 1, 5} {
		if g.Valid() {
			t.Errorf("Grade %d should be invalid", g)
		}
	}
}

func TestSortThemes(t *testing.T) {
	themes := []Theme{
		{Grade: Grade4, ChapterID: 2, Slug: "amami", SortOrder: 20},
		{Grade: Grade4, ChapterID: 1, Slug: "yakushima", SortOrder: 10},
		{Grade: Grade4, ChapterID: 3, SortOrder: 30}, // no slug
	}

	sorted := SortThemes(themes)
	if sorted[0].Slug != "yakushima" || sorted[1].Slug != "amami" {
		t.Errorf("SortThemes order = %v", sorted)
	}
	// Input untouched.
	if themes[0].Slug != "amami" {
		t.Error("SortThemes mutated its input")
	}
}
