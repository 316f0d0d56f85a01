package quiz

import "sort"

// Theme is read-only display metadata for one chapter of a grade.
// Slug is the stable key used for filtering and matches
// Question.ChapterSlug when present.
type Theme struct {
	Grade     Grade  `json:"grade"`
	ChapterID int    `json:"chapter_id"`
	Slug      string `json:"slug,omitempty"`
	Title     string `json:"title,omitempty"`
	SortOrder int    `json:"sort_order"`
	Count     int    `json:"count"`
}

// SortThemes returns a copy of themes ordered by SortOrder.
func SortThemes(themes []Theme) []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
