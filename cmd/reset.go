package cmd

import (
	"fmt"

	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear review sets",
	Long:  "Reset clears the sets of missed questions. Scope with --grade and --chapter, or wipe every grade with --all.",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		gradeNum, _ := cmd.Flags().GetInt("grade")
		chapter, _ := cmd.Flags().GetString("chapter")

		if !all && gradeNum == 0 {
			return fmt.Errorf("nothing to reset: pass --grade (optionally with --chapter) or --all")
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		reviews := review.New(st.KV())

		if all {
			for _, g := range quiz.Grades {
				if err := reviews.ClearAllForGrade(ctx, g); err != nil {
					return fmt.Errorf("clear grade %d: %w", g, err)
				}
			}
			fmt.Println("Cleared review sets for all grades")
			return nil
		}

		grade := quiz.Grade(gradeNum)
		if !grade.Valid() {
			return fmt.Errorf("invalid grade %d (want 2, 3, or 4)", gradeNum)
		}

		if chapter != "" {
			if err := reviews.Clear(ctx, grade, chapter); err != nil {
				return fmt.Errorf("clear chapter %q: %w", chapter, err)
			}
			fmt.Printf("Cleared review set for grade %d, chapter %s\n", grade, chapter)
			return nil
		}

		if err := reviews.ClearAllForGrade(ctx, grade); err != nil {
			return fmt.Errorf("clear grade %d: %w", grade, err)
		}
		fmt.Printf("Cleared review sets for grade %d\n", grade)
		return nil
	},
}

func init() {
	resetCmd.Flags().Int("grade", 0, "Grade to clear (2, 3, or 4)")
	resetCmd.Flags().String("chapter", "", "Chapter name to clear (requires --grade)")
	resetCmd.Flags().Bool("all", false, "Clear every grade's review sets")
}
