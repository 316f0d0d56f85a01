package cmd

import (
	"fmt"

	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bank and review statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		kvStore := st.KV()
		reviews := review.New(kvStore)
		bank := st.Bank()

		for _, g := range quiz.Grades {
			themes, err := bank.ThemesForGrade(ctx, g)
			if err != nil {
				return fmt.Errorf("read grade %d: %w", g, err)
			}
			questions := 0
			for _, t := range themes {
				questions += t.Count
			}
			left, err := reviews.CountAllForGrade(ctx, g)
			if err != nil {
				return fmt.Errorf("count reviews for grade %d: %w", g, err)
			}
			fmt.Printf("Grade %d: %d chapters, %d questions, %d to review\n",
				g, len(themes), questions, left)

			if log, ok, err := practice.LastAttempt(ctx, kvStore, g); err == nil && ok {
				fmt.Printf("  last attempt %s: %s %d/%d correct (session %s)\n",
					log.FinishedAt.Format("2006-01-02 15:04"), log.Mode,
					log.Correct, log.Answered, log.SessionID)
			}

			for _, t := range themes {
				n, err := reviews.Count(ctx, g, t.Title)
				if err != nil {
					return err
				}
				if n > 0 {
					fmt.Printf("  %-20s %d to review\n", t.Title, n)
				}
			}
		}
		return nil
	},
}
