package cmd

import (
	"fmt"
	"os"

	"github.com/shuhei10/whquiz/internal/importer"
	"github.com/shuhei10/whquiz/internal/quiz"
	"github.com/shuhei10/whquiz/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a question export file into the local bank",
	Long:  "Import reads a question export (the published grade<N>.json format) and upserts it into the local SQLite bank. Re-importing the same file is safe.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gradeNum, _ := cmd.Flags().GetInt("grade")
		grade := quiz.Grade(gradeNum)
		if !grade.Valid() {
			return fmt.Errorf("invalid grade %d (want 2, 3, or 4)", gradeNum)
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

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := importer.Import(cmd.Context(), st, f, grade)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		fmt.Printf("Imported %d/%d questions (%d skipped)\n", res.Imported, res.Total, res.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().Int("grade", 4, "Grade for records that carry no grade of their own")
}
