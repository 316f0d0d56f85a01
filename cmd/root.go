package cmd

import (
	"os"

	"github.com/shuhei10/whquiz/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "whquiz",
	Short: "World Heritage quiz for the terminal",
	Long:  "whquiz is a terminal quiz app for the World Heritage exam grades (4級/3級/2級), with per-chapter review of missed questions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WHQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("base-url", "", "Question server base URL (overrides WHQUIZ_BASE_URL env var; empty uses the local bank)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then WHQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveBaseURL returns the question server base URL, or "" when the
// local bank should serve the pool.
func resolveBaseURL(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("base-url"); u != "" {
		return u
	}
	return os.Getenv("WHQUIZ_BASE_URL")
}
