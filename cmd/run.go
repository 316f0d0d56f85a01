package cmd

import (
	"fmt"

	"github.com/shuhei10/whquiz/internal/app"
	"github.com/shuhei10/whquiz/internal/pool"
	"github.com/shuhei10/whquiz/internal/practice"
	"github.com/shuhei10/whquiz/internal/review"
	"github.com/shuhei10/whquiz/internal/store"
	"github.com/shuhei10/whquiz/internal/themesel"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	kvStore := st.KV()

	// With a base URL the pool comes from the question server, cached
	// in the kv table for offline runs. Without one the imported bank
	// serves it directly.
	var source pool.Source
	if base := resolveBaseURL(cmd); base != "" {
		source = pool.NewHTTPSource(base, nil, kvStore)
	} else {
		source = st.PoolSource()
	}

	reviews := review.New(kvStore)
	themes := themesel.New(kvStore)

	return app.Run(app.Options{
		Coordinator: practice.New(source, reviews, themes, kvStore),
		Reviews:     reviews,
		Themes:      themes,
	})
}
