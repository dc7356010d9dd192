package main

import (
	"fmt"

	"fixturekit/internal/diff"
	"fixturekit/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce string

// watchCmd prints a diff each time a file changes
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Print a diff whenever a file changes",
	Long: `Watches a file and prints the diff of every change once writes settle.
Runs until interrupted or until --timeout expires.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDebounce, "debounce", "", "Quiet period before reporting (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchDebounce != "" {
		cfg.Watch.Debounce = watchDebounce
	}

	styles := diff.DefaultStyles()
	w, err := watch.New(resolvePath(args[0]), cfg.GetWatchDebounce(), func(c watch.Change) {
		name := displayPath(c.Path)
		if c.Removed {
			fmt.Printf("%s removed\n", name)
			return
		}
		fmt.Print(diff.Render(c.Diff, styles))
	})
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	fmt.Printf("watching %s (Ctrl+C to stop)\n", displayPath(w.Path()))

	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	logDebug("watch stopped", zap.Int("events", stats.Events), zap.Int("changes", stats.Changes), zap.Int("errors", stats.Errors))
	fmt.Printf("stopped: %d change(s)\n", stats.Changes)
	return nil
}
