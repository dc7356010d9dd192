package main

import (
	"errors"
	"fmt"
	"time"

	"fixturekit/internal/diff"
	"fixturekit/internal/journal"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyShow  bool
	undoYes      bool
)

// historyCmd lists journaled edits
var historyCmd = &cobra.Command{
	Use:   "history [file]",
	Short: "List applied edits, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

// undoCmd restores the content a journaled edit replaced
var undoCmd = &cobra.Command{
	Use:   "undo <id>",
	Short: "Revert an applied edit",
	Long: `Restores the file content from before the edit. The id may be any unique
prefix of the entry id shown by history. Undo refuses to run when the file
no longer holds the content the edit wrote.`,
	Args: cobra.ExactArgs(1),
	RunE: runUndo,
}

func init() {
	rootCmd.AddCommand(historyCmd, undoCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyShow, "diff", false, "Show each entry's diff")
	undoCmd.Flags().BoolVarP(&undoYes, "yes", "y", false, "Skip the confirmation")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Println("Journal disabled (journal.enabled: false)")
		return nil
	}
	defer store.Close()

	var path string
	if len(args) == 1 {
		path = resolvePath(args[0])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	entries, err := store.List(ctx, path, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No edits recorded")
		return nil
	}

	engine := diff.NewEngine(cfg.Edit.ContextLines)
	for _, e := range entries {
		status := ""
		if e.UndoneAt != nil {
			status = " (undone)"
		}
		fmt.Printf("%s  %s  %-12s %3d  %s%s\n",
			e.ShortID(), e.CreatedAt.Local().Format(time.DateTime), e.Mode, e.Matches, displayPath(e.Path), status)
		if historyShow {
			name := displayPath(e.Path)
			fmt.Print(engine.ComputeDiff(name, name, e.Before, e.After).Unified())
		}
	}
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("journal is disabled")
	}
	defer store.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	entry, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if entry.UndoneAt != nil {
		return fmt.Errorf("%w: %s", journal.ErrAlreadyUndone, entry.ShortID())
	}

	if !undoYes {
		name := displayPath(entry.Path)
		fd := diff.NewEngine(cfg.Edit.ContextLines).ComputeDiff(name, name, entry.After, entry.Before)
		title := fmt.Sprintf("Undo %s on %s?", entry.ShortID(), name)
		ok, err := newPrompter(cfg).Confirm(ctx, title, diff.Render(fd, diff.DefaultStyles()))
		if err != nil {
			return err
		}
		if !ok {
			return errNotApproved
		}
	}

	undone, err := store.Undo(ctx, entry.ID)
	if err != nil {
		return err
	}
	fmt.Printf("undid %s: restored %s\n", undone.ShortID(), displayPath(undone.Path))
	return nil
}
