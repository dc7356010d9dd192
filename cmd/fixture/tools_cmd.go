package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fixturekit/internal/config"
	"fixturekit/internal/confirm"
	"fixturekit/internal/diff"
	"fixturekit/internal/journal"
	"fixturekit/internal/tools"
	"fixturekit/internal/tools/core"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	toolsCategory string
	toolsArgs     string
	toolsRaw      bool
)

// toolsCmd groups the tool registry commands
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List, describe and run the file tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tools",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show a tool's arguments",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsDescribe,
}

var toolsExecCmd = &cobra.Command{
	Use:   "exec <name>",
	Short: "Run a tool with JSON arguments",
	Long: `Runs a tool and prints its JSON result.

Example:
  fixture tools exec edit_file_segment --args '{"file":"program.go","mode":"find_replace","find":"x","replace":"y","dry_run":true}'`,
	Args: cobra.ExactArgs(1),
	RunE: runToolsExec,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd, toolsDescribeCmd, toolsExecCmd)
	toolsListCmd.Flags().StringVar(&toolsCategory, "category", "", "Only list this category (/read, /write, /edit, /navigate)")
	toolsDescribeCmd.Flags().BoolVar(&toolsRaw, "raw", false, "Print markdown without rendering")
	toolsExecCmd.Flags().StringVar(&toolsArgs, "args", "{}", "Tool arguments as a JSON object")
}

// toolSession is a registry bound to the workspace.
type toolSession struct {
	registry *tools.Registry
	env      *core.Env
	journal  *journal.Store
}

func (s *toolSession) Close() {
	if s.journal != nil {
		_ = s.journal.Close()
	}
}

// newToolSession builds the registry. The journal is opened only when withJournal is set.
func newToolSession(cfg *config.Config, prompter *confirm.Prompter, withJournal bool) (*toolSession, error) {
	env, err := core.NewEnv(workspace)
	if err != nil {
		return nil, err
	}
	env.MaxFileBytes = cfg.Edit.MaxFileBytes
	env.Diff = diff.NewEngine(cfg.Edit.ContextLines)
	if prompter != nil {
		env.Approve = prompter.Approve
	}

	s := &toolSession{registry: tools.NewRegistry(), env: env}
	if withJournal {
		store, err := openJournal(cfg)
		if err != nil {
			return nil, err
		}
		s.journal = store
		env.Journal = store
	}

	if err := core.RegisterAll(s.registry, env); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func runToolsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := newToolSession(cfg, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	list := s.registry.All()
	if toolsCategory != "" {
		list = s.registry.GetByCategory(tools.ToolCategory(toolsCategory))
	}
	if len(list) == 0 {
		fmt.Println("No tools registered")
		return nil
	}

	for _, t := range list {
		flag := " "
		if t.Mutating {
			flag = "*"
		}
		fmt.Printf("%-10s %s %-20s %s\n", t.Category, flag, t.Name, firstLine(t.Description))
	}
	fmt.Printf("\n%d tools (* modifies files)\n", len(list))
	return nil
}

func runToolsDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := newToolSession(cfg, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	t := s.registry.Get(args[0])
	if t == nil {
		return fmt.Errorf("%w: %s", tools.ErrToolNotFound, args[0])
	}

	md := t.Markdown()
	if toolsRaw {
		fmt.Print(md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func runToolsExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var toolArgs map[string]any
	dec := json.NewDecoder(strings.NewReader(toolsArgs))
	dec.UseNumber()
	if err := dec.Decode(&toolArgs); err != nil {
		return fmt.Errorf("invalid --args: %w", err)
	}

	prompter := newPrompter(cfg)
	s, err := newToolSession(cfg, prompter, true)
	if err != nil {
		return err
	}
	defer s.Close()

	t := s.registry.Get(args[0])
	if t == nil {
		return fmt.Errorf("%w: %s", tools.ErrToolNotFound, args[0])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if t.Mutating && !isDryRun(toolArgs) {
		if err := approveTool(ctx, prompter, t.Name, toolsArgs); err != nil {
			return err
		}
	}

	logDebug("executing tool", zap.String("tool", t.Name))
	res, err := s.registry.ExecuteTool(ctx, t, toolArgs)
	if err != nil {
		return err
	}
	fmt.Println(res.Result)
	return nil
}

func approveTool(ctx context.Context, prompter *confirm.Prompter, name, rawArgs string) error {
	ok, err := prompter.Confirm(ctx, fmt.Sprintf("Run %s?", name), rawArgs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", tools.ErrNotApproved, name)
	}
	return nil
}

func isDryRun(args map[string]any) bool {
	v, err := tools.Bool(args, "dry_run", false)
	return err == nil && v
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
