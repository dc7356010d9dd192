package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixturekit/internal/config"
	"fixturekit/internal/confirm"
	"fixturekit/internal/journal"
	"fixturekit/internal/logging"
	"fixturekit/internal/sample"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration
	yolo      bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fixture",
	Short: "fixture - sample program and segment editing toolkit",
	Long: `fixture runs a small sample program and edits source files by segment.

Segments are addressed by literal find/replace, by start/end marker blocks,
or by line range. Line ranges can also be taken from a declaration name.
Applied edits are journaled in the workspace and can be undone.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			workspace = config.FindWorkspaceRoot(cwd)
		}

		appCfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(workspace, appCfg.Logging.Settings()); err != nil {
			logger.Warn("file logging disabled", zap.Error(err))
		}
		logging.Boot("fixture %s in %s", cmd.Name(), workspace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd executes the sample program
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sample program",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

// sourceCmd prints the sample program's source
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Print the sample program source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(sample.Source)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest directory with .fixture or go.mod)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Operation timeout (0 = none)")
	rootCmd.PersistentFlags().BoolVar(&yolo, "yolo", false, "Apply edits and tool calls without asking")

	rootCmd.AddCommand(runCmd, sourceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSample(cmd *cobra.Command, args []string) error {
	logging.Sample("running sample program")
	return sample.Run(os.Stdout)
}

// commandContext returns a context cancelled by SIGINT/SIGTERM and the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := context.Background()
	if cmd != nil && cmd.Context() != nil {
		parent = cmd.Context()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(workspace))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openJournal opens the workspace journal, or returns nil when it is disabled.
func openJournal(cfg *config.Config) (*journal.Store, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	driver := cfg.Journal.Driver
	if driver == "" {
		driver = journal.DriverPure
	}
	store, err := journal.Open(cfg.JournalPath(workspace), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}

func newPrompter(cfg *config.Config) *confirm.Prompter {
	return confirm.NewPrompter(yolo || cfg.Edit.Yolo)
}

func logDebug(msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Debug(msg, fields...)
	}
}
