package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fixturekit/internal/config"
	"fixturekit/internal/logging"
	"fixturekit/internal/sample"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initForce bool

// initCmd writes the sample source and a default config into a directory
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write the sample program and a default config",
	Long: `Writes program.go (the sample program source) and .fixture/config.yaml
into dir, or into the workspace when dir is omitted. Existing files are left
alone unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := workspace
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	srcPath := filepath.Join(dir, sample.SourceName)
	wrote, err := writeIfAbsent(srcPath, []byte(sample.Source))
	if err != nil {
		return err
	}
	report(srcPath, wrote)

	cfgPath := config.Path(dir)
	if _, statErr := os.Stat(cfgPath); initForce || os.IsNotExist(statErr) {
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
		report(cfgPath, true)
	} else {
		report(cfgPath, false)
	}

	logging.Boot("initialized %s", dir)
	logDebug("init complete", zap.String("dir", dir))
	return nil
}

func writeIfAbsent(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil && !initForce {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func report(path string, wrote bool) {
	if wrote {
		fmt.Printf("wrote %s\n", path)
		return
	}
	fmt.Printf("kept %s (use --force to overwrite)\n", path)
}
