package main

import (
	"fmt"
	"os"
	"strings"

	"fixturekit/internal/locate"
	"fixturekit/internal/tools/core"

	"github.com/spf13/cobra"
)

var (
	readStartLine int
	readEndLine   int
	readNumbers   bool
)

// readCmd prints a file or a range of its lines
var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Print a file, optionally a line range",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

// locateCmd lists declarations or reports the range of one
var locateCmd = &cobra.Command{
	Use:   "locate <file> [symbol]",
	Short: "Report declaration line ranges in a Go, Rust or Python file",
	Long: `Without a symbol, lists every declaration in the file with its line range.
With a symbol (a name, or Type.method), prints that declaration's range.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(readCmd, locateCmd)
	readCmd.Flags().IntVar(&readStartLine, "start-line", 0, "First line to print (1-indexed)")
	readCmd.Flags().IntVar(&readEndLine, "end-line", 0, "Last line to print")
	readCmd.Flags().BoolVarP(&readNumbers, "line-numbers", "n", false, "Prefix lines with their number")
}

func runRead(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(resolvePath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	text, first, _ := core.SliceLines(strings.TrimSuffix(string(data), "\n"), readStartLine, readEndLine)
	if text == "" {
		return nil
	}
	for i, l := range strings.Split(text, "\n") {
		if readNumbers {
			fmt.Printf("%5d  %s\n", first+i, l)
		} else {
			fmt.Println(l)
		}
	}
	return nil
}

func runLocate(cmd *cobra.Command, args []string) error {
	path := resolvePath(args[0])
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if len(args) == 2 {
		sym, err := locate.Locate(ctx, path, content, args[1])
		if err != nil {
			return err
		}
		printSymbol(sym)
		return nil
	}

	syms, err := locate.Symbols(ctx, path, content)
	if err != nil {
		return err
	}
	if len(syms) == 0 {
		fmt.Println("No declarations found")
		return nil
	}
	for _, s := range syms {
		printSymbol(s)
	}
	return nil
}

func printSymbol(s locate.Symbol) {
	name := s.QualifiedName()
	if s.Trait != "" {
		name += " (" + s.Trait + ")"
	}
	fmt.Printf("%-32s %-10s %d-%d\n", name, s.Kind, s.StartLine, s.EndLine)
}
