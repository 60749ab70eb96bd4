package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"abilower/internal/version"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "abilower",
		Short:        "Lower function signatures to the x86-64 Windows calling convention",
		Long:         `abilower reads a signature manifest and reports how each parameter and return value is passed under win64`,
		SilenceUsage: true,
	}
	root.Version = version.Version

	root.AddCommand(newLowerCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for ring/both modes")
	root.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write heap profile to file")
	root.PersistentFlags().String("runtime-trace", "", "write runtime trace to file")
	return root
}

// main runs the root command and exits with status 1 on failure.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
