package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"abilower/internal/driver"
	"abilower/internal/observ"
)

type lowerOptions struct {
	target string
	format string
	jobs   int
	output string
	ui     string
}

func newLowerCmd() *cobra.Command {
	var opts lowerOptions
	cmd := &cobra.Command{
		Use:   "lower [flags] manifest.toml",
		Short: "Lower the signatures declared in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.target, "target", "", "target triple (overrides [target].triple)")
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "output format (pretty|json|llvm|msgpack)")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&opts.ui, "ui", "auto", "show lowering progress (auto|on|off)")
	return cmd
}

func runLower(cmd *cobra.Command, path string, opts lowerOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case "pretty", "json", "llvm", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json, llvm or msgpack)", opts.format)
	}
	mode, err := readUIMode(opts.ui)
	if err != nil {
		return err
	}
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	timer := observ.NewTimer()
	dopts := driver.Options{
		Triple: opts.target,
		Jobs:   opts.jobs,
		Timer:  timer,
	}
	var out *driver.Output
	if shouldUseTUI(mode, quiet) {
		prog, loadErr := driver.Load(cmd.Context(), path, dopts)
		if loadErr != nil {
			return loadErr
		}
		out, err = runLowerWithUI(cmd.Context(), cmd.ErrOrStderr(), path, prog, dopts)
	} else {
		out, err = driver.Run(cmd.Context(), path, dopts)
	}
	if err != nil {
		return err
	}

	emit := timer.Begin("emit")
	err = writeOutput(cmd, format, opts.output, out)
	timer.End(emit, format)
	if err != nil {
		return err
	}

	if showTimings && !quiet {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, format, output string, out *driver.Output) error {
	if format == "msgpack" {
		if output != "" {
			return driver.WriteBatchFile(output, out.Batch)
		}
		if f, ok := cmd.OutOrStdout().(*os.File); ok && isTerminal(f) {
			return errors.New("refusing to write msgpack to a terminal; use -o")
		}
		return driver.EncodeBatch(cmd.OutOrStdout(), out.Batch)
	}

	w := cmd.OutOrStdout()
	var file *os.File
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		file = f
		w = f
	}

	err := render(w, format, out)
	if file != nil {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func render(w io.Writer, format string, out *driver.Output) error {
	switch format {
	case "json":
		return renderJSON(w, out.Batch)
	case "llvm":
		return renderLLVM(w, out)
	default:
		return renderPretty(w, out.Batch)
	}
}
