package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"abilower/internal/driver"
	"abilower/internal/manifest"
	"abilower/internal/ui"
)

type lowerOutcome struct {
	out *driver.Output
	err error
}

// runLowerWithUI lowers prog on a background goroutine while a progress view
// is drawn to w.
func runLowerWithUI(ctx context.Context, w io.Writer, path string, prog *manifest.Program, opts driver.Options) (*driver.Output, error) {
	names := make([]string, len(prog.Signatures))
	for i, sig := range prog.Signatures {
		names[i] = sig.Name
	}

	events := make(chan driver.ProgressEvent, 256)
	outcomeCh := make(chan lowerOutcome, 1)
	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		out, err := driver.RunProgram(ctx, prog, opts)
		outcomeCh <- lowerOutcome{out: out, err: err}
		close(events)
	}()

	title := fmt.Sprintf("lowering %s", filepath.Base(path))
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(w), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the lowering goroutine can finish
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.out, uiErr
	}
	return outcome.out, outcome.err
}
