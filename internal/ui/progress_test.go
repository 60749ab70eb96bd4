package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"abilower/internal/driver"
)

func TestProgressModelTracksSignatures(t *testing.T) {
	events := make(chan driver.ProgressEvent)
	model := NewProgressModel("lowering sigs.toml", []string{"swap", "Widget::make"}, events)
	m := model.(*progressModel)

	m.Update(eventMsg{Index: 0, Name: "swap", Status: driver.StatusWorking})
	if got := m.percent(); got != 0.25 {
		t.Fatalf("percent = %v, want 0.25", got)
	}
	m.Update(eventMsg{Index: 0, Name: "swap", Status: driver.StatusDone})
	m.Update(eventMsg{Index: 9, Name: "ghost", Status: driver.StatusDone})
	if got := m.percent(); got != 0.5 {
		t.Fatalf("percent = %v, want 0.5", got)
	}

	view := m.View()
	for _, want := range []string{"lowering sigs.toml (1/2)", "done", "queued", "Widget::make"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("model did not quit on doneMsg")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("doneMsg should produce tea.Quit")
	}
	if !strings.Contains(m.View(), "done: lowering") {
		t.Fatalf("final view = %s", m.View())
	}
}

func TestProgressModelListensUntilClosed(t *testing.T) {
	events := make(chan driver.ProgressEvent, 1)
	m := NewProgressModel("x", []string{"f"}, events).(*progressModel)
	events <- driver.ProgressEvent{Index: 0, Name: "f", Status: driver.StatusWorking}
	if msg, ok := m.listenForEvent()().(eventMsg); !ok || msg.Status != driver.StatusWorking {
		t.Fatalf("msg = %#v", msg)
	}
	close(events)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("closed channel should yield doneMsg")
	}
}

func TestWindowResize(t *testing.T) {
	m := NewProgressModel("x", []string{strings.Repeat("n", 100)}, nil).(*progressModel)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.width != 40 || m.prog.Width != 36 {
		t.Fatalf("width = %d, bar = %d", m.width, m.prog.Width)
	}
	if strings.Contains(m.View(), strings.Repeat("n", 100)) {
		t.Fatalf("long names should be truncated")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
