package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer formats events as they arrive. Writes are buffered until
// Flush or Close; write errors are dropped so tracing never fails a run.
type StreamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	level  Level
	format Format
}

// NewStreamTracer writes to w. Close flushes but leaves w open.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return newStream(w, nil, level, format)
}

func newStream(w io.Writer, closer io.Closer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: bufio.NewWriter(w), closer: closer, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	_, _ = t.w.Write(FormatEvent(ev, t.format))
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Flush()
}

// Close flushes and closes the output if the tracer opened it.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
