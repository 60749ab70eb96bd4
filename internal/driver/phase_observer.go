package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted by Run.
type PhaseObserver func(PhaseEvent)

// phase ties one pipeline stage to the timer, the tracer span and the observer.
type phase struct {
	name    string
	started time.Time
	idx     int
	opts    *Options
}

func (o *Options) begin(name string) *phase {
	p := &phase{name: name, started: time.Now(), idx: o.Timer.Begin(name), opts: o}
	if o.Observer != nil {
		o.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return p
}

func (p *phase) end(note string) {
	p.opts.Timer.End(p.idx, note)
	if p.opts.Observer != nil {
		p.opts.Observer(PhaseEvent{Name: p.name, Status: PhaseEnd, Elapsed: time.Since(p.started)})
	}
}
