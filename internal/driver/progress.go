package driver

// Status captures where a signature is in the lowering run.
type Status string

const (
	// StatusQueued indicates the signature is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates a worker is lowering the signature.
	StatusWorking Status = "lowering"
	// StatusDone indicates the signature has been lowered.
	StatusDone Status = "done"
	// StatusCanceled indicates the run stopped before the signature was lowered.
	StatusCanceled Status = "canceled"
)

// ProgressEvent reports progress for one signature, identified by its
// position in the program.
type ProgressEvent struct {
	Index  int
	Name   string
	Status Status
}

// ProgressSink consumes progress events. OnEvent may be called from several
// workers at once.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- ProgressEvent
}

func (s ChannelSink) OnEvent(ev ProgressEvent) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func report(sink ProgressSink, ev ProgressEvent) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
