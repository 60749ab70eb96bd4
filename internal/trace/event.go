package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Coarser scopes have lower values, so
// a level admits every scope up to its limit.
type Scope uint8

const (
	// ScopeDriver covers a whole CLI invocation.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one pipeline phase (load, lower).
	ScopePass
	// ScopeSignature covers the lowering of one function signature.
	ScopeSignature
	// ScopeArg covers one parameter or return slot.
	ScopeArg
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeSignature: "signature", ScopeArg: "arg"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is a single trace record. Seq is assigned by the tracer that stores
// or writes the event.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // "lower", "sig:printf", "rewrite"
	Detail   string
	Extra    map[string]string
}
