package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a timed operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a timed operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates event granularity. Lower values are coarser.
type Scope uint8

const (
	// ScopeBuild covers whole-build boundaries and summary points.
	ScopeBuild Scope = iota + 1
	// ScopeUnit covers per-unit spans.
	ScopeUnit
	// ScopeDebug covers diagnostic noise (skipped or duplicate
	// notifications).
	ScopeDebug
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeBuild:
		return "build"
	case ScopeUnit:
		return "unit"
	case ScopeDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time   time.Time         // wall-clock timestamp
	Seq    uint64            // monotonic sequence number
	Kind   Kind              // event kind
	Scope  Scope             // granularity
	SpanID uint64            // span identifier (begin/end pairs share one)
	Name   string            // e.g. "build", "unit:src/app.ts"
	Detail string            // optional detail message
	Extra  map[string]string // extensible key-value pairs
}
