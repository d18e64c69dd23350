package logfmt

import "runtime"

// EventKind is the severity class of a plain log event.
type EventKind uint8

const (
	EventDefault EventKind = 0x00
	EventInfo    EventKind = 0x01
	EventDebug   EventKind = 0x02
	EventError   EventKind = 0x10
	EventFault   EventKind = 0x11
)

// String returns the lowercase name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventDefault:
		return "default"
	case EventInfo:
		return "info"
	case EventDebug:
		return "debug"
	case EventError:
		return "error"
	case EventFault:
		return "fault"
	}
	return "unknown"
}

// SignpostKind distinguishes interval boundaries from point events.
type SignpostKind uint8

const (
	SignpostEvent SignpostKind = iota
	SignpostIntervalBegin
	SignpostIntervalEnd
)

func (k SignpostKind) String() string {
	switch k {
	case SignpostEvent:
		return "event"
	case SignpostIntervalBegin:
		return "begin"
	case SignpostIntervalEnd:
		return "end"
	}
	return "unknown"
}

// SignpostID correlates the begin and end of one signpost interval. IDs are
// caller-scoped: the same ID must be used for both boundaries.
type SignpostID uint64

const (
	// NullSignpostID marks a signpost that was disabled at the call site.
	NullSignpostID SignpostID = 0
	// ExclusiveSignpostID may be shared by intervals that cannot overlap.
	ExclusiveSignpostID SignpostID = 0xEEEEB0B5B2B2EEEE
)

// Log identifies a destination stream within the backend, equivalent to a
// subsystem/category pair. The zero value is the shared default stream.
type Log struct {
	Subsystem string
	Category  string
}

// Capabilities reports which transmission paths the backend supports. It is
// computed once per backend and threaded through send calls; callers must
// not re-probe per statement.
type Capabilities struct {
	// PackedSends indicates the backend accepts assembled packs. When
	// false, statements go through the legacy unstructured primitive.
	PackedSends bool
	// Signposts indicates the backend accepts signpost packs at all.
	Signposts bool
}

// Backend receives assembled statements. Sends are fire-and-forget: a
// backend must not fail the caller, and slow or lossy delivery is its own
// concern.
type Backend interface {
	// Capabilities is consulted once when the backend is first used.
	Capabilities() Capabilities

	// SendPack transmits one assembled pack.
	SendPack(log *Log, kind EventKind, pk []byte)

	// SendSignpostPack transmits one assembled signpost pack.
	SendSignpostPack(log *Log, kind SignpostKind, pk []byte)

	// SendLegacy transmits an unpacked statement: the format string plus
	// the raw command stream. Used when PackedSends is false.
	SendLegacy(log *Log, kind EventKind, format string, commands []byte)
}

// Site carries call-site metadata into a pack: the handle of the module
// containing the call and the program counter of the statement itself.
type Site struct {
	Module uintptr
	PC     uintptr
}

// CallerSite resolves the program counter skip+1 frames above the caller,
// so a binding layer passes skip 0 to record its own caller.
func CallerSite(skip int) Site {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{}
	}
	return Site{PC: pc}
}
