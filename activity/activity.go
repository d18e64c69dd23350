// Package activity provides process-wide activity and signpost identifier
// allocation, plus the thin plumbing for creating and labeling activities
// on a tracing backend.
//
// Activities form a tree: each log statement is attributed to the current
// activity, and signpost intervals are correlated by a caller-scoped
// SignpostID. The backend owns the actual activity state; this package only
// allocates identifiers that are guaranteed never to collide with the
// reserved sentinels.
package activity

import (
	"sync/atomic"

	"github.com/tracekit/logfmt"
)

// ID names one activity. The zero value is None.
type ID uint64

const (
	// None attributes statements to no activity.
	None ID = 0
	// Current refers to whatever activity is active on the calling thread;
	// resolution happens in the backend.
	Current ID = ^ID(0)
)

// Flag adjusts activity creation.
type Flag uint32

const (
	FlagDefault Flag = 0
	// FlagDetached starts the new activity without linking to its parent.
	FlagDetached Flag = 0x1
	// FlagIfNonePresent creates the activity only when no activity is
	// current.
	FlagIfNonePresent Flag = 0x2
)

// Tracer is the OS-side activity surface. Implementations live with the
// logging backend; everything here is fire-and-forget.
type Tracer interface {
	// CreateActivity registers a new activity under parent and returns
	// the backend's handle for it, which may differ from the proposed id.
	CreateActivity(id ID, module uintptr, description string, parent ID, flags Flag) ID

	// LabelUserAction marks the current activity as a user-initiated
	// action with the given name.
	LabelUserAction(module uintptr, name string)
}

var (
	activityCounter atomic.Uint64
	signpostCounter atomic.Uint64
)

// NextID allocates a process-unique activity identifier, never None or
// Current.
func NextID() ID {
	for {
		id := ID(activityCounter.Add(1))
		if id != None && id != Current {
			return id
		}
	}
}

// GenerateSignpostID allocates a process-unique signpost correlation
// identifier, never NullSignpostID or ExclusiveSignpostID.
func GenerateSignpostID() logfmt.SignpostID {
	for {
		id := logfmt.SignpostID(signpostCounter.Add(1))
		if id != logfmt.NullSignpostID && id != logfmt.ExclusiveSignpostID {
			return id
		}
	}
}

// Activity is a created activity bound to its tracer.
type Activity struct {
	ID     ID
	tracer Tracer
	module uintptr
}

// Create allocates an identifier and registers a new activity with the
// tracer.
func Create(tr Tracer, module uintptr, description string, parent ID, flags Flag) Activity {
	id := tr.CreateActivity(NextID(), module, description, parent, flags)
	return Activity{ID: id, tracer: tr, module: module}
}

// LabelUserAction marks the activity's current scope as a named user
// action.
func (a Activity) LabelUserAction(name string) {
	a.tracer.LabelUserAction(a.module, name)
}
