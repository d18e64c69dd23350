// Package blob provides a growable byte container for variable-length
// log-statement payloads.
//
// A Blob starts over caller-supplied inline storage so the common short
// payload never allocates. When an append does not fit, the blob grows onto
// heap storage up to a hard ceiling; an append that would exceed the
// ceiling copies what fits and permanently truncates the blob. Truncation
// is sticky: every later append writes nothing and returns 0.
//
// String blobs keep one byte reserved for a trailing NUL so the contents
// can be handed to C-string consumers at any point; binary blobs use the
// full capacity.
package blob

import "sync"

// heap storage for grown blobs is recycled through a pool; Free returns it.
const (
	pooledCap  = 1 << 10
	maxPoolCap = 64 << 10
)

var pool = sync.Pool{
	New: func() any {
		b := make([]byte, pooledCap)
		return &b
	},
}

// Blob is a byte buffer with bounded growth. The zero value is unusable;
// construct with New or NewString.
type Blob struct {
	buf       []byte
	length    int
	max       int
	grown     bool
	truncated bool
	binary    bool
}

// New returns a binary blob over the full capacity of inline. The blob may
// grow onto the heap up to max total bytes; max is raised to the inline
// capacity if smaller.
func New(inline []byte, max int) Blob {
	if max < cap(inline) {
		max = cap(inline)
	}
	return Blob{buf: inline[:cap(inline)], max: max, binary: true}
}

// NewString returns a NUL-terminated string blob over the full capacity of
// inline. One byte of every backing buffer is reserved for the terminator.
func NewString(inline []byte, max int) Blob {
	b := New(inline, max)
	b.binary = false
	if len(b.buf) > 0 {
		b.buf[0] = 0
	}
	return b
}

// Len returns the number of payload bytes, excluding any NUL terminator.
func (b *Blob) Len() int {
	return b.length
}

// IsEmpty reports whether nothing has been appended.
func (b *Blob) IsEmpty() bool {
	return b.length == 0
}

// Cap returns the current backing capacity, including the NUL reservation
// for string blobs.
func (b *Blob) Cap() int {
	return len(b.buf)
}

// Truncated reports whether a past append overran the ceiling. Once set it
// never clears.
func (b *Blob) Truncated() bool {
	return b.truncated
}

// Grown reports whether the blob left its inline storage.
func (b *Blob) Grown() bool {
	return b.grown
}

// Bytes returns the payload. The slice aliases the backing storage and is
// invalidated by further appends and by Free.
func (b *Blob) Bytes() []byte {
	return b.buf[:b.length]
}

// String returns the payload as a string.
func (b *Blob) String() string {
	return string(b.Bytes())
}

// CString returns the payload including the trailing NUL for string blobs.
// For binary blobs it is identical to Bytes.
func (b *Blob) CString() []byte {
	if b.binary || len(b.buf) == 0 {
		return b.Bytes()
	}
	return b.buf[:b.length+1]
}

// reserve is the byte held back for the terminator on string blobs.
func (b *Blob) reserve() int {
	if b.binary {
		return 0
	}
	return 1
}

func (b *Blob) available() int {
	return len(b.buf) - b.reserve() - b.length
}

// growLen advances the cursor and keeps string blobs terminated.
func (b *Blob) growLen(n int) int {
	b.length += n
	if !b.binary {
		b.buf[b.length] = 0
	}
	return n
}

// Append copies p into the blob and returns the number of bytes written,
// which is less than len(p) only when the ceiling was hit. After a short
// write the blob is truncated and all later appends return 0.
func (b *Blob) Append(p []byte) int {
	if b.truncated {
		return 0
	}
	if len(p) <= b.available() {
		copy(b.buf[b.length:], p)
		return b.growLen(len(p))
	}
	return b.appendSlow(p)
}

// AppendString copies s into the blob. Same contract as Append.
func (b *Blob) AppendString(s string) int {
	if b.truncated {
		return 0
	}
	if len(s) <= b.available() {
		copy(b.buf[b.length:], s)
		return b.growLen(len(s))
	}
	return b.appendSlow([]byte(s))
}

// AppendByte appends a single byte. Same contract as Append.
func (b *Blob) AppendByte(c byte) int {
	if b.truncated {
		return 0
	}
	if b.available() >= 1 {
		b.buf[b.length] = c
		return b.growLen(1)
	}
	return b.appendSlow([]byte{c})
}

func (b *Blob) appendSlow(p []byte) int {
	need := b.length + len(p) + b.reserve()
	if need > b.max {
		need = b.max
	}
	if need > len(b.buf) {
		b.regrow(need)
	}

	n := b.available()
	if n >= len(p) {
		n = len(p)
	} else {
		b.truncated = true
	}
	if n <= 0 {
		// Even the current contents fill the ceiling.
		return 0
	}
	copy(b.buf[b.length:], p[:n])
	return b.growLen(n)
}

// regrow replaces the backing storage with a larger buffer of at least need
// bytes, doubling to amortize repeated growth, never past the ceiling.
func (b *Blob) regrow(need int) {
	newCap := len(b.buf) * 2
	if newCap < need {
		newCap = need
	}
	if newCap > b.max {
		newCap = b.max
	}

	var nb []byte
	if newCap <= pooledCap {
		// Pool entries are at least pooledCap long; slice down so the
		// ceiling arithmetic still sees the intended capacity.
		nb = (*pool.Get().(*[]byte))[:newCap]
	} else {
		nb = make([]byte, newCap)
	}
	copy(nb, b.buf[:b.length])
	b.buf = nb
	b.grown = true
	if !b.binary {
		b.buf[b.length] = 0
	}
}

// Free releases heap-grown storage back to the pool and leaves the blob
// unusable. Calling Free on a blob still over inline storage is a no-op,
// so scoped callers can defer it unconditionally.
func (b *Blob) Free() {
	if !b.grown {
		return
	}
	if cap(b.buf) <= maxPoolCap {
		s := b.buf[:cap(b.buf)]
		pool.Put(&s)
	}
	b.buf = nil
	b.grown = false
	b.length = 0
}
