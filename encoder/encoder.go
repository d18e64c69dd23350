package encoder

import (
	"encoding/binary"
	"math"
)

const (
	// MaxCommands is the most arguments one statement can carry.
	MaxCommands = 48

	// headerSize is the flags byte plus the command count byte.
	headerSize = 2

	// tagSize is the command tag byte plus the payload size byte.
	tagSize = 2

	// maxScalarSize is the widest payload a scalar-ish argument needs;
	// the buffer is sized so MaxCommands of them always fit.
	maxScalarSize = 16

	// BufferSize is the fixed capacity of a Buffer.
	BufferSize = headerSize + (tagSize+maxScalarSize)*MaxCommands

	// maxPayload is the largest single command payload; the size field is
	// one byte.
	maxPayload = 255
)

// Buffer accumulates the command stream for one log statement. The zero
// value is ready to use; the header occupies the first two bytes and is
// written on the first successful append.
type Buffer struct {
	buf    [BufferSize]byte
	length int
}

// Len returns the number of bytes occupied, including the header. A buffer
// that never accepted an append reports 0.
func (b *Buffer) Len() int {
	return b.length
}

// IsEmpty reports whether no command has been accepted.
func (b *Buffer) IsEmpty() bool {
	return b.length == 0
}

// Count returns the number of encoded commands.
func (b *Buffer) Count() int {
	if b.length == 0 {
		return 0
	}
	return int(b.buf[1])
}

// HasPrivate reports whether any accepted command was flagged private.
func (b *Buffer) HasPrivate() bool {
	return b.length != 0 && b.buf[0]&HdrHasPrivate != 0
}

// HasNonScalar reports whether the buffer holds an object command.
func (b *Buffer) HasNonScalar() bool {
	return b.length != 0 && b.buf[0]&HdrHasNonScalar != 0
}

// Bytes returns the encoded header and command stream. The slice aliases
// the buffer's storage and is invalidated by further appends.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.length]
}

// Append encodes one command. The payload is copied. Append reports Dropped
// and leaves the buffer byte-identical when the command count is already at
// MaxCommands, when the payload exceeds 255 bytes, or when tag plus payload
// exceeds the remaining capacity.
func (b *Buffer) Append(typ Type, flags Flags, payload []byte) Result {
	if len(payload) > maxPayload {
		return Dropped
	}

	// Account for the header before it exists so a rejected first append
	// leaves the buffer truly empty.
	length := b.length
	if length == 0 {
		length = headerSize
	}
	if b.Count() >= MaxCommands {
		return Dropped
	}
	if BufferSize-length < tagSize+len(payload) {
		return Dropped
	}

	if b.length == 0 {
		b.buf[0] = 0
		b.buf[1] = 0
		b.length = headerSize
	}

	b.buf[b.length] = Tag(typ, flags)
	b.buf[b.length+1] = byte(len(payload))
	copy(b.buf[b.length+tagSize:], payload)
	b.length += tagSize + len(payload)

	if typ == TypeObject {
		b.buf[0] |= HdrHasNonScalar
	}
	if flags&FlagPrivate != 0 {
		b.buf[0] |= HdrHasPrivate
	}
	b.buf[1]++
	return Written
}

// AppendInt32 encodes a 4-byte scalar.
func (b *Buffer) AppendInt32(v int32, flags Flags) Result {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(v))
	return b.Append(TypeScalar, flags, p[:])
}

// AppendInt64 encodes an 8-byte scalar.
func (b *Buffer) AppendInt64(v int64, flags Flags) Result {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], uint64(v))
	return b.Append(TypeScalar, flags, p[:])
}

// AppendUint encodes a pointer-sized unsigned scalar.
func (b *Buffer) AppendUint(v uint64, flags Flags) Result {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], v)
	return b.Append(TypeScalar, flags, p[:])
}

// AppendFloat encodes a float as two scalar commands: the precision hint
// first, then the IEEE 754 bit pattern. The decoder reads the precision
// immediately before the value it qualifies, so the order is load-bearing.
// When the second append is rejected the first is rolled back; a statement
// never carries a dangling precision command.
func (b *Buffer) AppendFloat(v float64, precision int, flags Flags) Result {
	mark := b.length
	hdr := [2]byte{b.buf[0], b.buf[1]}
	if b.AppendInt32(int32(precision), flags) == Dropped {
		return Dropped
	}
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], math.Float64bits(v))
	if b.Append(TypeScalar, flags, p[:]) == Dropped {
		b.length = mark
		b.buf[0], b.buf[1] = hdr[0], hdr[1]
		return Dropped
	}
	return Written
}

// AppendObject encodes the pointer-sized identity of an externally owned
// object and marks the buffer non-scalar. Keeping the object alive until
// transmission completes is the backend's job.
func (b *Buffer) AppendObject(ptr uintptr, flags Flags) Result {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], uint64(ptr))
	return b.Append(TypeObject, flags, p[:])
}

// AppendString encodes a UTF-8 string payload. Strings longer than 255
// bytes are dropped whole; truncating inside a rune is worse than omitting
// the field.
func (b *Buffer) AppendString(s string, flags Flags) Result {
	return b.Append(TypeString, flags, []byte(s))
}

// AppendData encodes an opaque byte payload.
func (b *Buffer) AppendData(p []byte, flags Flags) Result {
	return b.Append(TypeData, flags, p)
}

// AppendCount encodes a 4-byte count modifier for the following argument,
// as produced by a dynamic width or precision in the format string.
func (b *Buffer) AppendCount(n int, flags Flags) Result {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(int32(n)))
	return b.Append(TypeCount, flags, p[:])
}

// AppendErrno encodes an empty errno command. The value is resolved by the
// backend against the errno saved into the pack at fill time.
func (b *Buffer) AppendErrno() Result {
	return b.Append(TypeErrno, 0, nil)
}
