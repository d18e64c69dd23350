package sink

import (
	"encoding/binary"
	"math"

	"github.com/tracekit/logfmt"
	"github.com/tracekit/logfmt/encoder"
	"github.com/tracekit/logfmt/errors"
	"github.com/tracekit/logfmt/pack"
)

// Arg is one decoded command: a typed argument of the original statement.
type Arg struct {
	Type    encoder.Type
	Flags   encoder.Flags
	Payload []byte
}

// Int returns the payload as a signed scalar. Undersized payloads read as 0.
func (a Arg) Int() int64 {
	switch len(a.Payload) {
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(a.Payload)))
	case 8:
		return int64(binary.LittleEndian.Uint64(a.Payload))
	}
	return 0
}

// Uint returns the payload as an unsigned scalar.
func (a Arg) Uint() uint64 {
	switch len(a.Payload) {
	case 4:
		return uint64(binary.LittleEndian.Uint32(a.Payload))
	case 8:
		return binary.LittleEndian.Uint64(a.Payload)
	}
	return 0
}

// Float returns the payload as an IEEE 754 double.
func (a Arg) Float() float64 {
	if len(a.Payload) != 8 {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(a.Payload))
}

// Record is one fully decoded statement.
type Record struct {
	ContinuousNanos uint64
	WallSec         int64
	WallNsec        int64
	Module          uintptr
	ReturnAddress   uintptr
	SavedErrno      int32
	Format          string
	Args            []Arg
	HasPrivate      bool
	HasNonScalar    bool

	// Signpost packs only.
	SignpostName string
	SignpostID   logfmt.SignpostID
}

// Decode parses a plain pack block.
func Decode(pk []byte) (*Record, error) {
	rec, pos, err := decodeHeader(pk, pack.HeaderSize)
	if err != nil {
		return nil, err
	}
	return finishDecode(rec, pk, pos)
}

// DecodeSignpost parses a signpost pack block.
func DecodeSignpost(pk []byte) (*Record, error) {
	rec, pos, err := decodeHeader(pk, pack.SignpostHeaderSize)
	if err != nil {
		return nil, err
	}

	rec.SignpostID = logfmt.SignpostID(binary.LittleEndian.Uint64(pk[48:]))
	nameLen := int(binary.LittleEndian.Uint32(pk[56:]))
	if pos+nameLen+1 > len(pk) {
		return nil, errors.Overflow(errors.PhasePack, 56, "signpost name runs past end of block")
	}
	rec.SignpostName = string(pk[pos : pos+nameLen])
	if pk[pos+nameLen] != 0 {
		return nil, errors.Malformed(errors.PhasePack, pos+nameLen, "signpost name not NUL-terminated")
	}
	return finishDecode(rec, pk, pos+nameLen+1)
}

// decodeHeader parses the fixed metadata prefix common to both pack forms.
func decodeHeader(pk []byte, headerSize int) (*Record, int, error) {
	if len(pk) < headerSize {
		return nil, 0, errors.Truncated(errors.PhasePack, len(pk), "block shorter than header")
	}
	rec := &Record{
		ContinuousNanos: binary.LittleEndian.Uint64(pk[0:]),
		WallSec:         int64(binary.LittleEndian.Uint64(pk[8:])),
		WallNsec:        int64(binary.LittleEndian.Uint64(pk[16:])),
		Module:          uintptr(binary.LittleEndian.Uint64(pk[24:])),
		ReturnAddress:   uintptr(binary.LittleEndian.Uint64(pk[32:])),
		SavedErrno:      int32(binary.LittleEndian.Uint32(pk[40:])),
	}
	return rec, headerSize, nil
}

// finishDecode reads the format string at pos and the command stream after
// it.
func finishDecode(rec *Record, pk []byte, pos int) (*Record, error) {
	formatLen := int(binary.LittleEndian.Uint32(pk[44:]))
	if pos+formatLen+1 > len(pk) {
		return nil, errors.Overflow(errors.PhasePack, 44, "format string runs past end of block")
	}
	rec.Format = string(pk[pos : pos+formatLen])
	if pk[pos+formatLen] != 0 {
		return nil, errors.Malformed(errors.PhasePack, pos+formatLen, "format string not NUL-terminated")
	}

	args, hasPrivate, hasNonScalar, err := DecodeCommands(pk[pos+formatLen+1:])
	if err != nil {
		return nil, err
	}
	rec.Args = args
	rec.HasPrivate = hasPrivate
	rec.HasNonScalar = hasNonScalar
	return rec, nil
}

// DecodeCommands walks an encoded command stream and returns the arguments
// in order, plus the header's aggregate flags. An empty stream is a valid
// statement with no arguments.
func DecodeCommands(stream []byte) (args []Arg, hasPrivate, hasNonScalar bool, err error) {
	if len(stream) == 0 {
		return nil, false, false, nil
	}
	if len(stream) < 2 {
		return nil, false, false, errors.Truncated(errors.PhaseDecode, len(stream), "stream shorter than header")
	}

	hasPrivate = stream[0]&encoder.HdrHasPrivate != 0
	hasNonScalar = stream[0]&encoder.HdrHasNonScalar != 0
	count := int(stream[1])

	pos := 2
	for i := 0; i < count; i++ {
		if pos+2 > len(stream) {
			return nil, false, false, errors.Truncated(errors.PhaseDecode, pos, "command tag runs past end of stream")
		}
		typ, flags := encoder.SplitTag(stream[pos])
		size := int(stream[pos+1])
		if typ > encoder.TypeErrno {
			return nil, false, false, errors.Malformed(errors.PhaseDecode, pos, "unknown command type")
		}
		if pos+2+size > len(stream) {
			return nil, false, false, errors.Overflow(errors.PhaseDecode, pos, "command payload runs past end of stream")
		}
		args = append(args, Arg{Type: typ, Flags: flags, Payload: stream[pos+2 : pos+2+size]})
		pos += 2 + size
	}
	if pos != len(stream) {
		return nil, false, false, errors.Malformed(errors.PhaseDecode, pos, "trailing bytes after last command")
	}
	return args, hasPrivate, hasNonScalar, nil
}
