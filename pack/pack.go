package pack

import (
	"encoding/binary"
	"time"
)

// Pack block layout. All fixed-width fields are little-endian. The format
// string (and, for signposts, the name) is embedded NUL-terminated rather
// than carried as a pointer: Go has no caller-lifetime-guaranteed addresses
// to smuggle across the hand-off.
//
//	offset  size  field
//	     0     8  continuous (monotonic) time, nanoseconds
//	     8     8  wall-clock seconds
//	    16     8  wall-clock nanoseconds
//	    24     8  module handle
//	    32     8  return address (program counter)
//	    40     4  saved errno
//	    44     4  format string length
//	    48     .  format string, NUL terminator, command stream
//
// Signpost packs insert the correlation id (8 bytes) and the name length
// (4 bytes) after the format length, then the NUL-terminated name before
// the format string.
const (
	offContinuousTime = 0
	offWallSec        = 8
	offWallNsec       = 16
	offModule         = 24
	offReturnAddr     = 32
	offErrno          = 40
	offFormatLen      = 44

	// HeaderSize is the fixed metadata prefix of a plain pack.
	HeaderSize = 48

	offSignpostID      = 48
	offSignpostNameLen = 56

	// SignpostHeaderSize is the fixed metadata prefix of a signpost pack.
	SignpostHeaderSize = 60
)

// processStart anchors continuous time. The difference between two time
// values uses the monotonic clock reading, so suspends and wall-clock
// adjustments do not affect it.
var processStart = time.Now()

// RequiredSize returns the exact byte length of a plain pack holding a
// format string of formatLen bytes and a command stream of commandLen
// bytes. It is monotonically non-decreasing in both arguments.
func RequiredSize(formatLen, commandLen int) int {
	return HeaderSize + formatLen + 1 + commandLen
}

// RequiredSizeSignpost is RequiredSize for a signpost pack carrying an
// event name of nameLen bytes.
func RequiredSizeSignpost(nameLen, formatLen, commandLen int) int {
	return SignpostHeaderSize + nameLen + 1 + formatLen + 1 + commandLen
}

// Fill writes the metadata header and format string into buf, which must be
// exactly RequiredSize(len(format), commandLen) bytes, and returns the
// region reserved for the command stream. Timestamps are captured at call
// time. The return-address field is zero; callers overwrite it afterward
// with SetReturnAddress once the true frame is known.
func Fill(buf []byte, savedErrno int32, module uintptr, format string) []byte {
	now := time.Now()
	binary.LittleEndian.PutUint64(buf[offContinuousTime:], uint64(now.Sub(processStart).Nanoseconds()))
	binary.LittleEndian.PutUint64(buf[offWallSec:], uint64(now.Unix()))
	binary.LittleEndian.PutUint64(buf[offWallNsec:], uint64(now.Nanosecond()))
	binary.LittleEndian.PutUint64(buf[offModule:], uint64(module))
	binary.LittleEndian.PutUint64(buf[offReturnAddr:], 0)
	binary.LittleEndian.PutUint32(buf[offErrno:], uint32(savedErrno))
	binary.LittleEndian.PutUint32(buf[offFormatLen:], uint32(len(format)))

	n := copy(buf[HeaderSize:], format)
	buf[HeaderSize+n] = 0
	return buf[HeaderSize+n+1:]
}

// FillSignpost is Fill for a signpost pack, additionally embedding the
// event name and caller-scoped correlation id.
func FillSignpost(buf []byte, savedErrno int32, module uintptr, format, name string, id uint64) []byte {
	now := time.Now()
	binary.LittleEndian.PutUint64(buf[offContinuousTime:], uint64(now.Sub(processStart).Nanoseconds()))
	binary.LittleEndian.PutUint64(buf[offWallSec:], uint64(now.Unix()))
	binary.LittleEndian.PutUint64(buf[offWallNsec:], uint64(now.Nanosecond()))
	binary.LittleEndian.PutUint64(buf[offModule:], uint64(module))
	binary.LittleEndian.PutUint64(buf[offReturnAddr:], 0)
	binary.LittleEndian.PutUint32(buf[offErrno:], uint32(savedErrno))
	binary.LittleEndian.PutUint32(buf[offFormatLen:], uint32(len(format)))
	binary.LittleEndian.PutUint64(buf[offSignpostID:], id)
	binary.LittleEndian.PutUint32(buf[offSignpostNameLen:], uint32(len(name)))

	pos := SignpostHeaderSize
	pos += copy(buf[pos:], name)
	buf[pos] = 0
	pos++
	pos += copy(buf[pos:], format)
	buf[pos] = 0
	return buf[pos+1:]
}

// SetReturnAddress overwrites the pack's return-address field. The pc is
// resolved one frame above the encoding entry point, which is only known
// after Fill has run.
func SetReturnAddress(buf []byte, pc uintptr) {
	binary.LittleEndian.PutUint64(buf[offReturnAddr:], uint64(pc))
}
