package encoder

// Flags are per-command redaction hints carried in the low nibble of the
// command tag. They tell the backend how the argument may be displayed; the
// encoder itself does not redact.
type Flags uint8

const (
	// FlagPrivate marks the argument as sensitive. The backend is expected
	// to withhold it unless explicitly configured otherwise.
	FlagPrivate Flags = 0x1
	// FlagPublic marks the argument as always displayable.
	FlagPublic Flags = 0x2
)

// Type identifies how a command's payload is interpreted, carried in the
// high nibble of the command tag.
type Type uint8

const (
	TypeScalar     Type = 0
	TypeCount      Type = 1
	TypeString     Type = 2
	TypeData       Type = 3
	TypeObject     Type = 4
	TypeWideString Type = 5
	TypeErrno      Type = 6
)

// String returns the lowercase name of the type.
func (t Type) String() string {
	switch t {
	case TypeScalar:
		return "scalar"
	case TypeCount:
		return "count"
	case TypeString:
		return "string"
	case TypeData:
		return "data"
	case TypeObject:
		return "object"
	case TypeWideString:
		return "wide_string"
	case TypeErrno:
		return "errno"
	}
	return "unknown"
}

// Tag packs flags and type into a command's first byte.
func Tag(typ Type, flags Flags) byte {
	return byte(flags&0x0f) | byte(typ&0x0f)<<4
}

// SplitTag recovers the type and flags from a command tag byte.
func SplitTag(tag byte) (Type, Flags) {
	return Type(tag >> 4), Flags(tag & 0x0f)
}

// Result reports the outcome of an append. There is no error variant: a
// statement whose argument cannot be encoded still goes out, shorter.
type Result uint8

const (
	// Written means the command was encoded in full.
	Written Result = iota
	// Dropped means the command did not fit and the buffer is unchanged.
	Dropped
)

func (r Result) String() string {
	if r == Written {
		return "written"
	}
	return "dropped"
}

// Header flag bits, aggregated across all commands in a buffer.
const (
	// HdrHasPrivate is set when any command carries FlagPrivate.
	HdrHasPrivate byte = 0x01
	// HdrHasNonScalar is set when the buffer holds an object command,
	// signaling that transmission needs the referenced object kept alive.
	HdrHasNonScalar byte = 0x02
)
