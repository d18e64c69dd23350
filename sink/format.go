package sink

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"unicode/utf16"

	"github.com/tracekit/logfmt/blob"
	"github.com/tracekit/logfmt/encoder"
)

// maxRendered bounds one rendered message. Format strings and payloads may
// be attacker-influenced; the renderer clips rather than allocates without
// limit.
const maxRendered = 2048

const (
	redacted = "<private>"
	missing  = "<decode: missing argument>"
	mismatch = "<decode: type mismatch>"
)

// Render resolves rec's format string against its decoded arguments and
// returns the finished message. Private arguments render as "<private>"
// unless flagged public at the call site or revealPrivate is set. Render
// degrades instead of failing: unresolvable specifiers become placeholders
// and the rest of the message still renders.
func Render(rec *Record, revealPrivate bool) string {
	var inline [256]byte
	out := blob.NewString(inline[:], maxRendered)
	defer out.Free()

	r := renderer{rec: rec, reveal: revealPrivate, out: &out}
	r.run()
	return out.String()
}

type renderer struct {
	rec    *Record
	out    *blob.Blob
	next   int // next unconsumed argument
	reveal bool
}

func (r *renderer) run() {
	format := r.rec.Format
	for i := 0; i < len(format); {
		c := format[i]
		if c != '%' {
			r.out.AppendByte(c)
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			r.out.AppendByte('%')
			i++
			continue
		}
		i = r.specifier(format, i)
	}
}

// arg consumes the next argument, or reports that none remain.
func (r *renderer) arg() (Arg, bool) {
	if r.next >= len(r.rec.Args) {
		return Arg{}, false
	}
	a := r.rec.Args[r.next]
	r.next++
	return a, true
}

// specifier parses one conversion starting right after the '%' and appends
// its rendering. It returns the index of the first byte after the
// conversion.
func (r *renderer) specifier(format string, i int) int {
	private, public := false, false

	// %{annotations} — comma-separated redaction and presentation hints.
	if i < len(format) && format[i] == '{' {
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			// Unterminated annotation; emit the rest verbatim.
			r.out.AppendString(format[i-1:])
			return len(format)
		}
		for _, a := range strings.Split(format[i+1:i+end], ",") {
			switch strings.TrimSpace(a) {
			case "private":
				private = true
			case "public":
				public = true
			}
		}
		i += end + 1
	}

	// Flags, width, precision. '*' pulls a count argument.
	spec := strings.Builder{}
	spec.WriteByte('%')
	hasPrec, precision := false, 0
	for i < len(format) {
		c := format[i]
		if c == '-' || c == '+' || c == ' ' || c == '#' || c == '0' || (c >= '1' && c <= '9') {
			spec.WriteByte(c)
			i++
			continue
		}
		break
	}
	if i < len(format) && format[i] == '*' {
		if a, ok := r.arg(); ok {
			spec.WriteString(strconv.FormatInt(a.Int(), 10))
		}
		i++
	}
	if i < len(format) && format[i] == '.' {
		i++
		start := i
		for i < len(format) && format[i] >= '0' && format[i] <= '9' {
			i++
		}
		if start < i {
			precision, _ = strconv.Atoi(format[start:i])
			hasPrec = true
		} else if i < len(format) && format[i] == '*' {
			// Dynamic precision rides in the argument stream; for floats
			// it is the precision half of the scalar pair.
			i++
		}
	}

	// Length modifiers carry no information once arguments are typed.
	for i < len(format) {
		switch format[i] {
		case 'h', 'l', 'z', 'j', 't', 'q':
			i++
			continue
		}
		break
	}
	if i >= len(format) {
		r.out.AppendString(spec.String())
		return i
	}

	verb := format[i]
	i++

	a, ok := Arg{}, false
	if verb != 'm' {
		a, ok = r.arg()
		if !ok {
			r.out.AppendString(missing)
			return i
		}
	}

	if r.redact(a, private, public) {
		r.out.AppendString(redacted)
		// Floats still consume their value half.
		if isFloatVerb(verb) {
			r.arg()
		}
		return i
	}

	switch verb {
	case 'd', 'i':
		spec.WriteByte('d')
		r.printf(spec.String(), a.Int())
	case 'u':
		spec.WriteByte('d')
		r.printf(spec.String(), a.Uint())
	case 'x', 'X', 'o':
		spec.WriteByte(verb)
		r.printf(spec.String(), a.Uint())
	case 'c':
		spec.WriteByte('c')
		r.printf(spec.String(), rune(a.Int()))
	case 'p':
		r.printf("%#x", a.Uint())
	case 'f', 'F', 'e', 'E', 'g', 'G':
		// Scalar pair: precision hint first, then the value.
		v, ok := r.arg()
		if !ok || a.Type != encoder.TypeScalar || v.Type != encoder.TypeScalar || len(v.Payload) != 8 {
			r.out.AppendString(mismatch)
			return i
		}
		if !hasPrec {
			precision = int(a.Int())
		}
		spec.WriteByte('.')
		spec.WriteString(strconv.Itoa(precision))
		spec.WriteByte(byte(verb))
		r.printf(spec.String(), v.Float())
	case 's':
		switch a.Type {
		case encoder.TypeString:
			spec.WriteByte('s')
			r.printf(spec.String(), string(a.Payload))
		case encoder.TypeWideString:
			spec.WriteByte('s')
			r.printf(spec.String(), decodeWide(a.Payload))
		default:
			r.out.AppendString(mismatch)
		}
	case '@':
		if a.Type != encoder.TypeObject {
			r.out.AppendString(mismatch)
			return i
		}
		r.printf("<object %#x>", a.Uint())
	case 'P':
		if a.Type != encoder.TypeData {
			r.out.AppendString(mismatch)
			return i
		}
		r.printf("<%s>", hex.EncodeToString(a.Payload))
	case 'm':
		// Resolved against the errno saved at fill time; an errno command
		// in the stream is consumed but carries no payload.
		if r.next < len(r.rec.Args) && r.rec.Args[r.next].Type == encoder.TypeErrno {
			r.next++
		}
		r.out.AppendString(errnoString(r.rec.SavedErrno))
	default:
		// Unknown conversion: emit it verbatim so nothing is silently lost.
		spec.WriteByte(verb)
		r.out.AppendString(spec.String())
	}
	return i
}

func (r *renderer) redact(a Arg, private, public bool) bool {
	if r.reveal {
		return false
	}
	if public || a.Flags&encoder.FlagPublic != 0 {
		return false
	}
	return private || a.Flags&encoder.FlagPrivate != 0
}

func (r *renderer) printf(spec string, v any) {
	fmt.Fprintf(writerTo{r.out}, spec, v)
}

// writerTo adapts a blob to io.Writer for fmt. Short writes are fine: the
// blob clips at its ceiling by design.
type writerTo struct{ b *blob.Blob }

func (w writerTo) Write(p []byte) (int, error) {
	w.b.Append(p)
	return len(p), nil
}

func isFloatVerb(v byte) bool {
	switch v {
	case 'f', 'F', 'e', 'E', 'g', 'G':
		return true
	}
	return false
}

// decodeWide interprets a wide-string payload as UTF-16LE.
func decodeWide(p []byte) string {
	u := make([]uint16, 0, len(p)/2)
	for i := 0; i+1 < len(p); i += 2 {
		u = append(u, uint16(p[i])|uint16(p[i+1])<<8)
	}
	return string(utf16.Decode(u))
}

func errnoString(n int32) string {
	if n == 0 {
		return "success"
	}
	return syscall.Errno(n).Error()
}
