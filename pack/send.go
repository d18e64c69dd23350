package pack

import (
	"github.com/tracekit/logfmt"
	"github.com/tracekit/logfmt/encoder"
)

// Sender dispatches assembled statements to one backend. The backend's
// capabilities are captured once at construction and threaded through every
// send; they are never re-probed per statement.
type Sender struct {
	backend logfmt.Backend
	caps    logfmt.Capabilities
}

// NewSender probes be's capabilities and returns a Sender bound to it.
func NewSender(be logfmt.Backend) *Sender {
	return &Sender{backend: be, caps: be.Capabilities()}
}

// Capabilities returns the capability value captured at construction.
func (s *Sender) Capabilities() logfmt.Capabilities {
	return s.caps
}

// Send assembles and transmits one plain log event. When the backend does
// not accept packed sends the statement goes out through the legacy
// unstructured primitive instead. Send never fails the caller.
func (s *Sender) Send(log *logfmt.Log, kind logfmt.EventKind, enc *encoder.Buffer, format string, savedErrno int32, site logfmt.Site) {
	if !s.caps.PackedSends {
		s.backend.SendLegacy(log, kind, format, enc.Bytes())
		return
	}

	buf := make([]byte, RequiredSize(len(format), enc.Len()))
	payload := Fill(buf, savedErrno, site.Module, format)
	SetReturnAddress(buf, site.PC)
	copy(payload, enc.Bytes())
	s.backend.SendPack(log, kind, buf)
}

// SendSignpost assembles and transmits one signpost event carrying name and
// the caller-scoped correlation id. Backends without signpost support drop
// the event; there is no unstructured fallback for signposts.
func (s *Sender) SendSignpost(log *logfmt.Log, kind logfmt.SignpostKind, name string, id logfmt.SignpostID, enc *encoder.Buffer, format string, site logfmt.Site) {
	if !s.caps.Signposts || !s.caps.PackedSends {
		return
	}

	buf := make([]byte, RequiredSizeSignpost(len(name), len(format), enc.Len()))
	payload := FillSignpost(buf, 0, site.Module, format, name, uint64(id))
	SetReturnAddress(buf, site.PC)
	copy(payload, enc.Bytes())
	s.backend.SendSignpostPack(log, kind, buf)
}

// Send is a convenience over a one-shot Sender for callers that hold a
// bare Backend.
func Send(be logfmt.Backend, log *logfmt.Log, kind logfmt.EventKind, enc *encoder.Buffer, format string, site logfmt.Site) {
	NewSender(be).Send(log, kind, enc, format, 0, site)
}
