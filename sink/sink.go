package sink

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tracekit/logfmt"
	"github.com/tracekit/logfmt/activity"
)

// Option configures a Sink.
type Option func(*Sink)

// WithCapabilities overrides the capability set the sink advertises.
// Shrinking it forces callers onto the legacy unstructured path, which is
// how tests and tools exercise that branch.
func WithCapabilities(caps logfmt.Capabilities) Option {
	return func(s *Sink) { s.caps = caps }
}

// RevealPrivate renders private arguments in clear instead of "<private>".
func RevealPrivate() Option {
	return func(s *Sink) { s.reveal = true }
}

// Sink is a logfmt.Backend that decodes incoming packs and emits them
// through a zap logger. It also implements activity.Tracer.
type Sink struct {
	logger *zap.Logger
	caps   logfmt.Capabilities
	reveal bool
}

// New returns a Sink emitting through logger. A nil logger discards all
// records.
func New(logger *zap.Logger, opts ...Option) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sink{
		logger: logger,
		caps:   logfmt.Capabilities{PackedSends: true, Signposts: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capabilities implements logfmt.Backend.
func (s *Sink) Capabilities() logfmt.Capabilities {
	return s.caps
}

// SendPack implements logfmt.Backend. Malformed packs are reported on the
// sink's own logger and dropped; the sender is never failed.
func (s *Sink) SendPack(log *logfmt.Log, kind logfmt.EventKind, pk []byte) {
	rec, err := Decode(pk)
	if err != nil {
		s.logger.Warn("dropping malformed pack", zap.Error(err))
		return
	}
	s.emit(log, kind, rec, nil)
}

// SendSignpostPack implements logfmt.Backend.
func (s *Sink) SendSignpostPack(log *logfmt.Log, kind logfmt.SignpostKind, pk []byte) {
	rec, err := DecodeSignpost(pk)
	if err != nil {
		s.logger.Warn("dropping malformed signpost pack", zap.Error(err))
		return
	}
	s.emit(log, logfmt.EventDefault, rec, []zap.Field{
		zap.String("signpost", rec.SignpostName),
		zap.String("signpost_kind", kind.String()),
		zap.Uint64("signpost_id", uint64(rec.SignpostID)),
	})
}

// SendLegacy implements logfmt.Backend: the unstructured path for senders
// without pack support, carrying the format string and raw command stream.
func (s *Sink) SendLegacy(log *logfmt.Log, kind logfmt.EventKind, format string, commands []byte) {
	args, hasPrivate, hasNonScalar, err := DecodeCommands(commands)
	if err != nil {
		s.logger.Warn("dropping malformed command stream", zap.Error(err))
		return
	}
	rec := &Record{
		Format:       format,
		Args:         args,
		HasPrivate:   hasPrivate,
		HasNonScalar: hasNonScalar,
	}
	s.emit(log, kind, rec, nil)
}

func (s *Sink) emit(log *logfmt.Log, kind logfmt.EventKind, rec *Record, extra []zap.Field) {
	ce := s.logger.Check(zapLevel(kind), Render(rec, s.reveal))
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 6+len(extra))
	if log != nil && log.Subsystem != "" {
		fields = append(fields, zap.String("subsystem", log.Subsystem))
	}
	if log != nil && log.Category != "" {
		fields = append(fields, zap.String("category", log.Category))
	}
	if kind == logfmt.EventFault {
		fields = append(fields, zap.Bool("fault", true))
	}
	if rec.SavedErrno != 0 {
		fields = append(fields, zap.Int32("errno", rec.SavedErrno))
	}
	if rec.ReturnAddress != 0 {
		fields = append(fields, zap.Uint64("pc", uint64(rec.ReturnAddress)))
	}
	if rec.HasPrivate {
		fields = append(fields, zap.Bool("has_private", true))
	}
	fields = append(fields, extra...)
	ce.Write(fields...)
}

func zapLevel(kind logfmt.EventKind) zapcore.Level {
	switch kind {
	case logfmt.EventDebug:
		return zapcore.DebugLevel
	case logfmt.EventError, logfmt.EventFault:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// CreateActivity implements activity.Tracer by acknowledging the proposed
// id and noting the creation at debug level.
func (s *Sink) CreateActivity(id activity.ID, module uintptr, description string, parent activity.ID, flags activity.Flag) activity.ID {
	s.logger.Debug("activity created",
		zap.Uint64("id", uint64(id)),
		zap.String("description", description),
		zap.Uint64("parent", uint64(parent)),
	)
	return id
}

// LabelUserAction implements activity.Tracer.
func (s *Sink) LabelUserAction(module uintptr, name string) {
	s.logger.Debug("user action", zap.String("action", name))
}
