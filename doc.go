// Package logfmt packs structured, typed log-statement arguments into the
// compact binary form consumed by an OS logging and activity-tracing
// backend.
//
// A log statement is encoded as a command stream: a two-byte header followed
// by one variable-length command per argument. The stream is combined with
// the statement's format string and call-site metadata into a single
// contiguous pack, which is handed to a Backend for transmission. Encoding
// is lossy by design: arguments that do not fit are dropped, oversized
// payloads are truncated, and the caller is never interrupted.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	logfmt/          Root package with the Backend interface and shared handles
//	├── encoder/     Fixed-capacity command buffer, one command per argument
//	├── blob/        Growable byte container for variable-length payloads
//	├── pack/        Two-phase pack assembly (size, fill) and send dispatch
//	├── activity/    Activity and signpost identifier allocation
//	├── sink/        Reference backend: pack decoding and rendering over zap
//	└── errors/      Structured error types for the decode side
//
// # Quick Start
//
// Encode and send one statement:
//
//	var enc encoder.Buffer
//	enc.AppendInt32(42, 0)
//	enc.AppendString("main.sock", encoder.FlagPublic)
//
//	be := sink.New(zapLogger)
//	log := &logfmt.Log{Subsystem: "com.example.server", Category: "net"}
//	pack.Send(be, log, logfmt.EventInfo, &enc, "listener %d ready on %s", logfmt.CallerSite(0))
//
// The encode path never returns an error and never blocks; degraded
// statements are observable only through the emitted record.
package logfmt
