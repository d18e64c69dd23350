// Package sink provides a reference logging backend that consumes
// assembled packs.
//
// The encoder side of the library is write-only: it builds packs and hands
// them off. Decoding is the receiving side's job, and sink is that side.
// It parses the pack block layout, walks the command stream back into
// typed arguments, resolves them against the embedded format string, and
// emits the finished record through a zap logger.
//
// Sink implements both the logfmt.Backend and activity.Tracer interfaces,
// so it can stand in for the OS subsystem in tests, tools, and services
// that want structured statement encoding without a native backend.
package sink
