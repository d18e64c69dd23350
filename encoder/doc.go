// Package encoder builds the command stream of a single log statement.
//
// A Buffer is a fixed-capacity byte buffer holding a two-byte header
// followed by one command per appended argument. Each command is a tag byte
// (redaction flags in the low nibble, argument type in the high nibble), a
// payload size byte, and the payload itself. The header carries aggregate
// flags and the command count and is written on the first successful append.
//
// Appends never fail the caller. An argument that does not fit, either
// because the command count reached MaxCommands or because the remaining
// capacity is too small, is dropped and the buffer is left untouched; the
// statement still transmits with fewer fields. Appends report Written or
// Dropped so callers and tests can observe the outcome without inspecting
// buffer bytes.
//
// Buffers are value types meant to live on one goroutine's stack for the
// duration of a single statement. They are not safe for concurrent use.
package encoder
