// Package errors provides structured error types for the decoding side of
// the library.
//
// The encoding path deliberately has no error channel: appends drop or
// truncate and the statement still goes out. Decoding is different — a
// backend consuming packs needs to say precisely where and how a block was
// malformed. Errors are categorized by Phase (which layer was parsing) and
// Kind (what went wrong), carry the byte offset of the failure, and chain a
// cause:
//
//	err := errors.Malformed(errors.PhaseDecode, off, "command payload past end of stream")
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
