// Package pack assembles an encoded command stream, a format string, and
// call-site metadata into the single contiguous block handed to the logging
// backend.
//
// Assembly is a two-phase protocol: RequiredSize computes the exact block
// length, then Fill writes the metadata header into a buffer of that length
// and returns the cursor where the caller copies the command bytes. The
// block has no internal padding to fix up later, which is why the size must
// be known before allocation.
//
// The Sender type owns the dispatch to a Backend. Its capability value is
// captured once at construction: backends that cannot accept packed sends
// receive the legacy unstructured form (format string plus raw command
// stream) instead. That branch is a capability check, not an error path.
package pack
