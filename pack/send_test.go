package pack_test

import (
	"bytes"
	"testing"

	"github.com/tracekit/logfmt"
	"github.com/tracekit/logfmt/encoder"
	"github.com/tracekit/logfmt/pack"
)

// captureBackend records every transmission for assertion.
type captureBackend struct {
	caps logfmt.Capabilities

	packs     [][]byte
	signposts [][]byte

	legacyFormat   string
	legacyCommands []byte
	legacyCalls    int
}

func (c *captureBackend) Capabilities() logfmt.Capabilities { return c.caps }

func (c *captureBackend) SendPack(log *logfmt.Log, kind logfmt.EventKind, pk []byte) {
	c.packs = append(c.packs, pk)
}

func (c *captureBackend) SendSignpostPack(log *logfmt.Log, kind logfmt.SignpostKind, pk []byte) {
	c.signposts = append(c.signposts, pk)
}

func (c *captureBackend) SendLegacy(log *logfmt.Log, kind logfmt.EventKind, format string, commands []byte) {
	c.legacyCalls++
	c.legacyFormat = format
	c.legacyCommands = append([]byte(nil), commands...)
}

func TestSendPacked(t *testing.T) {
	be := &captureBackend{caps: logfmt.Capabilities{PackedSends: true, Signposts: true}}
	s := pack.NewSender(be)

	var enc encoder.Buffer
	enc.AppendInt32(42, 0)

	log := &logfmt.Log{Subsystem: "test", Category: "send"}
	s.Send(log, logfmt.EventInfo, &enc, "val %d", 0, logfmt.Site{PC: 0xbeef})

	if len(be.packs) != 1 {
		t.Fatalf("packs sent: got %d, want 1", len(be.packs))
	}
	pk := be.packs[0]
	if len(pk) != pack.RequiredSize(len("val %d"), enc.Len()) {
		t.Errorf("pack size: got %d", len(pk))
	}
	if !bytes.Equal(pk[len(pk)-enc.Len():], enc.Bytes()) {
		t.Error("command stream not copied into the pack")
	}
	if be.legacyCalls != 0 {
		t.Error("legacy path used by a packed-capable backend")
	}
}

func TestSendLegacyFallback(t *testing.T) {
	be := &captureBackend{caps: logfmt.Capabilities{PackedSends: false}}
	s := pack.NewSender(be)

	var enc encoder.Buffer
	enc.AppendString("x", 0)

	s.Send(&logfmt.Log{}, logfmt.EventDefault, &enc, "str %s", 0, logfmt.Site{})

	if len(be.packs) != 0 {
		t.Error("packed send on a legacy-only backend")
	}
	if be.legacyCalls != 1 {
		t.Fatalf("legacy calls: got %d, want 1", be.legacyCalls)
	}
	if be.legacyFormat != "str %s" {
		t.Errorf("legacy format: got %q", be.legacyFormat)
	}
	if !bytes.Equal(be.legacyCommands, enc.Bytes()) {
		t.Error("legacy command stream mismatch")
	}
}

func TestSendSignpost(t *testing.T) {
	be := &captureBackend{caps: logfmt.Capabilities{PackedSends: true, Signposts: true}}
	s := pack.NewSender(be)

	var enc encoder.Buffer
	enc.AppendInt64(5, 0)

	s.SendSignpost(&logfmt.Log{}, logfmt.SignpostIntervalBegin, "req", 0x77, &enc, "start %lld", logfmt.Site{})

	if len(be.signposts) != 1 {
		t.Fatalf("signposts sent: got %d, want 1", len(be.signposts))
	}
	want := pack.RequiredSizeSignpost(len("req"), len("start %lld"), enc.Len())
	if len(be.signposts[0]) != want {
		t.Errorf("signpost pack size: got %d, want %d", len(be.signposts[0]), want)
	}
}

func TestSendSignpostUnsupported(t *testing.T) {
	be := &captureBackend{caps: logfmt.Capabilities{PackedSends: true, Signposts: false}}
	s := pack.NewSender(be)

	var enc encoder.Buffer
	s.SendSignpost(&logfmt.Log{}, logfmt.SignpostEvent, "n", 1, &enc, "f", logfmt.Site{})

	if len(be.signposts) != 0 || len(be.packs) != 0 || be.legacyCalls != 0 {
		t.Error("signpost on unsupporting backend was transmitted")
	}
}

func TestSendEmptyEncoder(t *testing.T) {
	be := &captureBackend{caps: logfmt.Capabilities{PackedSends: true}}
	s := pack.NewSender(be)

	var enc encoder.Buffer
	s.Send(&logfmt.Log{}, logfmt.EventDebug, &enc, "bare", 0, logfmt.Site{})

	if len(be.packs) != 1 {
		t.Fatalf("packs sent: got %d", len(be.packs))
	}
	if len(be.packs[0]) != pack.RequiredSize(4, 0) {
		t.Errorf("empty-stream pack size: got %d", len(be.packs[0]))
	}
}
