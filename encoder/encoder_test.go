package encoder_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/tracekit/logfmt/encoder"
)

// replay walks the encoded stream and returns each command's tag components
// and payload, in order.
type replayed struct {
	typ     encoder.Type
	flags   encoder.Flags
	payload []byte
}

func replay(t *testing.T, b *encoder.Buffer) []replayed {
	t.Helper()
	data := b.Bytes()
	if len(data) == 0 {
		return nil
	}
	if len(data) < 2 {
		t.Fatalf("stream shorter than header: %d bytes", len(data))
	}
	var out []replayed
	pos := 2
	for i := 0; i < int(data[1]); i++ {
		if pos+2 > len(data) {
			t.Fatalf("command %d: tag truncated at offset %d", i, pos)
		}
		typ, flags := encoder.SplitTag(data[pos])
		size := int(data[pos+1])
		if pos+2+size > len(data) {
			t.Fatalf("command %d: payload truncated at offset %d", i, pos)
		}
		out = append(out, replayed{typ, flags, data[pos+2 : pos+2+size]})
		pos += 2 + size
	}
	if pos != len(data) {
		t.Fatalf("trailing bytes after last command: %d != %d", pos, len(data))
	}
	return out
}

func TestEmptyBuffer(t *testing.T) {
	var b encoder.Buffer
	if b.Len() != 0 {
		t.Errorf("empty buffer length: got %d, want 0", b.Len())
	}
	if !b.IsEmpty() {
		t.Error("IsEmpty on fresh buffer: got false")
	}
	if b.Count() != 0 {
		t.Errorf("empty buffer count: got %d, want 0", b.Count())
	}
	if len(b.Bytes()) != 0 {
		t.Errorf("empty buffer bytes: got %d", len(b.Bytes()))
	}
}

func TestAppendInt32(t *testing.T) {
	var b encoder.Buffer
	if r := b.AppendInt32(42, 0); r != encoder.Written {
		t.Fatalf("append: got %v", r)
	}

	if b.Count() != 1 {
		t.Errorf("count: got %d, want 1", b.Count())
	}
	cmds := replay(t, &b)
	if cmds[0].typ != encoder.TypeScalar {
		t.Errorf("type: got %v, want scalar", cmds[0].typ)
	}
	if !bytes.Equal(cmds[0].payload, []byte{42, 0, 0, 0}) {
		t.Errorf("payload: got %v, want little-endian 42", cmds[0].payload)
	}
}

func TestAppendFloat(t *testing.T) {
	var b encoder.Buffer
	if r := b.AppendFloat(3.14, 2, 0); r != encoder.Written {
		t.Fatalf("append: got %v", r)
	}

	cmds := replay(t, &b)
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if cmds[0].typ != encoder.TypeScalar || len(cmds[0].payload) != 4 {
		t.Errorf("precision command: type %v size %d", cmds[0].typ, len(cmds[0].payload))
	}
	if got := binary.LittleEndian.Uint32(cmds[0].payload); got != 2 {
		t.Errorf("precision: got %d, want 2", got)
	}
	if cmds[1].typ != encoder.TypeScalar || len(cmds[1].payload) != 8 {
		t.Errorf("value command: type %v size %d", cmds[1].typ, len(cmds[1].payload))
	}
	if got := math.Float64frombits(binary.LittleEndian.Uint64(cmds[1].payload)); got != 3.14 {
		t.Errorf("value: got %v, want 3.14", got)
	}
}

func TestReplayOrder(t *testing.T) {
	var b encoder.Buffer
	b.AppendInt64(-7, 0)
	b.AppendString("sock", encoder.FlagPublic)
	b.AppendData([]byte{0xde, 0xad}, 0)
	b.AppendCount(12, 0)
	b.AppendErrno()

	cmds := replay(t, &b)
	if b.Count() != 5 || len(cmds) != 5 {
		t.Fatalf("count: got %d/%d, want 5", b.Count(), len(cmds))
	}

	want := []struct {
		typ     encoder.Type
		flags   encoder.Flags
		payload []byte
	}{
		{encoder.TypeScalar, 0, []byte{0xf9, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{encoder.TypeString, encoder.FlagPublic, []byte("sock")},
		{encoder.TypeData, 0, []byte{0xde, 0xad}},
		{encoder.TypeCount, 0, []byte{12, 0, 0, 0}},
		{encoder.TypeErrno, 0, nil},
	}
	for i, w := range want {
		if cmds[i].typ != w.typ {
			t.Errorf("command %d type: got %v, want %v", i, cmds[i].typ, w.typ)
		}
		if cmds[i].flags != w.flags {
			t.Errorf("command %d flags: got %#x, want %#x", i, cmds[i].flags, w.flags)
		}
		if !bytes.Equal(cmds[i].payload, w.payload) {
			t.Errorf("command %d payload: got %v, want %v", i, cmds[i].payload, w.payload)
		}
	}
}

func TestMaxCommandsRejection(t *testing.T) {
	var b encoder.Buffer
	for i := 0; i < encoder.MaxCommands; i++ {
		if r := b.AppendInt32(int32(i), 0); r != encoder.Written {
			t.Fatalf("append %d: got %v", i, r)
		}
	}
	if b.Count() != encoder.MaxCommands {
		t.Fatalf("count: got %d, want %d", b.Count(), encoder.MaxCommands)
	}

	before := append([]byte(nil), b.Bytes()...)
	if r := b.AppendInt32(999, 0); r != encoder.Dropped {
		t.Fatalf("overflow append: got %v, want dropped", r)
	}
	if b.Count() != encoder.MaxCommands {
		t.Errorf("count after rejection: got %d", b.Count())
	}
	if !bytes.Equal(b.Bytes(), before) {
		t.Error("buffer changed by rejected append")
	}
}

func TestCapacityRejection(t *testing.T) {
	var b encoder.Buffer
	// 255-byte payloads exhaust capacity well before the command limit.
	big := make([]byte, 255)
	appended := 0
	for i := 0; i < encoder.MaxCommands; i++ {
		if b.Append(encoder.TypeData, 0, big) == encoder.Written {
			appended++
		}
	}
	if appended == 0 || appended == encoder.MaxCommands {
		t.Fatalf("expected capacity exhaustion mid-way, appended %d", appended)
	}

	length, count := b.Len(), b.Count()
	before := append([]byte(nil), b.Bytes()...)
	if r := b.Append(encoder.TypeData, 0, big); r != encoder.Dropped {
		t.Fatalf("append past capacity: got %v", r)
	}
	if b.Len() != length || b.Count() != count {
		t.Errorf("rejection mutated buffer: len %d->%d count %d->%d", length, b.Len(), count, b.Count())
	}
	if !bytes.Equal(b.Bytes(), before) {
		t.Error("buffer bytes changed by rejected append")
	}
}

func TestOversizedPayloadDropped(t *testing.T) {
	var b encoder.Buffer
	if r := b.Append(encoder.TypeData, 0, make([]byte, 256)); r != encoder.Dropped {
		t.Fatalf("256-byte payload: got %v, want dropped", r)
	}
	if !b.IsEmpty() {
		t.Error("rejected first append initialized the buffer")
	}

	if r := b.AppendString(string(make([]byte, 300)), 0); r != encoder.Dropped {
		t.Errorf("300-byte string: got %v, want dropped", r)
	}
}

func TestHeaderFlags(t *testing.T) {
	var b encoder.Buffer
	b.AppendInt32(1, 0)
	b.AppendString("x", 0)
	b.AppendData([]byte{1}, 0)
	b.AppendCount(1, 0)
	b.AppendErrno()
	if b.HasNonScalar() {
		t.Error("HasNonScalar set without an object command")
	}

	b.AppendObject(0xdeadbeef, 0)
	if !b.HasNonScalar() {
		t.Error("HasNonScalar not set by AppendObject")
	}
}

func TestPrivateFlagAggregation(t *testing.T) {
	var b encoder.Buffer
	b.AppendString("visible", encoder.FlagPublic)
	if b.HasPrivate() {
		t.Error("HasPrivate set by a public command")
	}
	b.AppendString("secret", encoder.FlagPrivate)
	if !b.HasPrivate() {
		t.Error("HasPrivate not set by a private command")
	}
}

func TestFloatRollback(t *testing.T) {
	var b encoder.Buffer
	// Leave room for the precision command but not the value command.
	for b.Append(encoder.TypeData, 0, make([]byte, 255)) == encoder.Written {
	}
	pad := encoder.BufferSize - b.Len() - 2 - 4 - 2 // space for one 4-byte command and a bare tag
	if pad > 0 {
		b.Append(encoder.TypeData, 0, make([]byte, pad))
	}

	length, count := b.Len(), b.Count()
	if r := b.AppendFloat(1.5, 6, 0); r != encoder.Dropped {
		t.Fatalf("partial float: got %v, want dropped", r)
	}
	if b.Len() != length || b.Count() != count {
		t.Errorf("rollback incomplete: len %d->%d count %d->%d", length, b.Len(), count, b.Count())
	}
}

func TestTagRoundTrip(t *testing.T) {
	types := []encoder.Type{
		encoder.TypeScalar, encoder.TypeCount, encoder.TypeString,
		encoder.TypeData, encoder.TypeObject, encoder.TypeWideString,
		encoder.TypeErrno,
	}
	flags := []encoder.Flags{0, encoder.FlagPrivate, encoder.FlagPublic, encoder.FlagPrivate | encoder.FlagPublic}
	for _, typ := range types {
		for _, fl := range flags {
			gotType, gotFlags := encoder.SplitTag(encoder.Tag(typ, fl))
			if gotType != typ || gotFlags != fl {
				t.Errorf("tag round trip (%v,%#x): got (%v,%#x)", typ, fl, gotType, gotFlags)
			}
		}
	}
}
