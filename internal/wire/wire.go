// Package wire is the length-prefixed framing and tag/varint message
// codec shared by the control protocol and the layout protocol v3
// (spec.md §6). It is built directly on
// google.golang.org/protobuf/encoding/protowire's tag/varint/bytes
// primitives rather than protoc-generated message types: see
// DESIGN.md for why (no `.proto`-generated package exists to draw on in
// this pack, and hand-authoring descriptor/reflection metadata without
// running protoc would itself be fabricated generated code). Each
// message is its own small hand-written Marshal/Unmarshal pair, using
// protowire only for the field-level wire format.
package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds a single frame (spec.md §7: a malformed/oversized
// frame is a client protocol violation, not a crash).
const MaxFrameSize = 1 << 20 // 1 MiB

// WriteFrame writes a 4-byte big-endian length prefix followed by
// payload, the same framing internal/ipc/socket.go (teacher) uses over
// net.Conn.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("wire: frame of %d bytes exceeds max %d", len(payload), MaxFrameSize)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("wire: incoming frame of %d bytes exceeds max %d", n, MaxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Field numbers are assigned per message type by each message's own
// Marshal/Unmarshal; this package only provides the primitives below.

// AppendString appends a length-delimited string field.
func AppendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// AppendStrings appends one length-delimited field per element of ss,
// all under num, used for repeated-string fields such as the control
// protocol's argv vector.
func AppendStrings(b []byte, num protowire.Number, ss []string) []byte {
	for _, s := range ss {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b
}

// AppendUint32 appends a varint field, omitting it entirely when v is
// zero (proto3-style implicit presence for scalars we don't need to
// distinguish from "unset").
func AppendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// AppendInt32 appends a zig-zag-free varint-encoded signed field: v's
// 32-bit two's-complement pattern is zero-extended to uint64 (so a
// negative value takes five bytes), and decoders recover it with
// int32(uint32(varint)).
func AppendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(uint32(v)))
}

// AppendBool appends a varint bool field, omitted when false.
func AppendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

// Field is one decoded (number, type, value) triple, yielded by Range.
type Field struct {
	Number protowire.Number
	Type   protowire.Type
	// Raw holds the still-undecoded value bytes for BytesType fields, or
	// is nil for varint/fixed fields (use Varint instead).
	Raw    []byte
	Varint uint64
}

// Range decodes every top-level field of b in order, calling fn for
// each. It stops early (without error) if fn returns false, and returns
// an error if b contains malformed wire data — a layout or control
// client sending garbage is a protocol violation (spec.md §7), never a
// panic.
func Range(b []byte, fn func(Field) bool) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if !fn(Field{Number: num, Type: typ, Varint: v}) {
				return nil
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if !fn(Field{Number: num, Type: typ, Raw: v}) {
				return nil
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
