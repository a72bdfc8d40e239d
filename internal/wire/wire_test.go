package wire

import (
	"bufio"
	"bytes"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello frame")
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestOversizedFrameRejected(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, MaxFrameSize+1)); err == nil {
		t.Fatal("expected WriteFrame to reject an oversized payload")
	}
}

func TestAppendAndRangeFields(t *testing.T) {
	var b []byte
	b = AppendString(b, 1, "foot")
	b = AppendUint32(b, 2, 42)
	b = AppendStrings(b, 3, []string{"spawn", "alacritty"})
	b = AppendBool(b, 4, true)

	var gotString string
	var gotUint uint32
	var gotStrings []string
	var gotBool bool

	err := Range(b, func(f Field) bool {
		switch f.Number {
		case 1:
			gotString = string(f.Raw)
		case 2:
			gotUint = uint32(f.Varint)
		case 3:
			gotStrings = append(gotStrings, string(f.Raw))
		case 4:
			gotBool = f.Varint == 1
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotString != "foot" {
		t.Errorf("gotString = %q", gotString)
	}
	if gotUint != 42 {
		t.Errorf("gotUint = %d", gotUint)
	}
	if len(gotStrings) != 2 || gotStrings[0] != "spawn" || gotStrings[1] != "alacritty" {
		t.Errorf("gotStrings = %v", gotStrings)
	}
	if !gotBool {
		t.Error("gotBool = false, want true")
	}
}

func TestRangeMalformedDataErrors(t *testing.T) {
	// A lone continuation-bit varint byte with no terminator is
	// malformed; Range must report an error, not panic.
	garbage := []byte{0x08, 0xff}
	err := Range(garbage, func(Field) bool { return true })
	if err == nil {
		t.Fatal("expected an error decoding malformed wire data")
	}
}

func TestZeroValueFieldsOmitted(t *testing.T) {
	var b []byte
	b = AppendUint32(b, 1, 0)
	b = AppendBool(b, 2, false)
	b = AppendString(b, 3, "")
	if len(b) != 0 {
		t.Fatalf("expected zero-value fields to be omitted, got %d bytes", len(b))
	}
	_ = protowire.Number(0)
}
