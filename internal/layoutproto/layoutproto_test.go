package layoutproto

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/riverwm/river/internal/layout"
	"github.com/riverwm/river/internal/slotmap"
	"github.com/riverwm/river/internal/wire"
)

func TestAnnounceRoundTrip(t *testing.T) {
	raw := marshalAnnounce("rivertile", 3)
	kind, payload, err := unwrap(raw)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if kind != reqAnnounce {
		t.Fatalf("kind = %d, want %d", kind, reqAnnounce)
	}
	a, err := unmarshalAnnounce(payload)
	if err != nil {
		t.Fatalf("unmarshalAnnounce: %v", err)
	}
	if a.Namespace != "rivertile" || a.Version != 3 {
		t.Fatalf("got %+v", a)
	}
}

func TestLayoutDemandRoundTrip(t *testing.T) {
	d := layout.Demand{Serial: 7, ViewCount: 3, UsableWidth: 1920, UsableHeight: 1080, Tags: 1}
	raw := marshalLayoutDemand(d)
	kind, payload, err := unwrap(raw)
	if err != nil || kind != eventLayoutDemand {
		t.Fatalf("unwrap: kind=%d err=%v", kind, err)
	}
	var got layout.Demand
	err = wire.Range(payload, func(f wire.Field) bool {
		switch f.Number {
		case fSerial:
			got.Serial = uint32(f.Varint)
		case fViewCount:
			got.ViewCount = int(f.Varint)
		case fUsableWidth:
			got.UsableWidth = uint32(f.Varint)
		case fUsableHeight:
			got.UsableHeight = uint32(f.Varint)
		case fTags:
			got.Tags = uint32(f.Varint)
		}
		return true
	})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if got != d {
		t.Fatalf("got %+v, want %+v", got, d)
	}
}

func TestPushDimensionsRoundTripNegativeCoordinates(t *testing.T) {
	want := pushDimensionsReq{X: -5, Y: -10, Width: 640, Height: 480, Serial: 2}
	_, payload, err := unwrap(marshalPushDimensions(want))
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	got, err := unmarshalPushDimensions(payload)
	if err != nil {
		t.Fatalf("unmarshalPushDimensions: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCommitRoundTrip(t *testing.T) {
	want := commitReq{LayoutName: "main-stack", Serial: 9}
	_, payload, err := unwrap(marshalCommit(want))
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	got, err := unmarshalCommit(payload)
	if err != nil {
		t.Fatalf("unmarshalCommit: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// fakeBinder records the calls the server makes against it.
type fakeBinder struct {
	wantOutput  slotmap.Key
	hasOutput   bool
	attached    bool
	detached    bool
	pushed      []layout.Dimensions
	committed   []string
}

func (f *fakeBinder) OutputWantingNamespace(namespace string) (slotmap.Key, bool) {
	return f.wantOutput, f.hasOutput
}
func (f *fakeBinder) AttachLayout(outKey slotmap.Key, namespace string, version layout.ProtocolVersion, sender layout.Sender) error {
	f.attached = true
	return nil
}
func (f *fakeBinder) DetachLayout(outKey slotmap.Key) { f.detached = true }
func (f *fakeBinder) PushViewDimensions(outKey slotmap.Key, d layout.Dimensions) {
	f.pushed = append(f.pushed, d)
}
func (f *fakeBinder) CommitLayoutNamed(outKey slotmap.Key, layoutName string, serial uint32) {
	f.committed = append(f.committed, layoutName)
}

// inlineLoop runs fn synchronously, standing in for internal/root.Root's
// serialized dispatch loop in tests that don't exercise concurrency.
type inlineLoop struct{}

func (inlineLoop) Do(fn func()) { fn() }

func TestServeRejectsUnwantedNamespace(t *testing.T) {
	dir := t.TempDir()
	binder := &fakeBinder{hasOutput: false}
	srv, err := Listen(dir, "rivertile", binder, inlineLoop{})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()

	path := filepath.Join(dir, "rivertile.sock")
	reply := dialAndAnnounce(t, path, "rivertile", 3)
	kind, _, err := unwrap(reply)
	if err != nil {
		t.Fatalf("unwrap reply: %v", err)
	}
	if kind != eventNamespaceInUse {
		t.Fatalf("kind = %d, want namespace_in_use", kind)
	}
}

func dialAndAnnounce(t *testing.T, path, namespace string, version uint32) []byte {
	t.Helper()
	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := wire.WriteFrame(conn, marshalAnnounce(namespace, version)); err != nil {
		t.Fatalf("write announce: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	raw, err := wire.ReadFrame(bufio.NewReader(conn))
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return raw
}
