package output

import (
	"testing"

	"github.com/riverwm/river/internal/slotmap"
)

func keys(n int) []slotmap.Key {
	m := slotmap.New[int]()
	out := make([]slotmap.Key, n)
	for i := 0; i < n; i++ {
		out[i] = m.Put(i)
	}
	return out
}

func TestNewDefaultsToTagOne(t *testing.T) {
	o := New("DP-1")
	if o.PendingTags != 1 || o.CurrentTags != 1 || o.PreviousTags != 1 {
		t.Fatalf("got %+v", o)
	}
}

func TestNewNoOpIsMarked(t *testing.T) {
	o := NewNoOp()
	if !o.NoOp {
		t.Fatal("expected NoOp output to be marked")
	}
}

func TestVisible(t *testing.T) {
	if !Visible(0b0001, 0b0011) {
		t.Fatal("expected overlapping tag bits to be visible")
	}
	if Visible(0b0100, 0b0011) {
		t.Fatal("expected disjoint tag bits to be invisible")
	}
}

func TestPushAndRemoveView(t *testing.T) {
	ks := keys(2)
	o := New("DP-1")
	o.PushView(ks[0])
	o.PushView(ks[1])
	if o.WMStack[0] != ks[1] || o.WMStack[1] != ks[0] {
		t.Fatalf("expected most-recently-pushed view first, got %v", o.WMStack)
	}
	o.RemoveView(ks[1])
	if len(o.WMStack) != 1 || o.WMStack[0] != ks[0] {
		t.Fatalf("got %v", o.WMStack)
	}
}

func TestSwapWM(t *testing.T) {
	ks := keys(2)
	o := New("DP-1")
	o.PushView(ks[0])
	o.PushView(ks[1])
	o.SwapWM(ks[0], ks[1])
	if o.WMStack[0] != ks[0] || o.WMStack[1] != ks[1] {
		t.Fatalf("got %v", o.WMStack)
	}
}

func TestPromoteToFront(t *testing.T) {
	ks := keys(3)
	o := New("DP-1")
	o.WMStack = []slotmap.Key{ks[0], ks[1], ks[2]}
	o.PromoteToFront(ks[2])
	if o.WMStack[0] != ks[2] {
		t.Fatalf("got %v", o.WMStack)
	}
	if len(o.WMStack) != 3 {
		t.Fatalf("promote must not drop entries, got %v", o.WMStack)
	}
}

func TestFocusPreviousTagsSwaps(t *testing.T) {
	o := New("DP-1")
	o.PendingTags = 4
	o.PreviousTags = 1
	o.FocusPreviousTags()
	if o.PendingTags != 1 || o.PreviousTags != 4 {
		t.Fatalf("got %+v", o)
	}
}

func TestSetPendingTagsRejectsZero(t *testing.T) {
	o := New("DP-1")
	if o.SetPendingTags(0) {
		t.Fatal("expected zero tagmask to be rejected")
	}
	if o.PendingTags != 1 {
		t.Fatalf("pending tags should be unchanged, got %d", o.PendingTags)
	}
}

func TestSetPendingTagsRecordsPrevious(t *testing.T) {
	o := New("DP-1")
	if !o.SetPendingTags(4) {
		t.Fatal("expected nonzero tagmask to be accepted")
	}
	if o.PendingTags != 4 || o.PreviousTags != 1 {
		t.Fatalf("got %+v", o)
	}
}

func TestToggleTagsRejectsResultingZero(t *testing.T) {
	o := New("DP-1")
	o.PendingTags = 1
	if o.ToggleTags(1) {
		t.Fatal("expected toggle that would zero the mask to be rejected")
	}
	if o.PendingTags != 1 {
		t.Fatalf("got %d", o.PendingTags)
	}
}

func TestToggleTagsXors(t *testing.T) {
	o := New("DP-1")
	o.PendingTags = 0b0011
	if !o.ToggleTags(0b0001) {
		t.Fatal("expected toggle to succeed")
	}
	if o.PendingTags != 0b0010 {
		t.Fatalf("got %b", o.PendingTags)
	}
}
