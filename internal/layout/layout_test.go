package layout

import "testing"

type fakeSender struct {
	disconnected bool
	demands      []Demand
	calls        []string
}

func (f *fakeSender) SendNamespaceInUse() error           { return nil }
func (f *fakeSender) SendLayoutDemand(d Demand) error     { f.demands = append(f.demands, d); return nil }
func (f *fakeSender) SendUserCommandTags(tags uint32) error { f.calls = append(f.calls, "tags"); return nil }
func (f *fakeSender) SendUserCommand(cmd string) error    { f.calls = append(f.calls, "cmd"); return nil }
func (f *fakeSender) Disconnect()                         { f.disconnected = true }

func TestDemandCommitHappyPath(t *testing.T) {
	s := &fakeSender{}
	b := NewBinding("rivertile", V2, s)

	if err := b.Demand(1920, 1080, 0b1, 2); err != nil {
		t.Fatal(err)
	}
	if b.State() != StateDemanding {
		t.Fatalf("state = %v, want demanding", b.State())
	}

	b.PushViewDimensions(Dimensions{X: 0, Y: 0, Width: 960, Height: 1080, Serial: 1})
	b.PushViewDimensions(Dimensions{X: 960, Y: 0, Width: 960, Height: 1080, Serial: 1})

	dims, err := b.Commit("tile", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(dims) != 2 {
		t.Fatalf("len(dims) = %d, want 2", len(dims))
	}
	if b.State() != StateIdle {
		t.Fatalf("state after commit = %v, want idle", b.State())
	}
}

func TestStaleSerialDiscarded(t *testing.T) {
	s := &fakeSender{}
	b := NewBinding("rivertile", V2, s)
	b.Demand(100, 100, 1, 1)
	b.PushViewDimensions(Dimensions{Width: 10, Height: 10, Serial: 999}) // stale
	if len(b.pendingDims) != 0 {
		t.Fatalf("stale-serial dimensions were accepted: %+v", b.pendingDims)
	}
}

func TestWrongCountErrorsOut(t *testing.T) {
	s := &fakeSender{}
	b := NewBinding("rivertile", V2, s)
	b.Demand(100, 100, 1, 4)
	b.PushViewDimensions(Dimensions{Width: 10, Height: 10, Serial: 1})
	b.PushViewDimensions(Dimensions{Width: 10, Height: 10, Serial: 1})
	b.PushViewDimensions(Dimensions{Width: 10, Height: 10, Serial: 1})

	_, err := b.Commit("tile", 1)
	if err == nil {
		t.Fatal("expected error committing with too few dimensions")
	}
	if b.State() != StateErrored {
		t.Fatalf("state = %v, want errored", b.State())
	}
	if !s.disconnected {
		t.Fatal("expected sender to be disconnected on protocol violation")
	}
}

func TestUserCommandSendsTagsFirstOnV2(t *testing.T) {
	s := &fakeSender{}
	b := NewBinding("rivertile", V2, s)
	if err := b.SendUserCommand(0b101, "cycle"); err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 2 || s.calls[0] != "tags" || s.calls[1] != "cmd" {
		t.Fatalf("calls = %v, want [tags cmd]", s.calls)
	}
}
