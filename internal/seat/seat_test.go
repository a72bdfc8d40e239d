package seat

import (
	"testing"

	"github.com/riverwm/river/internal/mode"
)

func TestLockedModeTrapDoor(t *testing.T) {
	s := New("default")
	other := mode.ID(5)

	s.Lock()
	if s.ModeID != mode.Locked {
		t.Fatalf("ModeID = %v, want Locked", s.ModeID)
	}
	if s.EnterMode(other) {
		t.Fatal("EnterMode succeeded while locked")
	}
	if s.ModeID != mode.Locked {
		t.Fatalf("ModeID changed to %v while locked", s.ModeID)
	}
	s.Unlock()
	if s.ModeID == mode.Locked {
		t.Fatal("ModeID still Locked after Unlock")
	}
}

func TestPressReleaseEdgeExactlyOnceEach(t *testing.T) {
	reg := mode.NewRegistry()
	reg.AddMapping(mode.Normal, mode.Mapping{ModMask: 1, Keysym: 42, ReleaseEdge: false, CommandTokens: []string{"press"}})

	s := New("default")
	pressAction := s.HandleKeyPress(reg, 42, 1)
	if len(pressAction.Command) != 1 || pressAction.Command[0] != "press" {
		t.Fatalf("press action = %+v", pressAction)
	}
	releaseAction := s.HandleKeyRelease(42)
	if releaseAction.Command != nil || releaseAction.Forward {
		// A press-only mapping's release is just consumed; it neither
		// fires another command nor forwards to the client, since it
		// was already marked bound at press time above.
		t.Fatalf("release action = %+v, want no command and no forward", releaseAction)
	}
}

func TestReleaseOnlyMappingSuppressesPressAndFiresOnRelease(t *testing.T) {
	reg := mode.NewRegistry()
	reg.AddMapping(mode.Normal, mode.Mapping{ModMask: 1, Keysym: 42, ReleaseEdge: true, CommandTokens: []string{"spawn", "x"}})

	s := New("default")
	pressAction := s.HandleKeyPress(reg, 42, 1)
	if pressAction.Command != nil {
		t.Fatalf("press should be suppressed, got %+v", pressAction)
	}
	if pressAction.Forward {
		t.Fatal("press should not forward when a release mapping exists")
	}

	releaseAction := s.HandleKeyRelease(42)
	if len(releaseAction.Command) != 2 || releaseAction.Command[0] != "spawn" {
		t.Fatalf("release action = %+v, want spawn command", releaseAction)
	}
}

func TestReleaseFiresInModeActiveAtPressTime(t *testing.T) {
	reg := mode.NewRegistry()
	resizeMode := reg.Add("resize")
	reg.AddMapping(mode.Normal, mode.Mapping{ModMask: 1, Keysym: 9, ReleaseEdge: true, CommandTokens: []string{"in-normal"}})
	reg.AddMapping(resizeMode, mode.Mapping{ModMask: 1, Keysym: 9, ReleaseEdge: true, CommandTokens: []string{"in-resize"}})

	s := New("default")
	s.HandleKeyPress(reg, 9, 1) // pressed while in normal mode
	s.EnterMode(resizeMode)     // mode changes before release
	release := s.HandleKeyRelease(9)
	if len(release.Command) != 1 || release.Command[0] != "in-normal" {
		t.Fatalf("release = %+v, want the mapping bound at press time (normal)", release)
	}
}

func TestUnboundKeyForwards(t *testing.T) {
	reg := mode.NewRegistry()
	s := New("default")
	action := s.HandleKeyPress(reg, 999, 0)
	if !action.Forward || action.Command != nil {
		t.Fatalf("unbound key action = %+v, want Forward", action)
	}
}
