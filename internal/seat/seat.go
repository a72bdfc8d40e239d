// Package seat models one input seat: its focus target, current mode,
// keyboard group, and cursor/grab state (spec.md §3).
package seat

import (
	"time"

	"github.com/riverwm/river/internal/mode"
	"github.com/riverwm/river/internal/slotmap"
)

// FocusKind discriminates the tagged variant a Seat's focus can be.
type FocusKind int

const (
	FocusNone FocusKind = iota
	FocusView
	FocusLayer
	FocusLockSurface
)

// Focus is the seat's current input focus target: at most one of View,
// Layer, or LockSurface is meaningful, selected by Kind.
type Focus struct {
	Kind        FocusKind
	View        slotmap.Key
	Layer       slotmap.Key
	LockSurface slotmap.Key
}

// GrabKind distinguishes the pointer grabs move/resize (spec.md §4.4,
// §5) can hold.
type GrabKind int

const (
	GrabNone GrabKind = iota
	GrabMove
	GrabResize
)

// Grab is the seat's active pointer grab, if any. Entering move/resize
// mode acquires a Grab; every exit path (button-up, view-destroy, mode-
// change, seat-lost-focus) must release it (spec.md §5).
type Grab struct {
	Kind   GrabKind
	Target slotmap.Key // the view being moved/resized
	// StartX/StartY is the pointer position the grab began at, used to
	// compute pointer-motion deltas against the target's pending box.
	StartX, StartY float64
}

// pendingKeyBind records a key that was bound at press time, so that
// its eventual release edge fires in the mode that was active at press
// time even if the active mode has since changed (spec.md §4.4), and so
// that "-release" mappings can suppress the press forward (the key
// never reaches the focused surface).
type pendingKeyBind struct {
	mapping     mode.Mapping
	pressModeID mode.ID
	releaseOnly bool // mapping is a -release mapping: it fires on release
}

// Seat is one input seat's compositor-side state.
type Seat struct {
	Name string

	Focused       Focus
	FocusedOutput slotmap.Key
	HasFocusedOutput bool

	ModeID     mode.ID
	PrevModeID mode.ID

	// Locked is forced true for the duration of a session lock; while
	// true, ModeID is pinned to mode.Locked and no command may change
	// it (spec.md §4.4 "Locked mode is trap-door").
	Locked bool

	ModMask mode.ModMask

	ActiveGrab Grab

	// pressed tracks, per physical key, the mapping (if any) that was
	// bound when the key went down, so release can resolve correctly
	// even across mode changes or forwarded keys.
	pressed map[mode.Keysym]pendingKeyBind

	// Cursor hide-timer state (spec.md §5).
	CursorHideTimer   *time.Timer
	HideWhenTyping    bool
	CursorHidden      bool
}

// New returns a Seat in "normal" mode with no focus.
func New(name string) *Seat {
	return &Seat{
		Name:    name,
		ModeID:  mode.Normal,
		pressed: make(map[mode.Keysym]pendingKeyBind),
	}
}

// EnterMode transitions to id, remembering the previous mode so a
// transient mode can be left later. Fails (returns false, no
// transition) if the seat is Locked and id != mode.Locked, per spec.md
// §4.4.
func (s *Seat) EnterMode(id mode.ID) bool {
	if s.Locked && id != mode.Locked {
		return false
	}
	if id == s.ModeID {
		return true
	}
	s.PrevModeID = s.ModeID
	s.ModeID = id
	return true
}

// Lock forces the seat into Locked mode for the duration of a session
// lock.
func (s *Seat) Lock() {
	if s.Locked {
		return
	}
	s.Locked = true
	s.PrevModeID = s.ModeID
	s.ModeID = mode.Locked
}

// Unlock restores the mode that was active before Lock was called.
func (s *Seat) Unlock() {
	if !s.Locked {
		return
	}
	s.Locked = false
	s.ModeID = s.PrevModeID
}

// KeyAction is the result of resolving a physical key event: either a
// mapping fired (Command non-nil) or the key should be forwarded to the
// focused surface (Forward true).
type KeyAction struct {
	Command []string
	Forward bool
}

// HandleKeyPress resolves a press of sym under modMask against reg's
// mappings for the seat's current mode. If a press-edge mapping
// matches, it fires immediately; if a release-edge mapping exists for
// the same (modMask, sym), it is recorded so that it fires when the key
// is released. A bound key is never forwarded. If neither exists, the
// key is forwarded.
func (s *Seat) HandleKeyPress(reg *mode.Registry, sym mode.Keysym, modMask mode.ModMask) KeyAction {
	press := reg.FindKeyMapping(s.ModeID, modMask, sym, false)
	release := reg.FindKeyMapping(s.ModeID, modMask, sym, true)

	switch {
	case press != nil:
		bind := pendingKeyBind{mapping: *press, pressModeID: s.ModeID}
		if release != nil {
			bind = pendingKeyBind{mapping: *release, pressModeID: s.ModeID, releaseOnly: true}
		}
		s.pressed[sym] = bind
		return KeyAction{Command: press.CommandTokens}
	case release != nil:
		s.pressed[sym] = pendingKeyBind{mapping: *release, pressModeID: s.ModeID, releaseOnly: true}
		return KeyAction{} // suppressed: no command yet, no forward
	default:
		return KeyAction{Forward: true}
	}
}

// HandleKeyRelease resolves a release of sym. If sym was bound at
// press time (via HandleKeyPress) to a release-edge mapping, fires that
// mapping's command now, in the mode that was active at press time
// (spec.md §4.4). A key bound only to a press-edge mapping yields an
// empty action (no command, no forward); a key that was not bound at
// press time is forwarded.
func (s *Seat) HandleKeyRelease(sym mode.Keysym) KeyAction {
	bind, ok := s.pressed[sym]
	if !ok {
		return KeyAction{Forward: true}
	}
	delete(s.pressed, sym)
	if bind.releaseOnly {
		return KeyAction{Command: bind.mapping.CommandTokens}
	}
	return KeyAction{}
}

// ReleaseGrab clears the seat's active pointer grab. Safe to call when
// no grab is held.
func (s *Seat) ReleaseGrab() {
	s.ActiveGrab = Grab{}
}

// SetFocusView sets the seat's focus to a view.
func (s *Seat) SetFocusView(k slotmap.Key) {
	s.Focused = Focus{Kind: FocusView, View: k}
}

// SetFocusLayer sets the seat's focus to a layer-shell surface.
func (s *Seat) SetFocusLayer(k slotmap.Key) {
	s.Focused = Focus{Kind: FocusLayer, Layer: k}
}

// ClearFocus drops the seat's focus entirely.
func (s *Seat) ClearFocus() {
	s.Focused = Focus{}
}
