// Package view models one mapped toplevel surface and its pending /
// inflight / current geometry staging, per spec.md §3.
package view

import "github.com/riverwm/river/internal/slotmap"

// Box is an output-local rectangle.
type Box struct {
	X, Y          int32
	Width, Height uint32
}

// Kind discriminates the two toplevel protocols River mediates, per
// spec.md §9: "tagged variant View::Kind, no inheritance, no vtables
// beyond one sum-type discriminant".
type Kind int

const (
	KindXDG Kind = iota
	KindXwayland
)

// State is the mutable, stageable attribute set of a View: geometry,
// tags, and the float/fullscreen/ssd/opacity flags. Every View keeps
// three independent copies: Pending (accumulates command mutations),
// Inflight (captured at transaction start, the copy a configure ack
// promotes), and Current (what is actually presented).
type State struct {
	Box          Box
	FloatBox     Box
	Tags         uint32
	Float        bool
	Fullscreen   bool
	SSD          bool
	DrawBorders  bool
	Opacity      float32 // spec.md §9 "focused-view-opacity": optional, best-effort
	PendingDelta Delta   // accumulated move/snap/resize delta, applied at arrange time
}

// Delta is an in-flight geometry adjustment requested by move/snap/
// resize (spec.md §4.5), consumed and zeroed the next time the owning
// output arranges.
type Delta struct {
	X, Y          int32
	Width, Height int32
	Snap          bool // sentinel: clamp to output edge on apply
}

// Capability is the subset of toplevel operations that differ between
// KindXDG and KindXwayland (spec.md §9). The out-of-scope xdg-shell /
// xwayland backends implement this per mapped surface.
type Capability interface {
	Configure(box Box, activated, resizing bool) (serial uint32)
	Close()
	SetActivated(bool)
	SetFullscreen(bool)
	SetResizing(bool)
	ForEachSurface(func(localX, localY int32))
}

// View is one mapped toplevel surface.
type View struct {
	ID string // stable string id, assigned on map, used by focus-view-by-id

	Kind Kind
	Caps Capability

	AppID string
	Title string

	Pending  State
	Inflight State
	Current  State

	Destroying bool

	// Configure-serial tracking for the transaction engine (spec.md
	// §4.7): the serial sent with the most recent configure for this
	// view's current transaction, and whether the client has acked it.
	ConfigureSerial uint32
	Acked           bool

	NaturalWidth, NaturalHeight uint32 // client-supplied natural size, used as the floating default

	outputKey slotmap.Key // non-owning; the view's single owning output
	hasOutput bool
}

// New creates a View in its initial (unmapped, tiled, non-fullscreen)
// state.
func New(id string, kind Kind, caps Capability, appID, title string, naturalW, naturalH uint32) *View {
	v := &View{
		ID:           id,
		Kind:         kind,
		Caps:         caps,
		AppID:        appID,
		Title:        title,
		NaturalWidth: naturalW,
		NaturalHeight: naturalH,
	}
	v.Pending.DrawBorders = true
	v.Current.DrawBorders = true
	v.Inflight.DrawBorders = true
	return v
}

// SetOutput records v's exclusive owning output. Passing the zero Key
// with owned=false clears ownership (the view is unmapped or in
// transit, spec.md §3 Association).
func (v *View) SetOutput(k slotmap.Key, owned bool) {
	v.outputKey = k
	v.hasOutput = owned
}

// Output returns v's owning output key and whether it currently has
// one.
func (v *View) Output() (slotmap.Key, bool) {
	return v.outputKey, v.hasOutput
}

// ClampFullscreenFloat enforces the invariant that a fullscreened view
// is never reported to the layout client as floating: fullscreen
// supersedes float (spec.md §3 Invariant).
func ClampFullscreenFloat(s *State) {
	if s.Fullscreen {
		s.Float = false
	}
}

// EffectiveFloat reports whether s should be treated as floating by
// arrangement: floating and not fullscreen.
func EffectiveFloat(s State) bool {
	return s.Float && !s.Fullscreen
}

// CenterBox returns a box of the given size centered within bounds,
// used to place newly floating views at their natural size (spec.md
// §4.6).
func CenterBox(bounds Box, width, height uint32) Box {
	x := bounds.X + (int32(bounds.Width)-int32(width))/2
	y := bounds.Y + (int32(bounds.Height)-int32(height))/2
	return Box{X: x, Y: y, Width: width, Height: height}
}

// ApplyDelta mutates box by d, returning the result. Snap deltas are
// clamped to bounds' edges; resize deltas are split evenly across both
// axes to keep the center stable (spec.md §4.5).
func ApplyDelta(box, bounds Box, d Delta) Box {
	if d.Snap {
		return snapToEdge(box, bounds, d)
	}
	out := box
	out.X += d.X
	out.Y += d.Y
	if d.Width != 0 {
		half := d.Width / 2
		out.X -= int32(half)
		out.Width = clampDim(int32(out.Width) + d.Width)
	}
	if d.Height != 0 {
		half := d.Height / 2
		out.Y -= int32(half)
		out.Height = clampDim(int32(out.Height) + d.Height)
	}
	return out
}

func clampDim(v int32) uint32 {
	if v < 1 {
		return 1
	}
	return uint32(v)
}

// snapToEdge interprets d.X/d.Y as a signed direction (negative: left/
// up edge, positive: right/down edge, zero: unchanged on that axis) and
// moves box flush against the corresponding edge of bounds.
func snapToEdge(box, bounds Box, d Delta) Box {
	out := box
	switch {
	case d.X < 0:
		out.X = bounds.X
	case d.X > 0:
		out.X = bounds.X + int32(bounds.Width) - int32(out.Width)
	}
	switch {
	case d.Y < 0:
		out.Y = bounds.Y
	case d.Y > 0:
		out.Y = bounds.Y + int32(bounds.Height) - int32(out.Height)
	}
	return out
}

// Geometry helpers used by focus/swap spatial direction resolution
// (spec.md §4.5).

// Center returns the center point of b.
func Center(b Box) (x, y float64) {
	return float64(b.X) + float64(b.Width)/2, float64(b.Y) + float64(b.Height)/2
}
