// Package output models one physical or headless monitor: its tag
// state, view stacks, usable area, and layout-client binding, per
// spec.md §3.
package output

import (
	"github.com/riverwm/river/internal/slotmap"
	"github.com/riverwm/river/internal/view"
)

// Box is an output-local rectangle; re-exported shape matches view.Box
// so conversions at call sites are trivial casts.
type Box = view.Box

// Direction enumerates the spatial directions up, down, left and right
// (spec.md §4.5). No other package refers to it.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Output is one monitor's state. Root owns Outputs by value in a stable
// container (spec.md §9); this struct never copies by value once
// inserted, so all access goes through Root's slot map.
type Output struct {
	Name string

	UsableBox Box

	PendingTags  uint32
	CurrentTags  uint32
	PreviousTags uint32

	SpawnTagMask uint32

	LayoutNamespace       string // preferred layout client namespace for this output
	AlternateNamespaces   []string
	HasLayoutBinding      bool // true once a layout client is actively bound

	// WMStack is focus-order, used by swap/zoom/focus-view traversal.
	// RenderStack is paint order: floats above tiles.
	WMStack     []slotmap.Key
	RenderStack []slotmap.Key

	// NoOp marks the permanent sentinel output that orphan views attach
	// to; its tag/layout state is ignored by arrangement (spec.md §5).
	NoOp bool
}

// New returns an Output with tag 1 selected and no layout binding, the
// state a freshly-discovered monitor starts in.
func New(name string) *Output {
	return &Output{
		Name:         name,
		PendingTags:  1,
		CurrentTags:  1,
		PreviousTags: 1,
	}
}

// NewNoOp returns the permanent no-op sentinel output.
func NewNoOp() *Output {
	o := New("noop")
	o.NoOp = true
	return o
}

// Visible reports whether tags is visible on an output whose tag mask
// is outputTags: at least one bit in common (spec.md GLOSSARY Tag).
func Visible(viewTags, outputTags uint32) bool {
	return viewTags&outputTags != 0
}

// removeFromSlice deletes the first occurrence of k from s, preserving
// order, and returns the result.
func removeFromSlice(s []slotmap.Key, k slotmap.Key) []slotmap.Key {
	for i, e := range s {
		if e == k {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// RemoveView unlinks k from both stacks (spec.md §4.5 send-to-output,
// view destroy).
func (o *Output) RemoveView(k slotmap.Key) {
	o.WMStack = removeFromSlice(o.WMStack, k)
	o.RenderStack = removeFromSlice(o.RenderStack, k)
}

// PushView adds a newly-mapped view to the front of both stacks (most
// recently mapped views focus first).
func (o *Output) PushView(k slotmap.Key) {
	o.WMStack = append([]slotmap.Key{k}, o.WMStack...)
	o.RenderStack = append([]slotmap.Key{k}, o.RenderStack...)
}

// IndexInWMStack returns the position of k in WMStack, or -1.
func (o *Output) IndexInWMStack(k slotmap.Key) int {
	for i, e := range o.WMStack {
		if e == k {
			return i
		}
	}
	return -1
}

// SwapWM exchanges the positions of a and b in WMStack.
func (o *Output) SwapWM(a, b slotmap.Key) {
	ia, ib := o.IndexInWMStack(a), o.IndexInWMStack(b)
	if ia < 0 || ib < 0 {
		return
	}
	o.WMStack[ia], o.WMStack[ib] = o.WMStack[ib], o.WMStack[ia]
}

// PromoteToFront moves k to the front of WMStack (used by zoom).
func (o *Output) PromoteToFront(k slotmap.Key) {
	i := o.IndexInWMStack(k)
	if i <= 0 {
		return
	}
	o.WMStack = append(append([]slotmap.Key{}, o.WMStack[i]), append(o.WMStack[:i], o.WMStack[i+1:]...)...)
}

// FocusPreviousTags swaps Pending and Previous, per spec.md §4.5.
func (o *Output) FocusPreviousTags() {
	o.PendingTags, o.PreviousTags = o.PreviousTags, o.PendingTags
}

// SetPendingTags sets o.PendingTags, remembering the old value as
// PreviousTags, as long as mask is nonzero (spec.md §8 "tag zero
// forbidden"). Returns false (no-op) if mask is zero.
func (o *Output) SetPendingTags(mask uint32) bool {
	if mask == 0 {
		return false
	}
	if mask != o.PendingTags {
		o.PreviousTags = o.PendingTags
	}
	o.PendingTags = mask
	return true
}

// ToggleTags XORs mask into PendingTags, refusing (no-op) if the result
// would be zero (spec.md §8).
func (o *Output) ToggleTags(mask uint32) bool {
	next := o.PendingTags ^ mask
	if next == 0 {
		return false
	}
	o.PreviousTags = o.PendingTags
	o.PendingTags = next
	return true
}
