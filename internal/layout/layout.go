// Package layout implements the per-output layout-client binding and its
// protocol state machine (spec.md §4.6): idle -> demanding on Demand,
// demanding -> idle on a successful Commit, and errored on a protocol
// violation or disconnect. StateAwaitingAcks is defined but no
// transition enters it.
package layout

import (
	"fmt"

	"github.com/riverwm/river/internal/view"
)

// State is the layout binding's protocol state.
type State int

const (
	StateIdle State = iota
	StateDemanding
	StateAwaitingAcks
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDemanding:
		return "demanding"
	case StateAwaitingAcks:
		return "awaiting_acks"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Demand is the layout_demand message sent to the client (spec.md §6).
type Demand struct {
	Serial       uint32
	ViewCount    int
	UsableWidth  uint32
	UsableHeight uint32
	Tags         uint32
}

// Dimensions is one push_view_dimensions request from the client.
type Dimensions struct {
	X, Y          int32
	Width, Height uint32
	Serial        uint32
}

// ProtocolVersion selects whether user_command_tags is sent before
// user_command (v2+, spec.md §4.6).
type ProtocolVersion int

const (
	V1 ProtocolVersion = 1
	V2 ProtocolVersion = 2
	V3 ProtocolVersion = 3
)

// Sender abstracts sending protocol messages to the bound layout client,
// implemented by internal/layoutproto's connection type.
type Sender interface {
	SendNamespaceInUse() error
	SendLayoutDemand(Demand) error
	SendUserCommandTags(tags uint32) error
	SendUserCommand(cmd string) error
	Disconnect()
}

// Binding is exactly one layout client bound to one output (spec.md §3,
// §4.6). It is owned exclusively by its output; destruction is
// immediate on client disconnect (spec.md §5).
type Binding struct {
	Namespace string
	Version   ProtocolVersion
	Sender    Sender

	state        State
	demandSerial uint32
	pendingDims  []Dimensions
	wantCount    int

	// LastCommittedName is the layout name passed to the last successful
	// Commit. Only the name is kept, not the committed dimensions.
	LastCommittedName string
}

// NewBinding binds namespace/version/sender to an output.
func NewBinding(namespace string, version ProtocolVersion, sender Sender) *Binding {
	return &Binding{Namespace: namespace, Version: version, Sender: sender, state: StateIdle}
}

// State reports the binding's current protocol state.
func (b *Binding) State() State { return b.state }

// Demand transitions idle -> demanding, sending a layout_demand carrying
// a fresh serial. wantCount is the number of tiled views the client must
// push dimensions for before committing.
func (b *Binding) Demand(usableW, usableH uint32, tags uint32, wantCount int) error {
	if b.state != StateIdle && b.state != StateErrored {
		return fmt.Errorf("layout: demand called while in state %s", b.state)
	}
	b.demandSerial++
	b.pendingDims = b.pendingDims[:0]
	b.wantCount = wantCount
	b.state = StateDemanding
	return b.Sender.SendLayoutDemand(Demand{
		Serial:       b.demandSerial,
		ViewCount:    wantCount,
		UsableWidth:  usableW,
		UsableHeight: usableH,
		Tags:         tags,
	})
}

// PushViewDimensions records one push_view_dimensions request. Dimensions
// are accepted only if serial matches the current demand; stale serials
// are discarded (spec.md §4.6).
func (b *Binding) PushViewDimensions(d Dimensions) {
	if b.state != StateDemanding {
		return
	}
	if d.Serial != b.demandSerial {
		return // stale serial, discard
	}
	b.pendingDims = append(b.pendingDims, d)
}

// Commit finalizes a demand: the client must have pushed exactly
// wantCount dimensions with the current serial before calling commit.
// An invalid count or serial mismatch errors the binding out (spec.md
// §4.6 "demanding -> errored ... invalid count").
func (b *Binding) Commit(layoutName string, serial uint32) ([]Dimensions, error) {
	if b.state != StateDemanding {
		return nil, fmt.Errorf("layout: commit called while in state %s", b.state)
	}
	if serial != b.demandSerial {
		b.Error()
		return nil, fmt.Errorf("layout: commit with stale serial %d (current %d)", serial, b.demandSerial)
	}
	if len(b.pendingDims) != b.wantCount {
		b.Error()
		return nil, fmt.Errorf("layout: commit with %d dimensions, want %d", len(b.pendingDims), b.wantCount)
	}
	b.state = StateIdle
	b.LastCommittedName = layoutName
	dims := b.pendingDims
	b.pendingDims = nil
	return dims, nil
}

// Error transitions the binding to errored: client disconnect, protocol
// violation, or namespace_in_use (spec.md §4.6). The caller is
// responsible for falling back to stacking tiles into the usable box
// and logging.
func (b *Binding) Error() {
	b.state = StateErrored
	b.Sender.Disconnect()
}

// SendUserCommand forwards a send-layout-cmd payload verbatim to the
// bound client, sending user_command_tags first for V2+ clients (spec.md
// §4.6).
func (b *Binding) SendUserCommand(tags uint32, cmd string) error {
	if b.Version >= V2 {
		if err := b.Sender.SendUserCommandTags(tags); err != nil {
			return err
		}
	}
	return b.Sender.SendUserCommand(cmd)
}

// FallbackStack computes the no-layout fallback arrangement: all tiled
// views stacked to fill usable, each at full size (spec.md §4.6, §8
// scenario 6).
func FallbackStack(usable view.Box, count int) []view.Box {
	boxes := make([]view.Box, count)
	for i := range boxes {
		boxes[i] = usable
	}
	return boxes
}
