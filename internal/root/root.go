// Package root implements Root, the top-level owner tying together
// every subsystem (spec.md §2, §3): outputs, views, seats, the mode
// registry, rules, input configuration, and the pending -> current
// apply cycle that drives the transaction engine. Root is the
// concrete implementation of internal/command.Runtime.
package root

import (
	"fmt"
	"strconv"
	"time"

	"github.com/riverwm/river/internal/command"
	"github.com/riverwm/river/internal/inputconfig"
	"github.com/riverwm/river/internal/layout"
	"github.com/riverwm/river/internal/logger"
	"github.com/riverwm/river/internal/mode"
	"github.com/riverwm/river/internal/output"
	"github.com/riverwm/river/internal/rule"
	"github.com/riverwm/river/internal/seat"
	"github.com/riverwm/river/internal/slotmap"
	"github.com/riverwm/river/internal/transaction"
	"github.com/riverwm/river/internal/view"
)

// RuleAction is the value a window rule carries: an action name plus
// its arguments, applied to a view at map time (spec.md §4.3, §4.5).
type RuleAction struct {
	Action string
	Args   []string
}

// Option is a single declared global or output-scoped option (spec.md
// §4.5 declare-option/set-option/...).
type Option struct {
	Type  string // "int" | "uint" | "fixed" | "string"
	Value string
}

// Root owns every output, view, and seat river tracks, plus the
// policy tables (rules, input config, modes) commands mutate.
type Root struct {
	outputs *slotmap.Map[*output.Output]
	views   *slotmap.Map[*view.View]

	viewsByID map[string]slotmap.Key

	seats map[string]*seat.Seat

	Modes *mode.Registry

	rules  *rule.List[RuleAction]
	inputs *inputconfig.Table

	options map[string]*Option

	devices []inputDeviceRef

	noopOutput slotmap.Key

	// transactions holds at most one in-flight transaction per output.
	transactions map[slotmap.Key]*transaction.Transaction

	// bindings holds the active layout binding for each output that has
	// one (spec.md §3 "each layout binding is exclusively owned by its
	// output"), keyed by output key. Populated by internal/layoutproto
	// via AttachLayout.
	bindings map[slotmap.Key]*layout.Binding

	transactionTimeoutMS int

	// jobs serializes every call that reaches Root through Do, so the
	// per-connection goroutines in internal/control and
	// internal/layoutproto never touch Root's state directly (spec.md
	// §5). Unbuffered: Do blocks the submitting goroutine until Run has
	// picked the job up and finished it.
	jobs chan func()
}

type inputDeviceRef struct {
	identifier string
	device     inputconfig.Device
}

// New returns a Root with the permanent no-op output registered and
// the reserved "normal"/"locked" modes pre-registered (spec.md §3, §4.4).
func New(transactionTimeoutMS int) *Root {
	r := &Root{
		outputs:              slotmap.New[*output.Output](),
		views:                slotmap.New[*view.View](),
		viewsByID:             make(map[string]slotmap.Key),
		seats:                 make(map[string]*seat.Seat),
		Modes:                 mode.NewRegistry(),
		rules:                 rule.NewList[RuleAction](),
		inputs:                inputconfig.NewTable(),
		options:               make(map[string]*Option),
		transactions:          make(map[slotmap.Key]*transaction.Transaction),
		bindings:              make(map[slotmap.Key]*layout.Binding),
		transactionTimeoutMS:  transactionTimeoutMS,
		jobs:                  make(chan func()),
	}
	r.noopOutput = r.outputs.Put(output.NewNoOp())
	return r
}

// AddOutput registers a newly-discovered monitor and returns its key.
func (r *Root) AddOutput(o *output.Output) slotmap.Key {
	return r.outputs.Put(o)
}

// RemoveOutput destroys an output, reassigning every view it owned to
// the no-op sentinel so they are never silently dropped (spec.md §3
// Association, §5).
func (r *Root) RemoveOutput(k slotmap.Key) {
	o, ok := r.outputs.Get(k)
	if !ok || o.NoOp {
		return
	}
	noop, _ := r.outputs.Get(r.noopOutput)
	for _, vk := range append([]slotmap.Key{}, o.WMStack...) {
		noop.PushView(vk)
		if v := r.views.GetPtr(vk); v != nil {
			v.SetOutput(r.noopOutput, true)
		}
	}
	r.outputs.Remove(k)
	delete(r.transactions, k)
	delete(r.bindings, k)
}

// OutputWantingNamespace returns the key of an unbound, non-no-op output
// whose preferred namespace (or one of its alternates) matches namespace,
// used by internal/layoutproto to pick which output a connecting layout
// client should be attached to (spec.md §4.6 "selected from a pool of
// registered namespaces").
func (r *Root) OutputWantingNamespace(namespace string) (slotmap.Key, bool) {
	var found slotmap.Key
	ok := false
	r.outputs.Each(func(k slotmap.Key, o *output.Output) {
		if ok || o.NoOp || o.HasLayoutBinding {
			return
		}
		if o.LayoutNamespace == namespace {
			found, ok = k, true
			return
		}
		for _, alt := range o.AlternateNamespaces {
			if alt == namespace {
				found, ok = k, true
				return
			}
		}
	})
	return found, ok
}

// AttachLayout binds a newly-connected layout client to outKey, sending
// an immediate demand if the output already has tiled views waiting
// (spec.md §4.6 "idle -> demanding on applyPending() ... when the output
// has tiled views").
func (r *Root) AttachLayout(outKey slotmap.Key, namespace string, version layout.ProtocolVersion, sender layout.Sender) error {
	o, ok := r.outputs.Get(outKey)
	if !ok {
		return fmt.Errorf("root: AttachLayout: output does not exist")
	}
	b := layout.NewBinding(namespace, version, sender)
	r.bindings[outKey] = b
	o.HasLayoutBinding = true
	r.arrange(outKey)
	return nil
}

// DetachLayout is called by internal/layoutproto when a bound layout
// client disconnects or is destroyed: the binding errors out and the
// output falls back to stacking (spec.md §4.6 "demanding -> errored ...
// falls back to stacking all tiles").
func (r *Root) DetachLayout(outKey slotmap.Key) {
	o, ok := r.outputs.Get(outKey)
	if !ok {
		return
	}
	delete(r.bindings, outKey)
	o.HasLayoutBinding = false
	r.FallbackArrange(outKey)
}

// PushViewDimensions and CommitLayoutNamed below are called by internal/layoutproto
// as it decodes requests from the bound layout client for outKey.

func (r *Root) PushViewDimensions(outKey slotmap.Key, d layout.Dimensions) {
	if b, ok := r.bindings[outKey]; ok {
		b.PushViewDimensions(d)
	}
}

func (r *Root) CommitLayoutNamed(outKey slotmap.Key, layoutName string, serial uint32) {
	b, ok := r.bindings[outKey]
	if !ok {
		return
	}
	dims, err := b.Commit(layoutName, serial)
	if err != nil {
		logger.Warnf("output: layout commit rejected: %v", err)
		r.FallbackArrange(outKey)
		return
	}
	r.CommitLayout(outKey, dims)
}

// AddDevice registers a hotplugged input device and immediately applies
// the first matching input-configuration row to it (spec.md §4.8).
func (r *Root) AddDevice(identifier string, dev inputconfig.Device) {
	r.devices = append(r.devices, inputDeviceRef{identifier: identifier, device: dev})
	r.inputs.ApplyTo(dev)
}

// RemoveDevice drops a disconnected input device from the registry.
func (r *Root) RemoveDevice(identifier string) {
	for i, d := range r.devices {
		if d.identifier == identifier {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return
		}
	}
}

// AddSeat registers a new seat.
func (r *Root) AddSeat(name string) *seat.Seat {
	s := seat.New(name)
	r.seats[name] = s
	return s
}

func (r *Root) seat(name string) (*seat.Seat, error) {
	s, ok := r.seats[name]
	if !ok {
		return nil, command.ErrOther("unknown seat %q", name)
	}
	return s, nil
}

func (r *Root) focusedOutput(s *seat.Seat) (slotmap.Key, *output.Output, error) {
	if !s.HasFocusedOutput {
		return slotmap.Key{}, nil, command.ErrOther("seat %q has no focused output", s.Name)
	}
	o, ok := r.outputs.Get(s.FocusedOutput)
	if !ok {
		return slotmap.Key{}, nil, command.ErrOther("seat %q's focused output no longer exists", s.Name)
	}
	return s.FocusedOutput, o, nil
}

func (r *Root) focusedView(s *seat.Seat) (slotmap.Key, *view.View, error) {
	if s.Focused.Kind != seat.FocusView {
		return slotmap.Key{}, nil, command.ErrOther("seat %q has no focused view", s.Name)
	}
	v := r.views.GetPtr(s.Focused.View)
	if v == nil {
		return slotmap.Key{}, nil, command.ErrOther("seat %q's focused view no longer exists", s.Name)
	}
	return s.Focused.View, v, nil
}

// MapView creates a new View owned by the given output, applies any
// matching rule, and pushes it onto the output's stacks (spec.md §4.3
// "evaluated at view map time").
func (r *Root) MapView(outKey slotmap.Key, v *view.View) (slotmap.Key, error) {
	o, ok := r.outputs.Get(outKey)
	if !ok {
		return slotmap.Key{}, fmt.Errorf("root: MapView: output does not exist")
	}
	if action, ok := r.rules.Match(v.AppID, v.Title); ok {
		applyRuleAction(v, action)
	}
	if v.Pending.Tags == 0 {
		v.Pending.Tags = o.PendingTags
	}
	if view.EffectiveFloat(v.Pending) {
		v.Pending.FloatBox = view.CenterBox(o.UsableBox, v.NaturalWidth, v.NaturalHeight)
	}
	k := r.views.Put(v)
	r.viewsByID[v.ID] = k
	v.SetOutput(outKey, true)
	o.PushView(k)
	r.arrange(outKey)
	return k, nil
}

// applyRuleAction mutates a freshly-mapped view's pending state per a
// matched rule (spec.md §4.5 rule-add's action vocabulary).
func applyRuleAction(v *view.View, a RuleAction) {
	switch a.Action {
	case "float":
		v.Pending.Float = true
	case "no-float":
		v.Pending.Float = false
	case "ssd":
		v.Pending.SSD = true
	case "csd":
		v.Pending.SSD = false
	case "fullscreen":
		v.Pending.Fullscreen = true
	case "no-fullscreen":
		v.Pending.Fullscreen = false
	case "tags":
		if len(a.Args) == 1 {
			if mask, err := strconv.ParseUint(a.Args[0], 0, 32); err == nil && mask != 0 {
				v.Pending.Tags = uint32(mask)
			}
		}
	case "dimensions":
		if len(a.Args) == 2 {
			w, err1 := strconv.ParseUint(a.Args[0], 10, 32)
			h, err2 := strconv.ParseUint(a.Args[1], 10, 32)
			if err1 == nil && err2 == nil {
				v.Pending.FloatBox.Width = uint32(w)
				v.Pending.FloatBox.Height = uint32(h)
			}
		}
	case "position":
		if len(a.Args) == 2 {
			x, err1 := strconv.ParseInt(a.Args[0], 10, 32)
			y, err2 := strconv.ParseInt(a.Args[1], 10, 32)
			if err1 == nil && err2 == nil {
				v.Pending.FloatBox.X = int32(x)
				v.Pending.FloatBox.Y = int32(y)
			}
		}
	}
	view.ClampFullscreenFloat(&v.Pending)
}

// UnmapView destroys a view: removes it from its output's stacks, any
// in-flight transaction, and the id index.
func (r *Root) UnmapView(k slotmap.Key) {
	v := r.views.GetPtr(k)
	if v == nil {
		return
	}
	delete(r.viewsByID, v.ID)
	if ok, hasOut := v.Output(); hasOut {
		if o, exists := r.outputs.Get(ok); exists {
			o.RemoveView(k)
		}
		if tx, ok := r.transactions[ok]; ok {
			tx.RemoveParticipant(k)
		}
	}
	r.views.Remove(k)
}

// arrange is Root's applyPending(): recompute which views are visible
// on the output's current tags and stage a transaction. The compositor
// never computes tiled geometry itself beyond the no-layout fallback
// (spec.md §4.6); a bound layout client's async demand/commit cycle is
// driven by internal/layoutproto, which calls CommitLayoutNamed once
// the client replies.
func (r *Root) arrange(outKey slotmap.Key) {
	o, ok := r.outputs.Get(outKey)
	if !ok || o.NoOp {
		return
	}
	o.CurrentTags = o.PendingTags

	tiled := r.tiledViews(o)
	if len(tiled) == 0 {
		r.startTransaction(outKey, o, nil, nil)
		return
	}

	if o.HasLayoutBinding {
		b, ok := r.bindings[outKey]
		if !ok {
			o.HasLayoutBinding = false
		} else {
			// Async path: push the demand now; internal/layoutproto will
			// call CommitLayoutNamed (or DetachLayout on error) once the
			// client replies.
			if err := b.Demand(o.UsableBox.Width, o.UsableBox.Height, o.CurrentTags, len(tiled)); err != nil {
				logger.Warnf("output %s: layout demand: %v", o.Name, err)
			}
			return
		}
	}
	logger.Debugf("output %s: no layout binding, stacking %d tiled views into usable box", o.Name, len(tiled))
	boxes := layout.FallbackStack(o.UsableBox, len(tiled))
	r.startTransaction(outKey, o, tiled, boxes)
}

// tiledViews returns the keys of o's non-floating, non-fullscreen,
// currently-visible views in wm-stack order.
func (r *Root) tiledViews(o *output.Output) []slotmap.Key {
	var out []slotmap.Key
	for _, k := range o.WMStack {
		v := r.views.GetPtr(k)
		if v == nil || v.Destroying {
			continue
		}
		if !output.Visible(v.Pending.Tags, o.CurrentTags) {
			continue
		}
		if view.EffectiveFloat(v.Pending) || v.Pending.Fullscreen {
			continue
		}
		out = append(out, k)
	}
	return out
}

// CommitLayout is called by CommitLayoutNamed once a bound layout
// client has pushed dimensions for every tiled view and committed
// (spec.md §4.6 "demanding -> idle"). It starts the transaction that
// actually arranges the output.
func (r *Root) CommitLayout(outKey slotmap.Key, dims []layout.Dimensions) {
	o, ok := r.outputs.Get(outKey)
	if !ok {
		return
	}
	tiled := r.tiledViews(o)
	boxes := make([]view.Box, len(tiled))
	for i := range boxes {
		if i < len(dims) {
			d := dims[i]
			boxes[i] = view.Box{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height}
		} else {
			boxes[i] = o.UsableBox
		}
	}
	r.startTransaction(outKey, o, tiled, boxes)
}

// FallbackArrange is called by DetachLayout and by CommitLayoutNamed
// when a layout binding errors out (spec.md §4.6 "demanding -> errored
// ... falls back to stacking all tiles").
func (r *Root) FallbackArrange(outKey slotmap.Key) {
	o, ok := r.outputs.Get(outKey)
	if !ok {
		return
	}
	logger.Warnf("output %s: layout binding errored, falling back to stacking", o.Name)
	tiled := r.tiledViews(o)
	boxes := layout.FallbackStack(o.UsableBox, len(tiled))
	r.startTransaction(outKey, o, tiled, boxes)
}

// startTransaction computes Pending geometry for tiled (from boxes)
// and floating views on o, then drives a transaction.Transaction to
// apply it (spec.md §4.7).
func (r *Root) startTransaction(outKey slotmap.Key, o *output.Output, tiled []slotmap.Key, boxes []view.Box) {
	for i, k := range tiled {
		v := r.views.GetPtr(k)
		if v == nil {
			continue
		}
		v.Pending.Box = boxes[i]
	}
	for _, k := range o.WMStack {
		v := r.views.GetPtr(k)
		if v == nil || v.Destroying {
			continue
		}
		if !output.Visible(v.Pending.Tags, o.CurrentTags) {
			continue
		}
		if view.EffectiveFloat(v.Pending) && !v.Pending.Fullscreen {
			v.Pending.Box = view.ApplyDelta(v.Pending.FloatBox, o.UsableBox, v.Pending.PendingDelta)
			v.Pending.FloatBox = v.Pending.Box
			v.Pending.PendingDelta = view.Delta{}
		}
		if v.Pending.Fullscreen {
			v.Pending.Box = o.UsableBox
		}
	}

	var participants []slotmap.Key
	for _, k := range o.WMStack {
		v := r.views.GetPtr(k)
		if v == nil || v.Destroying {
			continue
		}
		if !output.Visible(v.Pending.Tags, o.CurrentTags) {
			continue
		}
		v.Inflight = v.Pending
		participants = append(participants, k)
	}

	timeout := transaction.DefaultTimeout
	if r.transactionTimeoutMS > 0 {
		timeout = time.Duration(r.transactionTimeoutMS) * time.Millisecond
	}

	cfg := &rootConfigurer{root: r}
	tx := transaction.New(cfg, participants, timeout, func(t *transaction.Transaction) {
		// The timer fires on its own goroutine; the commit touches
		// Root's views, so it goes through the dispatch loop.
		r.Do(t.CommitOnTimeout)
	})
	r.transactions[outKey] = tx
}

// rootConfigurer adapts Root to transaction.Configurer.
type rootConfigurer struct {
	root *Root
}

func (c *rootConfigurer) SendConfigure(k slotmap.Key) (serial uint32, changesSize bool) {
	v := c.root.views.GetPtr(k)
	if v == nil || v.Caps == nil {
		return 0, false
	}
	changesSize = v.Inflight.Box.Width != v.Current.Box.Width || v.Inflight.Box.Height != v.Current.Box.Height
	serial = v.Caps.Configure(v.Inflight.Box, true, false)
	v.ConfigureSerial = serial
	v.Acked = false
	return serial, changesSize
}

func (c *rootConfigurer) Promote(k slotmap.Key) {
	v := c.root.views.GetPtr(k)
	if v == nil {
		return
	}
	v.Current = v.Inflight
	v.Acked = true
}

func (c *rootConfigurer) ScheduleFrame() {
	// The actual render pass is the (out-of-scope) renderer's job;
	// nothing further for Root to do once Current is authoritative.
}

// Ack is called by the (out-of-scope) xdg-shell/xwayland backend when
// a client acks a configure serial.
func (r *Root) Ack(outKey slotmap.Key, viewKey slotmap.Key, serial uint32) {
	if tx, ok := r.transactions[outKey]; ok {
		tx.Ack(viewKey, serial)
	}
}

