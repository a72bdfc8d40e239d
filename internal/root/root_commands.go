package root

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/riverwm/river/internal/command"
	"github.com/riverwm/river/internal/inputconfig"
	"github.com/riverwm/river/internal/logger"
	"github.com/riverwm/river/internal/mode"
	"github.com/riverwm/river/internal/output"
	"github.com/riverwm/river/internal/rule"
	"github.com/riverwm/river/internal/slotmap"
	"github.com/riverwm/river/internal/spawn"
	"github.com/riverwm/river/internal/view"
)

var _ command.Runtime = (*Root)(nil)

func (r *Root) SetFocusedTags(seatName string, mask uint32) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	ok, o, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	if !o.SetPendingTags(mask) {
		return command.ErrOther("tags may not be 0")
	}
	r.arrange(ok)
	return nil
}

func (r *Root) SetViewTags(seatName string, mask uint32) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	vk, v, err := r.focusedView(s)
	if err != nil {
		return err
	}
	v.Pending.Tags = mask
	if ok, has := v.Output(); has {
		r.arrange(ok)
	}
	_ = vk
	return nil
}

func (r *Root) ToggleFocusedTags(seatName string, mask uint32) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	ok, o, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	o.ToggleTags(mask)
	r.arrange(ok)
	return nil
}

func (r *Root) FocusPreviousTags(seatName string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	ok, o, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	o.FocusPreviousTags()
	r.arrange(ok)
	return nil
}

// candidateViews returns the keys of o's focus-eligible (non-destroying)
// wm-stack views.
func (r *Root) candidateViews(o *output.Output) []slotmap.Key {
	var out []slotmap.Key
	for _, k := range o.WMStack {
		if v := r.views.GetPtr(k); v != nil && !v.Destroying {
			out = append(out, k)
		}
	}
	return out
}

func directionDelta(b, from view.Box) (dx, dy float64) {
	fx, fy := view.Center(from)
	bx, by := view.Center(b)
	return bx - fx, by - fy
}

// pickSpatial returns the candidate whose center lies closest to from's
// center among those principally in the requested direction (spec.md
// §4.5 "tie-breaking on spatial directions ... filtering candidates
// whose center-to-center vector does not principally point in the
// requested direction").
func pickSpatial(r *Root, candidates []slotmap.Key, fromBox view.Box, dir string) (slotmap.Key, bool) {
	var best slotmap.Key
	bestDist := math.Inf(1)
	found := false
	for _, k := range candidates {
		v := r.views.GetPtr(k)
		if v == nil {
			continue
		}
		dx, dy := directionDelta(v.Pending.Box, fromBox)
		switch dir {
		case "left":
			if dx >= 0 || math.Abs(dx) < math.Abs(dy) {
				continue
			}
		case "right":
			if dx <= 0 || math.Abs(dx) < math.Abs(dy) {
				continue
			}
		case "up":
			if dy >= 0 || math.Abs(dy) < math.Abs(dx) {
				continue
			}
		case "down":
			if dy <= 0 || math.Abs(dy) < math.Abs(dx) {
				continue
			}
		}
		dist := math.Hypot(dx, dy)
		if dist < bestDist {
			bestDist = dist
			best = k
			found = true
		}
	}
	return best, found
}

func (r *Root) FocusView(seatName string, direction string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	_, o, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	candidates := r.candidateViews(o)
	if len(candidates) == 0 {
		return nil
	}
	var target slotmap.Key
	switch direction {
	case "next", "previous":
		curVK, _, cerr := r.focusedView(s)
		idx := -1
		if cerr == nil {
			idx = o.IndexInWMStack(curVK)
		}
		if idx < 0 {
			target = candidates[0]
		} else if direction == "next" {
			target = candidates[(idx+1)%len(candidates)]
		} else {
			target = candidates[(idx-1+len(candidates))%len(candidates)]
		}
	default:
		_, curV, cerr := r.focusedView(s)
		if cerr != nil {
			target = candidates[0]
		} else {
			var ok bool
			target, ok = pickSpatial(r, candidates, curV.Pending.Box, direction)
			if !ok {
				return nil
			}
		}
	}
	s.SetFocusView(target)
	return nil
}

func (r *Root) FocusViewByID(seatName string, id string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	k, ok := r.viewsByID[id]
	if !ok {
		return command.ErrOther("no view with id %q", id)
	}
	s.SetFocusView(k)
	return nil
}

// Swap refuses to operate on floating or fullscreen views (spec.md
// §4.5).
func (r *Root) Swap(seatName string, direction string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	_, o, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	curVK, curV, err := r.focusedView(s)
	if err != nil {
		return err
	}
	if view.EffectiveFloat(curV.Pending) || curV.Pending.Fullscreen {
		return command.ErrOther("swap: focused view is floating or fullscreen")
	}
	candidates := r.candidateViews(o)
	var target slotmap.Key
	found := false
	switch direction {
	case "next", "previous":
		idx := o.IndexInWMStack(curVK)
		if idx >= 0 && len(candidates) > 1 {
			if direction == "next" {
				target = candidates[(idx+1)%len(candidates)]
			} else {
				target = candidates[(idx-1+len(candidates))%len(candidates)]
			}
			found = true
		}
	default:
		target, found = pickSpatial(r, candidates, curV.Pending.Box, direction)
	}
	if !found {
		return nil
	}
	tv := r.views.GetPtr(target)
	if tv == nil || view.EffectiveFloat(tv.Pending) || tv.Pending.Fullscreen {
		return nil
	}
	o.SwapWM(curVK, target)
	_, ok := curV.Output()
	if ok {
		r.arrange(s.FocusedOutput)
	}
	return nil
}

// Zoom: if the focused view is at the top of the wm stack, zoom the
// second tiled view instead; otherwise promote the focused view to the
// front (spec.md §4.5).
func (r *Root) Zoom(seatName string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	ok, o, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	curVK, curV, err := r.focusedView(s)
	if err != nil {
		return err
	}
	if view.EffectiveFloat(curV.Pending) || curV.Pending.Fullscreen {
		return command.ErrOther("zoom: focused view is floating or fullscreen")
	}
	tiled := r.tiledViews(o)
	if len(tiled) < 2 {
		return nil
	}
	target := curVK
	if tiled[0] == curVK {
		target = tiled[1]
	}
	o.PromoteToFront(target)
	r.arrange(ok)
	return nil
}

func (r *Root) SendToOutput(seatName string, target string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	srcKey, src, err := r.focusedOutput(s)
	if err != nil {
		return err
	}
	vk, v, err := r.focusedView(s)
	if err != nil {
		return err
	}

	dstKey, err := r.resolveOutputTarget(srcKey, target)
	if err != nil {
		return err
	}
	dst, ok := r.outputs.Get(dstKey)
	if !ok || dst.NoOp {
		return command.ErrOther("send-to-output: target output is unavailable")
	}

	src.RemoveView(vk)
	dst.PushView(vk)
	v.SetOutput(dstKey, true)

	r.arrange(srcKey)
	r.arrange(dstKey)
	return nil
}

func (r *Root) resolveOutputTarget(from slotmap.Key, target string) (slotmap.Key, error) {
	var order []slotmap.Key
	r.outputs.Each(func(k slotmap.Key, o *output.Output) {
		if !o.NoOp {
			order = append(order, k)
		}
	})
	switch target {
	case "next", "previous":
		idx := -1
		for i, k := range order {
			if k == from {
				idx = i
				break
			}
		}
		if idx < 0 || len(order) == 0 {
			return slotmap.Key{}, command.ErrOther("send-to-output: focused output not found")
		}
		if target == "next" {
			return order[(idx+1)%len(order)], nil
		}
		return order[(idx-1+len(order))%len(order)], nil
	default:
		var found slotmap.Key
		ok := false
		r.outputs.Each(func(k slotmap.Key, o *output.Output) {
			if !ok && !o.NoOp && o.Name == target {
				found, ok = k, true
			}
		})
		if !ok {
			return slotmap.Key{}, command.ErrOther("send-to-output: no output named %q", target)
		}
		return found, nil
	}
}

func (r *Root) Move(seatName string, dx, dy int32) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	_, v, err := r.focusedView(s)
	if err != nil {
		return err
	}
	v.Pending.Float = true
	view.ClampFullscreenFloat(&v.Pending)
	v.Pending.PendingDelta.X += dx
	v.Pending.PendingDelta.Y += dy
	if ok, has := v.Output(); has {
		r.arrange(ok)
	}
	return nil
}

var physicalToSnapSign = map[string][2]int32{
	"left":  {-1, 0},
	"right": {1, 0},
	"up":    {0, -1},
	"down":  {0, 1},
}

func (r *Root) Snap(seatName string, direction string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	_, v, err := r.focusedView(s)
	if err != nil {
		return err
	}
	sign, ok := physicalToSnapSign[direction]
	if !ok {
		return command.ErrInvalidPhysicalDirection(direction)
	}
	v.Pending.Float = true
	view.ClampFullscreenFloat(&v.Pending)
	v.Pending.PendingDelta = view.Delta{X: sign[0], Y: sign[1], Snap: true}
	if ok2, has := v.Output(); has {
		r.arrange(ok2)
	}
	return nil
}

func (r *Root) Resize(seatName string, dw, dh int32) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	_, v, err := r.focusedView(s)
	if err != nil {
		return err
	}
	v.Pending.Float = true
	view.ClampFullscreenFloat(&v.Pending)
	v.Pending.PendingDelta.Width += dw
	v.Pending.PendingDelta.Height += dh
	if ok, has := v.Output(); has {
		r.arrange(ok)
	}
	return nil
}

func (r *Root) Spawn(cmd string) error {
	if err := spawn.Shell(cmd); err != nil {
		return command.ErrOther("spawn: %v", err)
	}
	return nil
}

func (r *Root) RuleAdd(appIDGlob, titleGlob, action string, args []string) error {
	r.rules.Add(rule.Key{AppIDGlob: appIDGlob, TitleGlob: titleGlob}, RuleAction{Action: action, Args: args})
	return nil
}

func (r *Root) RuleDel(appIDGlob, titleGlob string) error {
	r.rules.Del(rule.Key{AppIDGlob: appIDGlob, TitleGlob: titleGlob})
	return nil
}

func (r *Root) ListRules(out *strings.Builder) error {
	for _, rl := range r.rules.All() {
		fmt.Fprintf(out, "-app-id %q -title %q %s %s\n", rl.Key.AppIDGlob, rl.Key.TitleGlob, rl.Value.Action, strings.Join(rl.Value.Args, " "))
	}
	return nil
}

// parseInputSetting builds the Settings-merge function Upsert expects
// from an `input <glob> <sub-setting> <value...>` command's tail
// (spec.md §4.5, §4.8).
func parseInputSetting(setting string, value []string) (func(*inputconfig.Settings), error) {
	one := func() (string, error) {
		if len(value) != 1 {
			return "", command.ErrNotEnoughArguments(1, len(value))
		}
		return value[0], nil
	}
	parseBool := func() (bool, error) {
		s, err := one()
		if err != nil {
			return false, err
		}
		switch s {
		case "enabled", "true":
			return true, nil
		case "disabled", "false":
			return false, nil
		}
		return false, command.ErrInvalidValue(setting, s)
	}
	switch setting {
	case "events":
		s, err := one()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.Events = &s }, nil
	case "accel-profile":
		s, err := one()
		if err != nil {
			return nil, err
		}
		p := inputconfig.AccelProfile(s)
		return func(st *inputconfig.Settings) { st.AccelProfile = &p }, nil
	case "pointer-accel":
		s, err := one()
		if err != nil {
			return nil, err
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, command.ErrInvalidValue(setting, s)
		}
		return func(st *inputconfig.Settings) { st.PointerAccel = &f }, nil
	case "click-method":
		s, err := one()
		if err != nil {
			return nil, err
		}
		m := inputconfig.ClickMethod(s)
		return func(st *inputconfig.Settings) { st.ClickMethod = &m }, nil
	case "drag":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.Drag = &b }, nil
	case "drag-lock":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.DragLock = &b }, nil
	case "disable-while-typing":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.DisableWhileTyping = &b }, nil
	case "middle-emulation":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.MiddleEmulation = &b }, nil
	case "natural-scroll":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.NaturalScroll = &b }, nil
	case "left-handed":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.LeftHanded = &b }, nil
	case "tap":
		b, err := parseBool()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.Tap = &b }, nil
	case "tap-button-map":
		s, err := one()
		if err != nil {
			return nil, err
		}
		m := inputconfig.TapButtonMap(s)
		return func(st *inputconfig.Settings) { st.TapButtonMap = &m }, nil
	case "scroll-method":
		s, err := one()
		if err != nil {
			return nil, err
		}
		m := inputconfig.ScrollMethod(s)
		return func(st *inputconfig.Settings) { st.ScrollMethod = &m }, nil
	case "scroll-button":
		s, err := one()
		if err != nil {
			return nil, err
		}
		v, verr := strconv.ParseUint(s, 0, 32)
		if verr != nil {
			return nil, command.ErrInvalidValue(setting, s)
		}
		u := uint32(v)
		return func(st *inputconfig.Settings) { st.ScrollButton = &u }, nil
	case "map-to-output":
		s, err := one()
		if err != nil {
			return nil, err
		}
		return func(st *inputconfig.Settings) { st.MapToOutput = &s }, nil
	default:
		return nil, command.ErrUnknownOption(setting)
	}
}

func (r *Root) Input(identifierGlob, setting string, value []string) error {
	merge, err := parseInputSetting(setting, value)
	if err != nil {
		return err
	}
	r.inputs.Upsert(identifierGlob, merge)
	for _, d := range r.devices {
		r.inputs.ApplyTo(d.device)
	}
	return nil
}

func (r *Root) ListInputs(out *strings.Builder) error {
	for _, d := range r.devices {
		fmt.Fprintln(out, d.identifier)
	}
	return nil
}

func (r *Root) ListInputConfigs(out *strings.Builder) error {
	for _, row := range r.inputs.Rows() {
		fmt.Fprintln(out, row.IdentifierGlob)
	}
	return nil
}

func (r *Root) DeclareOption(name, typ, initial string) error {
	switch typ {
	case "int", "uint", "fixed", "string":
	default:
		return command.ErrInvalidValue("option type", typ)
	}
	r.options[name] = &Option{Type: typ, Value: initial}
	return nil
}

func (r *Root) option(name string) (*Option, error) {
	o, ok := r.options[name]
	if !ok {
		return nil, command.ErrOther("no such option %q", name)
	}
	return o, nil
}

func (r *Root) SetOption(name, value string) error {
	o, err := r.option(name)
	if err != nil {
		return err
	}
	o.Value = value
	return nil
}

func (r *Root) GetOption(name string, out *strings.Builder) error {
	o, err := r.option(name)
	if err != nil {
		return err
	}
	out.WriteString(o.Value)
	return nil
}

func (r *Root) UnsetOption(name string) error {
	if _, ok := r.options[name]; !ok {
		return command.ErrOther("no such option %q", name)
	}
	delete(r.options, name)
	return nil
}

func (r *Root) ModOption(name, delta string) error {
	o, err := r.option(name)
	if err != nil {
		return err
	}
	switch o.Type {
	case "int":
		cur, _ := strconv.ParseInt(o.Value, 10, 64)
		d, derr := strconv.ParseInt(delta, 10, 64)
		if derr != nil {
			return command.ErrInvalidValue("delta", delta)
		}
		o.Value = strconv.FormatInt(cur+d, 10)
	case "uint":
		cur, _ := strconv.ParseUint(o.Value, 10, 64)
		d, derr := strconv.ParseInt(delta, 10, 64)
		if derr != nil {
			return command.ErrInvalidValue("delta", delta)
		}
		next := int64(cur) + d
		if next < 0 {
			next = 0
		}
		o.Value = strconv.FormatUint(uint64(next), 10)
	case "fixed":
		cur, _ := strconv.ParseFloat(o.Value, 64)
		d, derr := strconv.ParseFloat(delta, 64)
		if derr != nil {
			return command.ErrInvalidValue("delta", delta)
		}
		o.Value = strconv.FormatFloat(cur+d, 'f', -1, 64)
	default:
		return command.ErrOther("mod-option: option %q is not numeric", name)
	}
	return nil
}

func (r *Root) EnterMode(seatName string, name string) error {
	s, err := r.seat(seatName)
	if err != nil {
		return err
	}
	id, ok := r.Modes.Lookup(name)
	if !ok {
		return command.ErrOther("no such mode %q", name)
	}
	if !s.EnterMode(id) {
		return command.ErrOther("enter-mode: seat is locked")
	}
	return nil
}

func (r *Root) Map(modeName string, modMask, keysym uint32, releaseEdge, layoutIndependent bool, cmd []string) error {
	id := r.Modes.Add(modeName)
	r.Modes.AddMapping(id, mode.Mapping{
		ModMask:           mode.ModMask(modMask),
		Keysym:            mode.Keysym(keysym),
		ReleaseEdge:       releaseEdge,
		LayoutIndependent: layoutIndependent,
		CommandTokens:     cmd,
	})
	return nil
}

func (r *Root) Unmap(modeName string, modMask, keysym uint32, releaseEdge bool) error {
	id, ok := r.Modes.Lookup(modeName)
	if !ok {
		return command.ErrOther("no such mode %q", modeName)
	}
	r.Modes.DelMapping(id, mode.ModMask(modMask), mode.Keysym(keysym), releaseEdge)
	return nil
}

func (r *Root) MapPointer(modeName string, modMask, eventCode uint32, action string, cmd []string) error {
	id := r.Modes.Add(modeName)
	var a mode.PointerAction
	switch action {
	case "move":
		a = mode.PointerMove
	case "resize":
		a = mode.PointerResize
	default:
		a = mode.PointerCommand
	}
	r.Modes.AddPointerMapping(id, mode.PointerMapping{
		ModMask:       mode.ModMask(modMask),
		EventCode:     mode.EventCode(eventCode),
		Action:        a,
		CommandTokens: cmd,
	})
	return nil
}

func (r *Root) UnmapPointer(modeName string, modMask, eventCode uint32) error {
	// Pointer mappings have no Del in the registry's current surface;
	// overwrite with a no-op command mapping instead of extending
	// mode.Registry's API for a rarely-used unbind.
	id, ok := r.Modes.Lookup(modeName)
	if !ok {
		return command.ErrOther("no such mode %q", modeName)
	}
	r.Modes.AddPointerMapping(id, mode.PointerMapping{
		ModMask:   mode.ModMask(modMask),
		EventCode: mode.EventCode(eventCode),
		Action:    mode.PointerCommand,
	})
	return nil
}

func (r *Root) KeyboardGroupDeprecated(sub string) error {
	logger.Warnf("keyboard-group-%s is deprecated and has no effect", sub)
	return nil
}

// ListOutputs implements `list-outputs`: one line per output with its
// current tags, usable box, and layout-binding state, for
// internal/debugui's read-only tree (spec.md §3, §9).
func (r *Root) ListOutputs(out *strings.Builder) error {
	r.outputs.Each(func(k slotmap.Key, o *output.Output) {
		if o.NoOp {
			return
		}
		bound := "unbound"
		if o.HasLayoutBinding {
			bound = "bound:" + o.LayoutNamespace
		}
		fmt.Fprintf(out, "%s tags=%d box=%dx%d+%d,%d %s\n",
			o.Name, o.CurrentTags, o.UsableBox.Width, o.UsableBox.Height,
			o.UsableBox.X, o.UsableBox.Y, bound)
	})
	return nil
}

// ListViews implements `list-views`: one line per mapped view with its
// app-id/title, tags, and current box, for internal/debugui.
func (r *Root) ListViews(out *strings.Builder) error {
	r.views.Each(func(k slotmap.Key, v *view.View) {
		state := "tiled"
		if v.Current.Float {
			state = "float"
		}
		if v.Current.Fullscreen {
			state = "fullscreen"
		}
		fmt.Fprintf(out, "%s app-id=%q title=%q tags=%d %s box=%dx%d+%d,%d\n",
			v.ID, v.AppID, v.Title, v.Current.Tags, state,
			v.Current.Box.Width, v.Current.Box.Height, v.Current.Box.X, v.Current.Box.Y)
	})
	return nil
}
