package command

import (
	"hash/fnv"
	"strconv"
	"strings"
)

func registerBuiltins(d *Dispatcher) {
	d.Register("set-focused-tags", cmdSetFocusedTags)
	d.Register("set-view-tags", cmdSetViewTags)
	d.Register("toggle-focused-tags", cmdToggleFocusedTags)
	d.Register("focus-previous-tags", cmdFocusPreviousTags)

	d.Register("focus-view", cmdFocusView)
	d.Register("focus-view-by-id", cmdFocusViewByID)
	d.Register("swap", cmdSwap)
	d.Register("zoom", cmdZoom)

	d.Register("send-to-output", cmdSendToOutput)

	d.Register("move", cmdMove)
	d.Register("snap", cmdSnap)
	d.Register("resize", cmdResize)

	d.Register("spawn", cmdSpawn)

	d.Register("rule-add", cmdRuleAdd)
	d.Register("rule-del", cmdRuleDel)
	d.Register("list-rules", cmdListRules)

	d.Register("input", cmdInput)
	d.Register("list-inputs", cmdListInputs)
	d.Register("list-input-configs", cmdListInputConfigs)

	d.Register("declare-option", cmdDeclareOption)
	d.Register("set-option", cmdSetOption)
	d.Register("get-option", cmdGetOption)
	d.Register("unset-option", cmdUnsetOption)
	d.Register("mod-option", cmdModOption)

	d.Register("enter-mode", cmdEnterMode)

	d.Register("map", cmdMap)
	d.Register("unmap", cmdUnmap)
	d.Register("map-pointer", cmdMapPointer)
	d.Register("unmap-pointer", cmdUnmapPointer)

	d.Register("keyboard-group-add", cmdKeyboardGroupDeprecated)
	d.Register("keyboard-group-del", cmdKeyboardGroupDeprecated)

	d.Register("list-outputs", cmdListOutputs)
	d.Register("list-views", cmdListViews)
}

func need(args []string, min, max int) error {
	if len(args) < min {
		return ErrNotEnoughArguments(min, len(args))
	}
	if max >= 0 && len(args) > max {
		return ErrTooManyArguments(max, len(args))
	}
	return nil
}

func parseTags(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, ErrInvalidValue("tags", s)
	}
	return uint32(v), nil
}

// cmdSetFocusedTags: tagmask must be nonzero (spec.md §4.5, §8).
func cmdSetFocusedTags(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	mask, err := parseTags(args[0])
	if err != nil {
		return err
	}
	if mask == 0 {
		return ErrOther("tags may not be 0")
	}
	return rt.SetFocusedTags(seat, mask)
}

func cmdSetViewTags(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	mask, err := parseTags(args[0])
	if err != nil {
		return err
	}
	if mask == 0 {
		return ErrOther("tags may not be 0")
	}
	return rt.SetViewTags(seat, mask)
}

// cmdToggleFocusedTags: XORs with current pending; fails silently (no
// transition, success reply) if the result would be 0 (spec.md §4.5,
// §8).
func cmdToggleFocusedTags(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	mask, err := parseTags(args[0])
	if err != nil {
		return err
	}
	return rt.ToggleFocusedTags(seat, mask)
}

func cmdFocusPreviousTags(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.FocusPreviousTags(seat)
}

var directions = map[string]bool{"next": true, "previous": true, "up": true, "down": true, "left": true, "right": true}

func validateDirection(s string) error {
	if !directions[s] {
		return ErrInvalidDirection(s)
	}
	return nil
}

func cmdFocusView(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	if err := validateDirection(args[0]); err != nil {
		return err
	}
	return rt.FocusView(seat, args[0])
}

func cmdFocusViewByID(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	return rt.FocusViewByID(seat, args[0])
}

func cmdSwap(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	if err := validateDirection(args[0]); err != nil {
		return err
	}
	return rt.Swap(seat, args[0])
}

func cmdZoom(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.Zoom(seat)
}

func cmdSendToOutput(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	return rt.SendToOutput(seat, args[0])
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, ErrInvalidValue("integer", s)
	}
	return int32(v), nil
}

func cmdMove(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 2, 2); err != nil {
		return err
	}
	dx, err := parseInt32(args[0])
	if err != nil {
		return err
	}
	dy, err := parseInt32(args[1])
	if err != nil {
		return err
	}
	return rt.Move(seat, dx, dy)
}

var physicalDirections = map[string]bool{"up": true, "down": true, "left": true, "right": true}

func cmdSnap(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	if !physicalDirections[args[0]] {
		return ErrInvalidPhysicalDirection(args[0])
	}
	return rt.Snap(seat, args[0])
}

func cmdResize(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 2, 2); err != nil {
		return err
	}
	dw, err := parseInt32(args[0])
	if err != nil {
		return err
	}
	dh, err := parseInt32(args[1])
	if err != nil {
		return err
	}
	return rt.Resize(seat, dw, dh)
}

func cmdSpawn(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, -1); err != nil {
		return err
	}
	return rt.Spawn(strings.Join(args, " "))
}

// parseRuleFlags implements the reusable fixed-schema flag parser
// described in spec.md §9: long flags with values first, then
// positionals; unknown flags are an error.
func parseRuleFlags(args []string) (appID, title string, rest []string, err error) {
	appID, title = "*", "*"
	i := 0
	for i < len(args) {
		switch args[i] {
		case "-app-id":
			if i+1 >= len(args) {
				return "", "", nil, ErrNotEnoughArguments(i+2, len(args))
			}
			appID = args[i+1]
			i += 2
		case "-title":
			if i+1 >= len(args) {
				return "", "", nil, ErrNotEnoughArguments(i+2, len(args))
			}
			title = args[i+1]
			i += 2
		default:
			if strings.HasPrefix(args[i], "-") {
				return "", "", nil, ErrUnknownOption(args[i])
			}
			rest = append(rest, args[i:]...)
			return appID, title, rest, nil
		}
	}
	return appID, title, rest, nil
}

func cmdRuleAdd(rt Runtime, seat string, args []string, out *strings.Builder) error {
	appID, title, rest, err := parseRuleFlags(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return ErrNotEnoughArguments(1, len(rest))
	}
	return rt.RuleAdd(appID, title, rest[0], rest[1:])
}

func cmdRuleDel(rt Runtime, seat string, args []string, out *strings.Builder) error {
	appID, title, rest, err := parseRuleFlags(args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrTooManyArguments(0, len(rest))
	}
	return rt.RuleDel(appID, title)
}

func cmdListRules(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.ListRules(out)
}

func cmdInput(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 2, -1); err != nil {
		return err
	}
	return rt.Input(args[0], args[1], args[2:])
}

func cmdListInputs(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.ListInputs(out)
}

func cmdListInputConfigs(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.ListInputConfigs(out)
}

func cmdDeclareOption(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 2, 3); err != nil {
		return err
	}
	initial := ""
	if len(args) == 3 {
		initial = args[2]
	}
	return rt.DeclareOption(args[0], args[1], initial)
}

func cmdSetOption(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 2, 2); err != nil {
		return err
	}
	return rt.SetOption(args[0], args[1])
}

func cmdGetOption(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	return rt.GetOption(args[0], out)
}

func cmdUnsetOption(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	return rt.UnsetOption(args[0])
}

func cmdModOption(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 2, 2); err != nil {
		return err
	}
	return rt.ModOption(args[0], args[1])
}

func cmdEnterMode(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 1, 1); err != nil {
		return err
	}
	return rt.EnterMode(seat, args[0])
}

// cmdKeyboardGroupDeprecated: keyboard groups are deprecated (spec.md
// §9); accepted as a no-op that logs a warning rather than an error.
func cmdKeyboardGroupDeprecated(rt Runtime, seat string, args []string, out *strings.Builder) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	return rt.KeyboardGroupDeprecated(sub)
}

// modifierBits is the fixed X11/libinput-style modifier name table; it
// is a closed set of nine names (eight modifiers plus "None"), not the
// (out-of-scope) keymap compiler.
var modifierBits = map[string]uint32{
	"Shift":   1 << 0,
	"Lock":    1 << 1,
	"Control": 1 << 2,
	"Mod1":    1 << 3,
	"Mod2":    1 << 4,
	"Mod3":    1 << 5,
	"Mod4":    1 << 6,
	"Mod5":    1 << 7,
	"None":    0,
}

// parseModMask parses a "+"-joined modifier list such as "Mod4+Shift".
func parseModMask(s string) (uint32, error) {
	var mask uint32
	for _, part := range strings.Split(s, "+") {
		bit, ok := modifierBits[part]
		if !ok {
			return 0, ErrInvalidValue("modifier", part)
		}
		mask |= bit
	}
	return mask, nil
}

// keysymOf maps a keysym name token to a stable opaque id. Actual X11
// keysym resolution is the out-of-scope keymap compiler's job; this is
// a deterministic stand-in so the same name always binds to the same
// id within one running river.
func keysymOf(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

// cmdMap implements `map [-release] [-layout-independent] <mode> <modifiers> <key> <command...>`.
func cmdMap(rt Runtime, seat string, args []string, out *strings.Builder) error {
	releaseEdge, layoutIndependent := false, false
	i := 0
	for i < len(args) {
		switch args[i] {
		case "-release":
			releaseEdge = true
			i++
		case "-layout-independent":
			layoutIndependent = true
			i++
		default:
			goto positionals
		}
	}
positionals:
	rest := args[i:]
	if err := need(rest, 3, -1); err != nil {
		return err
	}
	modMask, err := parseModMask(rest[1])
	if err != nil {
		return err
	}
	return rt.Map(rest[0], modMask, keysymOf(rest[2]), releaseEdge, layoutIndependent, rest[3:])
}

// cmdUnmap implements `unmap [-release] <mode> <modifiers> <key>`.
func cmdUnmap(rt Runtime, seat string, args []string, out *strings.Builder) error {
	releaseEdge := false
	i := 0
	if i < len(args) && args[i] == "-release" {
		releaseEdge = true
		i++
	}
	rest := args[i:]
	if err := need(rest, 3, 3); err != nil {
		return err
	}
	modMask, err := parseModMask(rest[1])
	if err != nil {
		return err
	}
	return rt.Unmap(rest[0], modMask, keysymOf(rest[2]), releaseEdge)
}

// buttonCodes is the fixed libinput event-code table for the three
// buttons river's pointer bindings actually use.
var buttonCodes = map[string]uint32{
	"BTN_LEFT":   0x110,
	"BTN_RIGHT":  0x111,
	"BTN_MIDDLE": 0x112,
}

func parseButton(s string) (uint32, error) {
	code, ok := buttonCodes[s]
	if !ok {
		return 0, ErrInvalidValue("button", s)
	}
	return code, nil
}

// cmdMapPointer implements `map-pointer <mode> <modifiers> <button> move|resize|<command...>`.
func cmdMapPointer(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 4, -1); err != nil {
		return err
	}
	modMask, err := parseModMask(args[1])
	if err != nil {
		return err
	}
	code, err := parseButton(args[2])
	if err != nil {
		return err
	}
	action := args[3]
	var cmd []string
	switch action {
	case "move", "resize":
		if len(args) != 4 {
			return ErrTooManyArguments(4, len(args))
		}
	default:
		action = "command"
		cmd = args[3:]
	}
	return rt.MapPointer(args[0], modMask, code, action, cmd)
}

// cmdUnmapPointer implements `unmap-pointer <mode> <modifiers> <button>`.
func cmdUnmapPointer(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 3, 3); err != nil {
		return err
	}
	modMask, err := parseModMask(args[1])
	if err != nil {
		return err
	}
	code, err := parseButton(args[2])
	if err != nil {
		return err
	}
	return rt.UnmapPointer(args[0], modMask, code)
}

// cmdListOutputs implements `list-outputs`, the read-only introspection
// command internal/debugui polls (spec.md §9 wm_stack/render_stack are
// debug-only state, never control-protocol mutable).
func cmdListOutputs(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.ListOutputs(out)
}

// cmdListViews implements `list-views`.
func cmdListViews(rt Runtime, seat string, args []string, out *strings.Builder) error {
	if err := need(args, 0, 0); err != nil {
		return err
	}
	return rt.ListViews(out)
}
