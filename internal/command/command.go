// Package command implements the textual command dispatcher (spec.md
// §4.5): a token vector (already word-split by the control client) is
// looked up by its first token in a name-keyed handler table, validated
// for arity, and run against a Runtime facade that Root implements.
package command

import "strings"

// Runtime is the facade every handler mutates pending state through. It
// is implemented by internal/root.Root; defining it here (rather than
// importing root) keeps internal/command free of a dependency on the
// subsystems it dispatches into, the same inversion spec.md §9's
// "explicit Context passed to every handler" calls for.
type Runtime interface {
	SetFocusedTags(seat string, mask uint32) error
	SetViewTags(seat string, mask uint32) error
	ToggleFocusedTags(seat string, mask uint32) error
	FocusPreviousTags(seat string) error

	FocusView(seat string, direction string) error
	FocusViewByID(seat string, id string) error
	Swap(seat string, direction string) error
	Zoom(seat string) error

	SendToOutput(seat string, target string) error

	Move(seat string, dx, dy int32) error
	Snap(seat string, direction string) error
	Resize(seat string, dw, dh int32) error

	Spawn(cmd string) error

	RuleAdd(appIDGlob, titleGlob, action string, args []string) error
	RuleDel(appIDGlob, titleGlob string) error
	ListRules(out *strings.Builder) error

	Input(identifierGlob, setting string, value []string) error
	ListInputs(out *strings.Builder) error
	ListInputConfigs(out *strings.Builder) error

	DeclareOption(name, typ, initial string) error
	SetOption(name, value string) error
	GetOption(name string, out *strings.Builder) error
	UnsetOption(name string) error
	ModOption(name, delta string) error

	EnterMode(seat string, name string) error

	Map(modeName string, modMask uint32, keysym uint32, releaseEdge, layoutIndependent bool, cmd []string) error
	Unmap(modeName string, modMask uint32, keysym uint32, releaseEdge bool) error
	MapPointer(modeName string, modMask uint32, eventCode uint32, action string, cmd []string) error
	UnmapPointer(modeName string, modMask uint32, eventCode uint32) error

	KeyboardGroupDeprecated(sub string) error // accepted no-op, logs a warning

	ListOutputs(out *strings.Builder) error
	ListViews(out *strings.Builder) error
}

// Handler is the uniform shape spec.md §4.5 gives every command:
// (seat, args, out) -> error. seat is the name of the seat that issued
// the command; out collects any human-readable payload (list-inputs,
// list-rules, get-option, ...), ignored on success unless the handler
// wrote to it.
type Handler func(rt Runtime, seat string, args []string, out *strings.Builder) error

// Dispatcher maps command names to handlers.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher returns a Dispatcher with every significant handler
// described in spec.md §4.5 registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Handler)}
	registerBuiltins(d)
	return d
}

// Register adds or replaces the handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Dispatch parses tokens[0] as the command name and runs its handler
// against rt. Returns the handler's out payload (possibly empty) and an
// error, which is nil on success. An unknown command name or an empty
// token vector is KindOther, matching the CLI surface's documented
// "unknown command" case (spec.md §6).
func (d *Dispatcher) Dispatch(rt Runtime, seat string, tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", ErrOther("no command given")
	}
	h, ok := d.handlers[tokens[0]]
	if !ok {
		return "", ErrOther("unknown command %s", tokens[0])
	}
	var out strings.Builder
	if err := h(rt, seat, tokens[1:], &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
