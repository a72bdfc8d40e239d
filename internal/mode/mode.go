// Package mode implements the named-mode / mapping registry (spec.md
// §3, §4.4): a vector of modes indexed by id, with "normal" (0) and
// "locked" (1) reserved, and the key/pointer mapping tables each mode
// owns.
package mode

const (
	// Normal is the always-present, default mode id.
	Normal ID = 0
	// Locked is the mode id forced while a session lock is held; no
	// command may transition out of it (spec.md §4.4).
	Locked ID = 1
)

// ID indexes into a Registry's mode vector.
type ID uint32

// Keysym is an opaque layout-independent key symbol, as produced by the
// (out-of-scope) keymap compiler. It is treated as an opaque comparable
// value here.
type Keysym uint32

// ModMask is a bitmask of modifier keys (shift, ctrl, alt, logo, ...).
type ModMask uint32

// Mapping is a single key binding: (mode, modifiers, keysym, edge) ->
// command tokens (spec.md §3).
type Mapping struct {
	ModMask            ModMask
	Keysym             Keysym
	ReleaseEdge        bool
	LayoutIndependent  bool
	CommandTokens      []string
}

// PointerAction distinguishes the three things a pointer mapping can do.
type PointerAction int

const (
	PointerMove PointerAction = iota
	PointerResize
	PointerCommand
)

// EventCode is a libinput button code (e.g. BTN_LEFT).
type EventCode uint32

// PointerMapping is a single pointer button binding (spec.md §3).
type PointerMapping struct {
	ModMask       ModMask
	EventCode     EventCode
	Action        PointerAction
	CommandTokens []string
}

// Mode is a named set of key and pointer bindings.
type Mode struct {
	Name            string
	Mappings        []Mapping
	PointerMappings []PointerMapping
}

// Registry holds the vector of modes, keeping a name->id index in sync.
type Registry struct {
	modes   []Mode
	byName  map[string]ID
}

// NewRegistry returns a Registry with "normal" (0) and "locked" (1)
// pre-registered, per spec.md §4.4.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]ID)}
	r.modes = append(r.modes, Mode{Name: "normal"})
	r.modes = append(r.modes, Mode{Name: "locked"})
	r.byName["normal"] = Normal
	r.byName["locked"] = Locked
	return r
}

// Add registers a new named mode and returns its id. Adding a mode whose
// name already exists returns the existing id without creating a
// duplicate.
func (r *Registry) Add(name string) ID {
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := ID(len(r.modes))
	r.modes = append(r.modes, Mode{Name: name})
	r.byName[name] = id
	return id
}

// Lookup resolves a mode name to its id.
func (r *Registry) Lookup(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Get returns a pointer to the mode at id, or nil if id is out of range.
func (r *Registry) Get(id ID) *Mode {
	if int(id) >= len(r.modes) {
		return nil
	}
	return &r.modes[id]
}

// Name returns the name of id, or "" if out of range.
func (r *Registry) Name(id ID) string {
	m := r.Get(id)
	if m == nil {
		return ""
	}
	return m.Name
}

// AddMapping inserts a key mapping into the named mode, replacing any
// existing mapping with the same (modmask, keysym, edge) key.
func (r *Registry) AddMapping(id ID, m Mapping) {
	mode := r.Get(id)
	if mode == nil {
		return
	}
	for i := range mode.Mappings {
		if mode.Mappings[i].ModMask == m.ModMask && mode.Mappings[i].Keysym == m.Keysym && mode.Mappings[i].ReleaseEdge == m.ReleaseEdge {
			mode.Mappings[i] = m
			return
		}
	}
	mode.Mappings = append(mode.Mappings, m)
}

// DelMapping removes a key mapping matching (modmask, keysym, edge) from
// the named mode and reports whether one was removed.
func (r *Registry) DelMapping(id ID, modMask ModMask, sym Keysym, releaseEdge bool) bool {
	mode := r.Get(id)
	if mode == nil {
		return false
	}
	for i := range mode.Mappings {
		m := mode.Mappings[i]
		if m.ModMask == modMask && m.Keysym == sym && m.ReleaseEdge == releaseEdge {
			mode.Mappings = append(mode.Mappings[:i], mode.Mappings[i+1:]...)
			return true
		}
	}
	return false
}

// AddPointerMapping inserts a pointer mapping into the named mode,
// replacing any existing mapping on the same (modmask, eventcode).
func (r *Registry) AddPointerMapping(id ID, m PointerMapping) {
	mode := r.Get(id)
	if mode == nil {
		return
	}
	for i := range mode.PointerMappings {
		if mode.PointerMappings[i].ModMask == m.ModMask && mode.PointerMappings[i].EventCode == m.EventCode {
			mode.PointerMappings[i] = m
			return
		}
	}
	mode.PointerMappings = append(mode.PointerMappings, m)
}

// FindKeyMapping searches mode id's mappings for a binding matching
// modMask and sym on the given edge (press when releaseEdge is false,
// release when true). Modifier matching is exact: callers are expected
// to have already normalized the mask (consumed modifiers ignored, Num/
// Caps normalized) before calling, per spec.md §4.4.
func (r *Registry) FindKeyMapping(id ID, modMask ModMask, sym Keysym, releaseEdge bool) *Mapping {
	mode := r.Get(id)
	if mode == nil {
		return nil
	}
	for i := range mode.Mappings {
		m := &mode.Mappings[i]
		if m.Keysym == sym && m.ModMask == modMask && m.ReleaseEdge == releaseEdge {
			return m
		}
	}
	return nil
}

// FindPointerMapping searches mode id's pointer mappings for a binding
// on (modMask, code).
func (r *Registry) FindPointerMapping(id ID, modMask ModMask, code EventCode) *PointerMapping {
	mode := r.Get(id)
	if mode == nil {
		return nil
	}
	for i := range mode.PointerMappings {
		m := &mode.PointerMappings[i]
		if m.EventCode == code && m.ModMask == modMask {
			return m
		}
	}
	return nil
}
