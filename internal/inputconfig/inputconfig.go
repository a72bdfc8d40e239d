// Package inputconfig implements the libinput-style per-device settings
// table described in spec.md §4.8: rows are matched against a device
// identifier by glob, in insertion order (not specificity — unlike
// internal/rule, first-registered wins here per spec.md §4.8).
package inputconfig

import "github.com/riverwm/river/internal/glob"

// AccelProfile mirrors libinput's pointer acceleration profiles.
type AccelProfile string

const (
	AccelFlat     AccelProfile = "flat"
	AccelAdaptive AccelProfile = "adaptive"
)

// ClickMethod mirrors libinput's click detection methods.
type ClickMethod string

// ScrollMethod mirrors libinput's scroll methods.
type ScrollMethod string

// TapButtonMap selects which buttons tap gestures generate.
type TapButtonMap string

// Settings is the sparse set of libinput-style toggles a row can carry;
// unset fields simply aren't applied. Pointer fields distinguish "not
// configured" from "configured false/zero".
type Settings struct {
	Events              *string // "enabled" | "disabled" | "disabled-on-external-mouse"
	AccelProfile        *AccelProfile
	PointerAccel        *float64
	ClickMethod         *ClickMethod
	Drag                *bool
	DragLock            *bool
	DisableWhileTyping  *bool
	MiddleEmulation     *bool
	NaturalScroll       *bool
	LeftHanded          *bool
	Tap                 *bool
	TapButtonMap        *TapButtonMap
	ScrollMethod        *ScrollMethod
	ScrollButton        *uint32
	MapToOutput         *string
}

// Row is one {identifier_glob, settings} configuration entry.
type Row struct {
	IdentifierGlob string
	Settings       Settings
}

// Device is the minimal shape the (out-of-scope) input backend exposes
// for applying a matched row.
type Device interface {
	Identifier() string
	Apply(Settings)
}

// Table stores rows in insertion order and applies the first matching
// row to a hotplugged device (spec.md §4.8: "first matching row
// (insertion order, not specificity)").
type Table struct {
	rows []Row
}

// NewTable returns an empty input configuration table.
func NewTable() *Table {
	return &Table{}
}

// Upsert creates or updates the row for identifierGlob, merging newly
// set fields into settings on top of any existing row for the same
// glob, matching the `input <glob> <sub-setting> <value>` command
// shape (spec.md §4.5).
func (t *Table) Upsert(identifierGlob string, merge func(*Settings)) {
	for i := range t.rows {
		if t.rows[i].IdentifierGlob == identifierGlob {
			merge(&t.rows[i].Settings)
			return
		}
	}
	var s Settings
	merge(&s)
	t.rows = append(t.rows, Row{IdentifierGlob: identifierGlob, Settings: s})
}

// Del removes the row for identifierGlob and reports whether one
// existed.
func (t *Table) Del(identifierGlob string) bool {
	for i := range t.rows {
		if t.rows[i].IdentifierGlob == identifierGlob {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true
		}
	}
	return false
}

// Rows returns a snapshot of the configured rows in insertion order, for
// list-input-configs.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// ApplyTo matches identifier against the table in insertion order and
// applies the first match's settings to dev. A device matching no row
// is left at its backend defaults.
func (t *Table) ApplyTo(dev Device) {
	identifier := dev.Identifier()
	for _, row := range t.rows {
		if glob.Match(identifier, row.IdentifierGlob) {
			dev.Apply(row.Settings)
			return
		}
	}
}
