// Package rule implements the glob-matched (app-id, title) -> value
// lookup table described in spec.md §4.3: rules are kept in
// glob-specificity order and the first match wins.
package rule

import (
	"sort"

	"github.com/riverwm/river/internal/glob"
)

// Key identifies a rule by its glob pair. No two rules with the same Key
// may coexist in a List (spec.md §4.3 invariant).
type Key struct {
	AppIDGlob string
	TitleGlob string
}

// entry is a stored rule: its glob pair and the value it carries. The
// list is kept sorted most-specific-first by less.
type entry[T any] struct {
	key   Key
	value T
}

// List is an ordered list of rules, sorted so that the most specific
// rule (by glob.Order) is checked first.
type List[T any] struct {
	entries []entry[T]
}

// NewList returns an empty rule list.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// less reports whether glob pair a sorts before b, i.e. is more
// specific, comparing both globs lexicographically (app-id glob first,
// title glob as tiebreaker).
func less(a, b Key) bool {
	// More specific first: compare app-id globs with reversed glob.Order
	// (glob.Order ranks general-first; we want specific-first).
	if a.AppIDGlob != b.AppIDGlob {
		return glob.Order(a.AppIDGlob, b.AppIDGlob) > 0
	}
	return glob.Order(a.TitleGlob, b.TitleGlob) > 0
}

// Add inserts a rule at its sorted position. Adding a rule whose glob
// pair already exists replaces its value in place (spec.md §9: chosen
// "replace in place" semantics for the ambiguous duplicate-add case).
func (l *List[T]) Add(key Key, value T) {
	for i := range l.entries {
		if l.entries[i].key == key {
			l.entries[i].value = value
			return
		}
	}
	idx := sort.Search(len(l.entries), func(i int) bool {
		return !less(l.entries[i].key, key)
	})
	l.entries = append(l.entries, entry[T]{})
	copy(l.entries[idx+1:], l.entries[idx:])
	l.entries[idx] = entry[T]{key: key, value: value}
}

// Del removes the rule matching key, if any, and reports whether one was
// removed.
func (l *List[T]) Del(key Key) bool {
	for i := range l.entries {
		if l.entries[i].key == key {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Match returns the value of the first rule whose both globs match
// appID and title, walking the list in specificity order, and true. If
// no rule matches, it returns the zero value and false.
func (l *List[T]) Match(appID, title string) (T, bool) {
	for _, e := range l.entries {
		if glob.Match(appID, e.key.AppIDGlob) && glob.Match(title, e.key.TitleGlob) {
			return e.value, true
		}
	}
	var zero T
	return zero, false
}

// Len reports the number of rules in the list.
func (l *List[T]) Len() int { return len(l.entries) }

// Rule is a (key, value) pair, used by List below.
type Rule[T any] struct {
	Key   Key
	Value T
}

// All returns a snapshot of the rules in their match-order, for
// list-rules-style reporting.
func (l *List[T]) All() []Rule[T] {
	out := make([]Rule[T], len(l.entries))
	for i, e := range l.entries {
		out[i] = Rule[T]{Key: e.key, Value: e.value}
	}
	return out
}
