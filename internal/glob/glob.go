// Package glob implements the prefix/suffix/substring matcher used to
// order and evaluate app-id and title rules.
package glob

import "strings"

// Shape classifies the structural form of a validated glob.
type Shape int

const (
	// ShapeAny is the bare "*" wildcard.
	ShapeAny Shape = iota
	// ShapePrefix is "<body>*".
	ShapePrefix
	// ShapeSuffix is "*<body>".
	ShapeSuffix
	// ShapeInfix is "*<body>*".
	ShapeInfix
	// ShapeLiteral is a glob with no "*" at all.
	ShapeLiteral
)

// Validate rejects empty strings, "**", and any glob containing "*"
// anywhere other than at position 0 and/or the last byte.
func Validate(g string) bool {
	if g == "" {
		return false
	}
	if g == "**" {
		return false
	}
	if len(g) == 1 {
		return true // "*" or a single literal byte, both fine
	}
	for i := 1; i < len(g)-1; i++ {
		if g[i] == '*' {
			return false
		}
	}
	return true
}

// shape and body return the structural classification and literal body
// of a glob already accepted by Validate.
func shape(g string) (Shape, string) {
	if g == "*" {
		return ShapeAny, ""
	}
	leading := strings.HasPrefix(g, "*")
	trailing := strings.HasSuffix(g, "*")
	switch {
	case leading && trailing:
		return ShapeInfix, g[1 : len(g)-1]
	case trailing:
		return ShapePrefix, g[:len(g)-1]
	case leading:
		return ShapeSuffix, g[1:]
	default:
		return ShapeLiteral, g
	}
}

// Match returns true iff glob is "*", or s equals the literal body, or s
// starts with/ends with/contains the trimmed literal body per the glob's
// shape. glob must already have been accepted by Validate; behavior is
// undefined (but never a panic) otherwise.
func Match(s, g string) bool {
	sh, body := shape(g)
	switch sh {
	case ShapeAny:
		return true
	case ShapePrefix:
		return strings.HasPrefix(s, body)
	case ShapeSuffix:
		return strings.HasSuffix(s, body)
	case ShapeInfix:
		return strings.Contains(s, body)
	default:
		return s == body
	}
}

// generality ranks a glob from most general (0) to least general. Used
// only to implement Order below.
func generality(sh Shape) int {
	switch sh {
	case ShapeAny:
		return 0
	case ShapeInfix:
		return 1
	case ShapePrefix, ShapeSuffix:
		return 2
	default:
		return 3
	}
}

// Order returns -1 if a sorts as more general than b, 1 if more specific,
// and 0 otherwise. "*" is the most general of all; two-sided "*body*"
// globs are more general than one-sided "body*"/"*body" globs, which are
// more general than literals; within the same class, the one with the
// longer body is more specific. Remaining ties (same class, same body
// length) are broken by byte-wise comparison of the bodies, so 0 is
// returned only when the class and the body are the same (e.g. "foo*"
// and "*foo"). This relation is a total preorder: for any a, b, c it
// never yields a cycle such as (a<b, b<c, c<a).
func Order(a, b string) int {
	shA, bodyA := shape(a)
	shB, bodyB := shape(b)

	gA, gB := generality(shA), generality(shB)
	if gA != gB {
		if gA < gB {
			return -1
		}
		return 1
	}
	// Same generality class: break ties on body length, shorter is more
	// general (matches more).
	if len(bodyA) != len(bodyB) {
		if len(bodyA) < len(bodyB) {
			return -1
		}
		return 1
	}
	return strings.Compare(bodyA, bodyB)
}

// Less reports whether a is strictly more general (sorts earlier in a
// least-specific-first ordering) than b.
func Less(a, b string) bool {
	return Order(a, b) < 0
}
