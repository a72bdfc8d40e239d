package glob

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		glob string
		want bool
	}{
		{"", false},
		{"**", false},
		{"*", true},
		{"foot", true},
		{"foo*", true},
		{"*foo", true},
		{"*foo*", true},
		{"f*o", false},
		{"*f*o*", false},
	}
	for _, c := range cases {
		if got := Validate(c.glob); got != c.want {
			t.Errorf("Validate(%q) = %v, want %v", c.glob, got, c.want)
		}
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		s, glob string
		want    bool
	}{
		{"", "*", true},
		{"anything", "*", true},
		{"foot", "foot", true},
		{"foot", "foo", false},
		{"firefox", "fire*", true},
		{"chromium", "fire*", false},
		{"org.foot", "*foot", true},
		{"foot.org", "*foot", false},
		{"xfoobar", "*foo*", true},
		{"xbar", "*foo*", false},
	}
	for _, c := range cases {
		if got := Match(c.s, c.glob); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.s, c.glob, got, c.want)
		}
	}
}

func TestOrderTotalPreorder(t *testing.T) {
	globs := []string{"*", "*foo*", "*foobar*", "foo*", "*foo", "foobar*", "foo", "foobar"}
	for _, a := range globs {
		for _, b := range globs {
			for _, c := range globs {
				ab := Order(a, b)
				bc := Order(b, c)
				if (ab < 0 && bc < 0) || (ab > 0 && bc > 0) {
					// a<b and b<c (or reverse) must not make a>c the other way
					ac := Order(a, c)
					if (ab < 0 && bc < 0 && ac > 0) || (ab > 0 && bc > 0 && ac < 0) {
						t.Fatalf("cycle detected: order(%q,%q)=%d order(%q,%q)=%d order(%q,%q)=%d",
							a, b, ab, b, c, bc, a, c, ac)
					}
				}
			}
		}
	}
}

func TestOrderShapes(t *testing.T) {
	if !Less("*", "*foo*") {
		t.Error("* should be more general than *foo*")
	}
	if !Less("*foo*", "foo*") {
		t.Error("*foo* should be more general than foo*")
	}
	if !Less("foo*", "foo") {
		t.Error("foo* should be more general than literal foo")
	}
	if !Less("foo", "foobar") {
		t.Error("shorter literal should be more general than longer literal")
	}
}
