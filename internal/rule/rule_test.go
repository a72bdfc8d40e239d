package rule

import "testing"

func TestMatchFirstWinsBySpecificity(t *testing.T) {
	l := NewList[bool]()
	l.Add(Key{AppIDGlob: "*", TitleGlob: "*"}, false)
	l.Add(Key{AppIDGlob: "foot", TitleGlob: "*"}, true)

	got, ok := l.Match("foot", "anything")
	if !ok || got != true {
		t.Fatalf("Match(foot) = %v, %v, want true, true", got, ok)
	}
	got, ok = l.Match("alacritty", "anything")
	if !ok || got != false {
		t.Fatalf("Match(alacritty) = %v, %v, want false, true", got, ok)
	}
}

func TestNoDuplicateKeysReplaceInPlace(t *testing.T) {
	l := NewList[int]()
	l.Add(Key{AppIDGlob: "foot", TitleGlob: "*"}, 1)
	l.Add(Key{AppIDGlob: "foot", TitleGlob: "*"}, 2)

	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	got, _ := l.Match("foot", "x")
	if got != 2 {
		t.Fatalf("Match = %d, want 2 (replace in place)", got)
	}
}

func TestDel(t *testing.T) {
	l := NewList[int]()
	l.Add(Key{AppIDGlob: "foot", TitleGlob: "*"}, 1)
	if !l.Del(Key{AppIDGlob: "foot", TitleGlob: "*"}) {
		t.Fatal("Del reported no match")
	}
	if _, ok := l.Match("foot", "x"); ok {
		t.Fatal("Match succeeded after Del")
	}
}

func TestNoMatchReturnsFalse(t *testing.T) {
	l := NewList[int]()
	l.Add(Key{AppIDGlob: "foot", TitleGlob: "*"}, 1)
	if _, ok := l.Match("alacritty", "x"); ok {
		t.Fatal("expected no match")
	}
}
