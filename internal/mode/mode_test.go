package mode

import "testing"

func TestReservedModes(t *testing.T) {
	r := NewRegistry()
	if id, ok := r.Lookup("normal"); !ok || id != Normal {
		t.Fatalf("normal = %v, %v", id, ok)
	}
	if id, ok := r.Lookup("locked"); !ok || id != Locked {
		t.Fatalf("locked = %v, %v", id, ok)
	}
}

func TestAddIsIdempotentByName(t *testing.T) {
	r := NewRegistry()
	id1 := r.Add("resize")
	id2 := r.Add("resize")
	if id1 != id2 {
		t.Fatalf("Add(\"resize\") twice gave different ids: %v != %v", id1, id2)
	}
}

func TestMappingReplaceOnSameKey(t *testing.T) {
	r := NewRegistry()
	r.AddMapping(Normal, Mapping{ModMask: 1, Keysym: 42, CommandTokens: []string{"spawn", "a"}})
	r.AddMapping(Normal, Mapping{ModMask: 1, Keysym: 42, CommandTokens: []string{"spawn", "b"}})

	m := r.FindKeyMapping(Normal, 1, 42, false)
	if m == nil || m.CommandTokens[1] != "b" {
		t.Fatalf("expected replaced mapping, got %+v", m)
	}
}

func TestFindKeyMappingEdgeIndependence(t *testing.T) {
	r := NewRegistry()
	r.AddMapping(Normal, Mapping{ModMask: 1, Keysym: 42, ReleaseEdge: false, CommandTokens: []string{"a"}})
	r.AddMapping(Normal, Mapping{ModMask: 1, Keysym: 42, ReleaseEdge: true, CommandTokens: []string{"b"}})

	press := r.FindKeyMapping(Normal, 1, 42, false)
	release := r.FindKeyMapping(Normal, 1, 42, true)
	if press == nil || press.CommandTokens[0] != "a" {
		t.Fatalf("press mapping = %+v", press)
	}
	if release == nil || release.CommandTokens[0] != "b" {
		t.Fatalf("release mapping = %+v", release)
	}
}
