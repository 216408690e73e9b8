package gallery

import (
	"reflect"
	"sort"
	"testing"

	models "gallery/internal/domain/models/gallery"
)

func abcStore() *HierarchyStore {
	s := NewHierarchyStore()
	s.Replace([]models.Folder{
		{ID: "a", Name: "A", Path: models.Path{"A"}},
		{ID: "b", Name: "B", Path: models.Path{"A", "B"}},
		{ID: "c", Name: "C", Path: models.Path{"A", "B", "C"}},
		{ID: "x", Name: "X", Path: models.Path{"X"}},
		{ID: "ab", Name: "AB", Path: models.Path{"AB"}},
	}, []models.Artwork{
		{ID: "art1", Title: "Deep", FolderPath: models.Path{"A", "B", "C"}},
		{ID: "art2", Title: "Elsewhere", FolderPath: models.Path{"X"}},
	})
	return s
}

func updatePaths(updates []models.FolderUpdate) map[string]string {
	out := make(map[string]string, len(updates))
	for _, u := range updates {
		out[u.ID] = u.Path.String()
	}
	return out
}

func TestRenamePropagator_RewritesSubtree(t *testing.T) {
	s := abcStore()
	p := NewRenamePropagator(s, false)

	a, _ := s.Folder("a")
	cs, err := p.Propagate(a, "Z")
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if cs.IsEmpty() {
		t.Fatal("expected a non-empty change-set")
	}

	got := updatePaths(cs.FolderUpdates())
	want := map[string]string{"a": "Z", "b": "Z/B", "c": "Z/B/C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("updates = %v, want %v", got, want)
	}

	if cs.Target.ID != "a" || cs.Target.Name != "Z" {
		t.Errorf("target = %+v", cs.Target)
	}
	if cs.FolderUpdates()[0].ID != "a" {
		t.Error("target update must come first")
	}

	for _, u := range cs.FolderUpdates() {
		orig, _ := s.Folder(u.ID)
		if len(orig.Path) != len(u.Path) {
			t.Errorf("segment count changed for %s: %v -> %v", u.ID, orig.Path, u.Path)
		}
		if u.Name != u.Path.Last() {
			t.Errorf("name %q does not match path %v", u.Name, u.Path)
		}
	}

	if len(cs.ArtworkMoves) != 0 {
		t.Errorf("artworks moved without relinking: %+v", cs.ArtworkMoves)
	}

	// Propagate only reads
	if f, _ := s.Folder("b"); f.Path.String() != "A/B" {
		t.Errorf("store was modified: %v", f.Path)
	}
}

func TestRenamePropagator_MiddleOfPath(t *testing.T) {
	s := abcStore()
	p := NewRenamePropagator(s, false)

	b, _ := s.Folder("b")
	cs, err := p.Propagate(b, "Q")
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	got := updatePaths(cs.FolderUpdates())
	want := map[string]string{"b": "A/Q", "c": "A/Q/C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("updates = %v, want %v", got, want)
	}
}

func TestRenamePropagator_NoOp(t *testing.T) {
	s := abcStore()
	p := NewRenamePropagator(s, true)
	a, _ := s.Folder("a")

	for _, name := range []string{"A", "", "   ", " A "} {
		cs, err := p.Propagate(a, name)
		if err != nil {
			t.Fatalf("Propagate(%q): %v", name, err)
		}
		if !cs.IsEmpty() {
			t.Errorf("Propagate(%q) should be a no-op", name)
		}
		if cs.FolderUpdates() != nil {
			t.Errorf("Propagate(%q) returned updates", name)
		}
	}
}

func TestRenamePropagator_RelinksArtworks(t *testing.T) {
	s := abcStore()
	p := NewRenamePropagator(s, true)

	a, _ := s.Folder("a")
	cs, err := p.Propagate(a, "Z")
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	var moved []string
	for _, m := range cs.ArtworkMoves {
		moved = append(moved, m.ID+"="+m.FolderPath.String())
	}
	sort.Strings(moved)
	if !reflect.DeepEqual(moved, []string{"art1=Z/B/C"}) {
		t.Errorf("moves = %v", moved)
	}
}
