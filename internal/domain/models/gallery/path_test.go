package gallery

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Path
	}{
		{name: "empty is root", in: "", want: Path{}},
		{name: "slash is root", in: "/", want: Path{}},
		{name: "single segment", in: "Paintings", want: Path{"Paintings"}},
		{name: "nested", in: "Paintings/Portraits", want: Path{"Paintings", "Portraits"}},
		{name: "surrounding slashes", in: "/Paintings/Portraits/", want: Path{"Paintings", "Portraits"}},
		{name: "empty segments skipped", in: "Paintings//Portraits", want: Path{"Paintings", "Portraits"}},
		{name: "segments trimmed", in: " Paintings / Oil on canvas ", want: Path{"Paintings", "Oil on canvas"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePath(tt.in)
			if !Equals(got, tt.want) {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsPrefixOf(t *testing.T) {
	tests := []struct {
		name   string
		prefix Path
		full   Path
		want   bool
	}{
		{name: "root prefixes everything", prefix: Path{}, full: Path{"A", "B"}, want: true},
		{name: "self", prefix: Path{"A", "B"}, full: Path{"A", "B"}, want: true},
		{name: "proper prefix", prefix: Path{"A"}, full: Path{"A", "B"}, want: true},
		{name: "longer than full", prefix: Path{"A", "B", "C"}, full: Path{"A", "B"}, want: false},
		{name: "segment mismatch", prefix: Path{"A", "X"}, full: Path{"A", "B", "C"}, want: false},
		{name: "string prefix is not a path prefix", prefix: Path{"Paint"}, full: Path{"Paintings"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPrefixOf(tt.prefix, tt.full); got != tt.want {
				t.Errorf("IsPrefixOf(%v, %v) = %v, want %v", tt.prefix, tt.full, got, tt.want)
			}
		})
	}
}

func TestIsDirectChildPath(t *testing.T) {
	if !IsDirectChildPath(Path{}, Path{"A"}) {
		t.Error("top-level folder should be a direct child of root")
	}
	if !IsDirectChildPath(Path{"A"}, Path{"A", "B"}) {
		t.Error("A/B should be a direct child of A")
	}
	if IsDirectChildPath(Path{"A"}, Path{"A", "B", "C"}) {
		t.Error("A/B/C is a grandchild of A")
	}
	if IsDirectChildPath(Path{"A"}, Path{"A"}) {
		t.Error("a path is not its own child")
	}
}

func TestSubstituteSegment(t *testing.T) {
	in := Path{"A", "B", "C"}

	got, err := SubstituteSegment(in, 1, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equals(got, Path{"A", "X", "C"}) {
		t.Errorf("got %v", got)
	}
	if !Equals(in, Path{"A", "B", "C"}) {
		t.Errorf("input was modified: %v", in)
	}

	for _, idx := range []int{-1, 3} {
		out, err := SubstituteSegment(in, idx, "X")
		if !errors.Is(err, ErrSegmentOutOfRange) {
			t.Errorf("index %d: expected ErrSegmentOutOfRange, got %v", idx, err)
		}
		if !Equals(out, in) {
			t.Errorf("index %d: expected input back, got %v", idx, out)
		}
	}
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = "A"

	b := base.Child("B")
	c := base.Child("C")
	if b[1] != "B" || c[1] != "C" {
		t.Fatalf("children share a backing array: %v %v", b, c)
	}
}

func TestPathParentAndLast(t *testing.T) {
	p := Path{"A", "B"}
	if got := p.Parent(); !Equals(got, Path{"A"}) {
		t.Errorf("Parent = %v", got)
	}
	if got := Root().Parent(); !got.IsRoot() {
		t.Errorf("parent of root = %v", got)
	}
	if p.Last() != "B" || Root().Last() != "" {
		t.Errorf("Last mismatch")
	}
	if p.String() != "A/B" || Root().String() != "" {
		t.Errorf("String mismatch: %q", p.String())
	}
}
