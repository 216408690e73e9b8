package gallery

import (
	"errors"
	"strings"
)

// ErrSegmentOutOfRange is returned by SubstituteSegment for an index outside the path.
var ErrSegmentOutOfRange = errors.New("path segment index out of range")

// Path is an ordered sequence of folder names, e.g. ["Paintings", "Portraits"].
// The empty path is the gallery root.
type Path []string

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// ParsePath splits a slash-separated path ("Paintings/Portraits").
// Leading/trailing slashes and surrounding whitespace are ignored; "" and "/" are root.
func ParsePath(s string) Path {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return Root()
	}
	parts := strings.Split(s, "/")
	path := make(Path, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		path = append(path, p)
	}
	return path
}

// Equals reports whether a and b have the same segments in the same order.
func Equals(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether full starts with every segment of prefix.
// A path is a prefix of itself, and root is a prefix of every path.
func IsPrefixOf(prefix, full Path) bool {
	if len(full) < len(prefix) {
		return false
	}
	for i := range prefix {
		if full[i] != prefix[i] {
			return false
		}
	}
	return true
}

// IsDirectChildPath reports whether candidate sits exactly one level below parent.
func IsDirectChildPath(parent, candidate Path) bool {
	return len(candidate) == len(parent)+1 && IsPrefixOf(parent, candidate)
}

// SubstituteSegment returns a copy of path with the segment at index replaced.
// The input is never modified.
func SubstituteSegment(path Path, index int, value string) (Path, error) {
	if index < 0 || index >= len(path) {
		return path, ErrSegmentOutOfRange
	}
	out := path.Clone()
	out[index] = value
	return out, nil
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Child returns p + [name] without aliasing p's backing array.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Parent returns p without its last segment. The parent of root is root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Root()
	}
	return p[:len(p)-1].Clone()
}

// Last returns the final segment, or "" for root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Depth is the number of segments.
func (p Path) Depth() int { return len(p) }

// IsRoot reports whether p is the empty path.
func (p Path) IsRoot() bool { return len(p) == 0 }

// String joins the segments with "/". Root is "".
func (p Path) String() string {
	return strings.Join(p, "/")
}
