package storage

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	models "gallery/internal/domain/models/gallery"

	"github.com/oklog/ulid/v2"
)

// keyPrefix is the top-level directory of every artwork image.
const keyPrefix = "artworks"

// objectKey builds "artworks/<path segments>/<ulid>_<filename>". The ULID keeps
// keys unique and roughly time ordered.
func objectKey(pathHint models.Path, filename, fallbackExt string) string {
	parts := make([]string, 0, len(pathHint)+2)
	parts = append(parts, keyPrefix)
	for _, segment := range pathHint {
		parts = append(parts, sanitizeSegment(segment))
	}

	name := sanitizeSegment(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	if path.Ext(name) == "" && fallbackExt != "" {
		name += fallbackExt
	}
	parts = append(parts, ulid.Make().String()+"_"+name)

	return strings.Join(parts, "/")
}

// sanitizeSegment makes a folder or file name safe as one key segment.
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// keyURL joins base and the key, escaping each key segment.
func keyURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// keyFromURL returns the key behind uri when uri was issued under base.
func keyFromURL(base, uri string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(uri, prefix) {
		return "", false
	}

	segments := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	for i, s := range segments {
		unescaped, err := url.PathUnescape(s)
		if err != nil || unescaped == "" || unescaped == "." || unescaped == ".." ||
			strings.ContainsAny(unescaped, "/\\") {
			return "", false
		}
		segments[i] = unescaped
	}
	if segments[0] != keyPrefix || len(segments) < 2 {
		return "", false
	}

	key := strings.Join(segments, "/")
	if path.Clean(key) != key || !strings.HasPrefix(key, keyPrefix+"/") {
		return "", false
	}
	return key, true
}
