package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional is a PATCH field that tells "absent" apart from "null" (RFC 7396).
// Present is false when the key is missing. Value is nil for an explicit null.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON only runs for keys present in the body.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Or returns the value, or fallback when it is absent or null.
func (o Optional[T]) Or(fallback T) T {
	if o.Value == nil {
		return fallback
	}
	return *o.Value
}
