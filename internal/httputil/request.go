package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// maxJSONBody caps JSON request bodies. Image uploads use multipart and have
// their own limit.
const maxJSONBody = 1 << 20

// ParseJSON decodes exactly one JSON object from the request body into dest.
// Unknown fields and trailing data are rejected.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON: unexpected data after object")
	}
	return nil
}

// RespondBodyError writes the problem for a ParseJSON failure:
// 413 when the body was too large, 400 otherwise.
func RespondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	RespondError(w, http.StatusBadRequest, "Invalid request body")
}
