package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

const invalidRequestData = "Invalid request data"

// decodeJSON reads exactly one JSON value from the request body into dst.
//
// With strict set, fields dst does not declare are rejected. Trailing data
// after the value is always rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
