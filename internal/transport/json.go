package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"greencare-be/internal/apperr"
)

const maxJSONBody = 1 << 20

var ErrMalformedJSON = apperr.New(apperr.ErrInvalid, "malformed JSON body")

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorBody(message))
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON reads a single JSON document from the request body into dst.
// An empty body decodes to the zero value.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrMalformedJSON
	}
	return nil
}
