// Package httputil centralizes JSON response writing so every handler emits
// the same error envelope: {"error": <code>, "error_description": <message>}.
// Internal errors omit the description to avoid leaking infrastructure detail.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "kycgate/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard error envelope.
// Unrecognized errors are reported as internal_error with no description.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	code := dErrors.CodeInternal
	if errors.As(err, &de) {
		code = de.Code
	}
	body := map[string]string{
		"error": string(code),
	}
	if de != nil && code != dErrors.CodeInternal && de.Message != "" {
		body["error_description"] = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
