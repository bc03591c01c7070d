// Package shared centralizes the JSON envelope and domain error translation
// so every handler responds with the same shape.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "credanchor/pkg/domain-errors"
)

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success          bool   `json:"success"`
	Data             any    `json:"data,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// WriteError maps a domain error onto its HTTP status. Descriptions are
// returned for caller-input problems and dropped for internal codes so
// backend details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	env := Envelope{Success: false, Error: string(code)}
	if status < http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			env.ErrorDescription = de.Description
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
