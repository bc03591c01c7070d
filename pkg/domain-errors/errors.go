// Package dErrors defines coded domain errors shared by services and the
// HTTP transport. Services wrap infrastructure sentinels into these codes;
// the transport maps codes onto HTTP statuses and stable client messages.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// CodeBadRequest covers malformed bodies and missing required fields.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidDID is returned when a DID does not match the did:anchor scheme.
	CodeInvalidDID Code = "invalid_did"
	// CodeRegistrationFailed is returned when the ledger rejects account creation.
	CodeRegistrationFailed Code = "registration_failed"
	// CodeResolutionFailed is returned when a DID cannot be resolved on the ledger.
	CodeResolutionFailed Code = "resolution_failed"
	// CodeStorageFailed is returned on content store transport or service errors.
	CodeStorageFailed Code = "storage_failed"
	// CodeNotFound is returned when a content reference has no stored bytes.
	CodeNotFound Code = "not_found"
	// CodeAnchorFailed is returned when the anchor log receipt is not success.
	CodeAnchorFailed Code = "anchor_failed"
	// CodeMissingProof is returned when a credential lacks a usable proof block.
	CodeMissingProof Code = "missing_proof"
	// CodeVerificationFailed is returned when a structurally valid credential
	// fails the signature check.
	CodeVerificationFailed Code = "verification_failed"
	CodeInternal           Code = "internal_error"
)

// Error carries a code plus a human-readable description. The description is
// safe to return to clients for caller-input problems; WriteError drops it
// for internal codes.
type Error struct {
	Code        Code
	Description string
	wrapped     error
}

func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Wrap attaches an underlying cause for logs without changing what clients see.
func Wrap(code Code, description string, err error) *Error {
	return &Error{Code: code, Description: description, wrapped: err}
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status. Caller-input and verification
// problems are 400s; backend and infrastructure problems are 500s.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidDID, CodeResolutionFailed, CodeMissingProof, CodeVerificationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRegistrationFailed, CodeStorageFailed, CodeAnchorFailed, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
