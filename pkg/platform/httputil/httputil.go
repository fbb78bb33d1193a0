package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "gatepass/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every failed request.
type ErrorResponse struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWithCode(w, err, "")
}

// WriteErrorWithCode writes err like WriteError but replaces the wire error
// code, e.g. to tell a failed log read apart from a failed log write.
// The status is still derived from the domain code.
func WriteErrorWithCode(w http.ResponseWriter, err error, code string) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
		})
		return
	}

	if code == "" {
		code = DomainCodeToHTTPCode(domainErr.Code)
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
		Error:       code,
		Description: domainErr.Message,
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeCredentialInvalid:
		return http.StatusUnauthorized
	case dErrors.CodeSinkUnavailable, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the error strings
// clients see in the JSON envelope.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeBadRequest:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeCredentialInvalid:
		return "invalid_or_expired"
	case dErrors.CodeSinkUnavailable:
		return "could_not_write_log"
	default:
		return "internal_error"
	}
}
