// Package apierror turns every failed call into one Error value carrying a
// machine-readable code and a message that is safe to show to users.
package apierror

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

const (
	CodeNetwork        = "NETWORK_ERROR"
	CodeUnknown        = "UNKNOWN_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeValidation     = "VALIDATION_ERROR"
	CodeServer         = "SERVER_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"
	CodeCancelled      = "REQUEST_CANCELLED"
)

// Error is the only failure shape surfaced to callers. Values are built by
// the constructors in this package and never modified afterwards.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus *int   `json:"httpStatus,omitempty"`
}

func (e *Error) Error() string {
	if e.HTTPStatus != nil {
		return fmt.Sprintf("%s (%d): %s", e.Code, *e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Status returns the HTTP status, or 0 for transport failures.
func (e *Error) Status() int {
	return utils.Value(e.HTTPStatus)
}

// Is matches another *Error by code, so errors.Is(err, &Error{Code: CodeNetwork})
// works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

func newError(code, message string, status int) *Error {
	e := &Error{Code: code, Message: message}
	if status != 0 {
		e.HTTPStatus = utils.Ptr(status)
	}
	return e
}

// IsRetryable tells callers whether offering a manual retry makes sense.
func IsRetryable(e *Error) bool {
	if e == nil {
		return false
	}
	if e.Code == CodeNetwork {
		return true
	}
	switch e.Status() {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}
