package apierror

import "net/http"

const (
	msgNetwork     = "Unable to reach the server. Please check your internet connection and try again."
	msgUnknown     = "An unexpected error occurred. Please try again."
	msgCancelled   = "The request was cancelled."
	msgBadRequest  = "Invalid request. Please check your input and try again."
	msgUnauth      = "Authentication required. Please log in again."
	msgForbidden   = "Access denied. You do not have permission to perform this action."
	msgNotFound    = "The requested resource was not found."
	msgTimeout     = "The request timed out. Please try again."
	msgConflict    = "The request conflicts with the current state of the resource."
	msgValidation  = "Some of the submitted data is invalid. Please review it and try again."
	msgRateLimited = "Too many requests. Please wait a moment and try again."
	msgServer      = "Server error. Please try again later."
	msgBadGateway  = "The server is temporarily unreachable. Please try again later."
	msgUnavailable = "The service is temporarily unavailable. Please try again later."
	msgGatewayTime = "The server took too long to respond. Please try again later."
	msgGeneric     = "Something went wrong. Please try again."
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          msgBadRequest,
	http.StatusUnauthorized:        msgUnauth,
	http.StatusForbidden:           msgForbidden,
	http.StatusNotFound:            msgNotFound,
	http.StatusRequestTimeout:      msgTimeout,
	http.StatusConflict:            msgConflict,
	http.StatusUnprocessableEntity: msgValidation,
	http.StatusTooManyRequests:     msgRateLimited,
	http.StatusInternalServerError: msgServer,
	http.StatusBadGateway:          msgBadGateway,
	http.StatusServiceUnavailable:  msgUnavailable,
	http.StatusGatewayTimeout:      msgGatewayTime,
}

// MessageForStatus returns the static user-facing message for status.
func MessageForStatus(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	if status >= 500 {
		return msgServer
	}
	return msgGeneric
}

// CodeForStatus maps an HTTP status to the code used when the body carries none.
func CodeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeAuthentication
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status == http.StatusRequestTimeout:
		return CodeNetwork
	case status >= 500:
		return CodeServer
	case status >= 400:
		return CodeValidation
	}
	return CodeUnknown
}
