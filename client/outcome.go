package client

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/apierror"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

type OutcomeKind int

const (
	// OutcomeSuccess ends the retry loop with the response, whatever its
	// status, as long as the status is not transient.
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	}
	return "unknown"
}

// Outcome is the classified result of one attempt.
type Outcome struct {
	Kind     OutcomeKind
	Response *http.Response
	Err      error
	Reason   string
}

// retryableStatuses signal a transient server-side condition.
var retryableStatuses = map[int]struct{}{
	http.StatusRequestTimeout:      {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

func IsRetryableStatus(status int) bool {
	_, ok := retryableStatuses[status]
	return ok
}

// Classify decides what the retry stage does with an attempt's result.
func Classify(resp *http.Response, err error) Outcome {
	if err != nil {
		if apierror.IsConnectivityError(err) {
			return Outcome{Kind: OutcomeRetryable, Response: resp, Err: err, Reason: "transport: " + err.Error()}
		}
		return Outcome{Kind: OutcomeFatal, Response: resp, Err: err, Reason: err.Error()}
	}
	if resp == nil {
		return Outcome{Kind: OutcomeFatal, Err: autherrors.ErrNilResponse, Reason: autherrors.ErrNilResponse.Error()}
	}
	if IsRetryableStatus(resp.StatusCode) {
		return Outcome{Kind: OutcomeRetryable, Response: resp, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return Outcome{Kind: OutcomeSuccess, Response: resp}
}
