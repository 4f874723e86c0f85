package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds how much of an error body is read.
const maxBodyBytes = 64 << 10

// FromError converts a transport failure. The raw error text is never used
// as the message.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return newError(CodeCancelled, msgCancelled, 0)
	case IsConnectivityError(err):
		return newError(CodeNetwork, msgNetwork, 0)
	}
	return newError(CodeUnknown, msgUnknown, 0)
}

// FromResponse converts a non-2xx status and its body. A structured body
// supplies message and code; anything else falls back to the static table.
func FromResponse(status int, body []byte) *Error {
	code := CodeForStatus(status)
	message := MessageForStatus(status)

	if parsed, ok := parseBody(body); ok {
		if parsed.code != "" {
			code = parsed.code
		}
		if parsed.message != "" {
			message = parsed.message
		}
	}
	return newError(code, message, status)
}

// Normalize is the single chokepoint between the pipeline and its callers.
// It reads and closes resp.Body when a response is given.
func Normalize(resp *http.Response, err error) *Error {
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return FromError(err)
	}
	if resp == nil {
		return newError(CodeUnknown, msgUnknown, 0)
	}
	return FromResponse(resp.StatusCode, ReadBody(resp.Body))
}

// ReadBody reads at most maxBodyBytes and closes rc. Read errors yield
// whatever was read so far.
func ReadBody(rc io.ReadCloser) []byte {
	if rc == nil {
		return nil
	}
	defer rc.Close()
	data, _ := io.ReadAll(io.LimitReader(rc, maxBodyBytes))
	return data
}

type parsedBody struct {
	message string
	code    string
}

// errorBody accepts {"message","code"}, {"error":"..."} and
// {"error":{"message","code"}}.
type errorBody struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
	Error   json.RawMessage `json:"error"`
}

func parseBody(body []byte) (parsedBody, bool) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return parsedBody{}, false
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return parsedBody{}, false
	}

	p := parsedBody{
		message: strings.TrimSpace(eb.Message),
		code:    rawCode(eb.Code),
	}

	if len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil {
			if p.message == "" {
				p.message = strings.TrimSpace(s)
			}
		} else if nested, ok := parseBody(eb.Error); ok {
			if p.message == "" {
				p.message = nested.message
			}
			if p.code == "" {
				p.code = nested.code
			}
		}
	}

	return p, p.message != "" || p.code != ""
}

// rawCode accepts string or numeric codes.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
