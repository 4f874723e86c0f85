package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDInterceptor tags each call with an X-Request-ID unless the caller
// set one. It runs outside the retry stage, so every attempt of a call shares
// the id.
func RequestIDInterceptor() Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*http.Response, error) {
			if req.Header(RequestIDHeader) == "" {
				req = req.WithHeader(RequestIDHeader, uuid.NewString())
			}
			return next(ctx, req)
		}
	}
}
