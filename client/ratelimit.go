package client

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitInterceptor holds each attempt until limiter allows it. It sits
// inside the retry stage so retries are paced too.
func RateLimitInterceptor(limiter *rate.Limiter) Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*http.Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				// The wait would outlast the deadline.
				return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
			}
			return next(ctx, req)
		}
	}
}
